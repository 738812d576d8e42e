package pipeline

import (
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Hashed in place of a missing postcode so ids stay byte-compatible with
// earlier registry exports.
const noPostcodeToken = "None"

// DeriveID builds the synthetic organisation id for a club: md5 of the
// display name concatenated with the postcode, first 8 hex characters,
// joined to the prefix (e.g. GB-CASC-1a2b3c4d). Deterministic, but any
// source edit to name or postcode changes the id; the alias table exists to
// patch those breaks.
func DeriveID(prefix, name, postcode string) string {
	if strings.TrimSpace(postcode) == "" {
		postcode = noPostcodeToken
	}
	sum := md5.Sum([]byte(name + postcode))
	return prefix + "-" + hex.EncodeToString(sum[:])[:8]
}

// Resolver maps freshly derived ids through the alias table to the id the
// registry already knows the club under.
type Resolver struct {
	prefix  string
	aliases map[string]string
}

func NewResolver(prefix string, aliases map[string]string) *Resolver {
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &Resolver{prefix: prefix, aliases: aliases}
}

func (r *Resolver) Prefix() string { return r.prefix }

// Resolve walks the alias table from candidate, guarding against cycles by
// stopping as soon as a node repeats. The first id visited that is already
// in known wins, keeping continuity with previously persisted identities;
// otherwise the end of the walk is the final id.
func (r *Resolver) Resolve(candidate string, known map[string]struct{}) string {
	visited := map[string]struct{}{candidate: {}}
	walk := []string{candidate}

	current := candidate
	for {
		next, ok := r.aliases[current]
		if !ok {
			break
		}
		if _, seen := visited[next]; seen {
			break
		}
		visited[next] = struct{}{}
		walk = append(walk, next)
		current = next
	}

	for _, id := range walk {
		if _, ok := known[id]; ok {
			return id
		}
	}
	return current
}

// LoadAliases reads the curated id lookup file (CSV, header new_id,old_id)
// into a bidirectional alias map. Self-mappings are dropped, and the first
// mapping loaded for an id wins over later conflicting pairs. A missing
// file is an empty table: the lookup is optional curation.
func LoadAliases(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAliases(f)
}

func ReadAliases(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	newIdx, oldIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "new_id":
			newIdx = i
		case "old_id":
			oldIdx = i
		}
	}
	if newIdx < 0 || oldIdx < 0 {
		return nil, fmt.Errorf("alias file missing new_id/old_id columns")
	}

	aliases := map[string]string{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) <= newIdx || len(row) <= oldIdx {
			continue
		}
		newID := strings.TrimSpace(row[newIdx])
		oldID := strings.TrimSpace(row[oldIdx])
		if newID == "" || oldID == "" || newID == oldID {
			continue
		}
		if _, ok := aliases[newID]; !ok {
			aliases[newID] = oldID
		}
		if _, ok := aliases[oldID]; !ok {
			aliases[oldID] = newID
		}
	}
	return aliases, nil
}
