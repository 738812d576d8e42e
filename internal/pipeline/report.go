package pipeline

import (
	"sort"

	"cascs/internal"
)

// MatchReport groups the registry by comparison key and emits one candidate
// pair for every key shared by exactly two distinct ids. Singleton groups
// carry no signal and groups of three or more need a human, not a guess.
// The pairs seed manual edits to the alias lookup file; nothing here is
// auto-applied.
func MatchReport(records []internal.Record) []internal.MatchPair {
	groups := map[string]map[string]struct{}{}
	for _, rec := range records {
		key := CompareKey(rec.Name)
		if key == "" {
			continue
		}
		if groups[key] == nil {
			groups[key] = map[string]struct{}{}
		}
		groups[key][rec.ID] = struct{}{}
	}

	pairs := []internal.MatchPair{}
	for key, ids := range groups {
		if len(ids) != 2 {
			continue
		}
		pair := make([]string, 0, 2)
		for id := range ids {
			pair = append(pair, id)
		}
		sort.Strings(pair)
		pairs = append(pairs, internal.MatchPair{ID1: pair[0], ID2: pair[1], Key: key})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Key != pairs[j].Key {
			return pairs[i].Key < pairs[j].Key
		}
		return pairs[i].ID1 < pairs[j].ID1
	})
	return pairs
}
