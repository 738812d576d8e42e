package pipeline

import (
	"sort"

	"cascs/internal"
)

// Merge reconciles a freshly fetched batch against the previously persisted
// registry. Every persisted record is first marked inactive; each fetched
// record gets its derived id resolved through the alias table against the
// persisted id set, and duplicates within the fetch (same final id) are
// dropped, first occurrence winning. Active records overwrite their
// inactive counterparts; nothing is ever deleted. The result is sorted by
// display name (id as fallback) so output files diff cleanly between runs.
func Merge(existing map[string]internal.Record, fetched []internal.Record, resolver *Resolver) []internal.Record {
	known := make(map[string]struct{}, len(existing))
	merged := make(map[string]internal.Record, len(existing)+len(fetched))
	for id, rec := range existing {
		rec.ID = id
		rec.Active = false
		merged[id] = rec
		known[id] = struct{}{}
	}

	seen := map[string]struct{}{}
	for _, rec := range fetched {
		candidate := DeriveID(resolver.Prefix(), rec.Name, rec.Postcode)
		final := resolver.Resolve(candidate, known)
		if _, dup := seen[final]; dup {
			continue
		}
		seen[final] = struct{}{}

		rec.ID = final
		rec.Active = true
		merged[final] = rec
	}

	out := make([]internal.Record, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].SortKey(), out[j].SortKey()
		if ki != kj {
			return ki < kj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
