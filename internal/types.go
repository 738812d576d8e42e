package internal

// Record is one club in the registry. The id is synthetic (derived from
// name+postcode, see pipeline.DeriveID) and survives across fetches via the
// alias table. Records are never deleted: a club that drops out of a fetch
// stays in the registry with Active=false. An empty Postcode means the
// publication carried none; the JSON writer serializes it as null.
type Record struct {
	ID       string
	Name     string
	Address  string
	Postcode string
	Active   bool
}

// SortKey orders records by display name, falling back to the id for
// records loaded from history without a name.
func (r Record) SortKey() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// MatchPair is one candidate duplicate emitted by the match reporter:
// two distinct ids whose names normalize to the same comparison key.
// Advisory only; pairs seed manual edits to the alias file.
type MatchPair struct {
	ID1 string
	ID2 string
	Key string
}

// Attachment is one spreadsheet file downloaded from the publication page.
type Attachment struct {
	URL  string
	Body []byte
}

// RunSummary captures the counts of one registry:fetch run for the run log.
type RunSummary struct {
	TraceID     string
	URL         string
	Attachments int
	Fetched     int
	Merged      int
	Added       int
	Removed     int
	DurationMs  int64
}
