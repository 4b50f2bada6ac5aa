// Package planning normalizes raw Dublin City Council planning application
// attributes into canonical records with derived classification tags.
package planning

// Record is the canonical shape of one planning application after
// normalization. All fields are best-effort: absent or unparseable source
// values become empty strings rather than errors.
type Record struct {
	Ref          string // Planning reference, e.g. "2458/24". Never empty.
	Location     string
	Postcode     string
	Proposal     string // Short proposal description.
	LongProposal string // Long form; often identical to Proposal.
	AppType      string
	AppStatus    string // Application status, also surfaced as the stage.
	Decision     string // Never empty: defaulted to "Pending" or a withdrawal status.
	RegDate      string // ISO dates (YYYY-MM-DD) or empty.
	DecDate      string
	GrantDate    string
	ExpiryDate   string
	FIReqDate    string // Further-information request date.
	FIRecDate    string
	NumUnits     string // Residential unit count as reported (may be empty).
	FloorArea    string
	Link         string
	Lat          string
	Lon          string

	HasAppeal     bool
	AppealDetails []Appeal

	// Derived classification tags. Each is exactly one value from its
	// enumerated set; see classify.go for the rule tables.
	DevCategory string
	LandType    string
	DevScale    string
}

// Appeal holds the non-empty fields of a lodged appeal.
type Appeal struct {
	Ref          string
	Status       string
	Decision     string
	DecisionDate string
}
