package model

// ErrorKind classifies which collaborator boundary a failure came from.
type ErrorKind string

const (
	ErrorFetch   ErrorKind = "fetch"
	ErrorExtract ErrorKind = "extract"
	ErrorParse   ErrorKind = "parse"
	ErrorLookup  ErrorKind = "lookup"
	ErrorEnrich  ErrorKind = "enrich"
	ErrorPersist ErrorKind = "persist"
)

// Step names used in StepOutcome.
const (
	StepFetchPrimary     = "fetch_primary"
	StepFetchSecondary   = "fetch_secondary"
	StepExtractPrimary   = "extract_primary"
	StepExtractSecondary = "extract_secondary"
	StepParsePrimary     = "parse_primary"
	StepParseSecondary   = "parse_secondary"
	StepSymbolLookup     = "symbol_lookup"
	StepEnrich           = "enrich"
	StepPersist          = "persist"
)

// StepOutcome records a failed sub-step of a lookup. Successful steps are not
// recorded, so an empty Steps slice means a clean run.
type StepOutcome struct {
	Step string    `json:"step"`
	Kind ErrorKind `json:"kind"`
	Err  string    `json:"error"`
}

// LookupResult is the outcome of processing one input URL.
type LookupResult struct {
	URL string `json:"url"`
	// Record is nil when the primary page could not be fetched.
	Record    *Record       `json:"record,omitempty"`
	Steps     []StepOutcome `json:"steps,omitempty"`
	Persisted bool          `json:"persisted"`
	Cached    bool          `json:"cached,omitempty"`
}

// Fail appends a failed step.
func (r *LookupResult) Fail(step string, kind ErrorKind, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Steps = append(r.Steps, StepOutcome{Step: step, Kind: kind, Err: msg})
}

// Failed reports whether the given step failed.
func (r *LookupResult) Failed(step string) bool {
	for _, s := range r.Steps {
		if s.Step == step {
			return true
		}
	}
	return false
}
