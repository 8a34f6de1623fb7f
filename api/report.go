package api

import "github.com/jbachurski/taucheck/internal"

// CaseResult represents the judged outcome of a single test case
type CaseResult struct {
	Name    string `json:"name"`
	Verdict string `json:"verdict"`
	Detail  string `json:"detail,omitempty"`

	WallMillis int64 `json:"wall_ms"`
}

// RunReport is the complete response for a judging run
type RunReport struct {
	Results []CaseResult   `json:"results"`
	Counts  map[string]int `json:"counts"`

	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	AllOK   bool `json:"all_ok"`

	WallMillis int64 `json:"wall_ms"`
}

// MapVerdict converts an engine verdict into its wire form. Details are
// trimmed to the streaming size constraints.
func MapVerdict(v internal.Verdict) CaseResult {
	return CaseResult{
		Name:       v.Case.Base,
		Verdict:    v.Kind.Code(),
		Detail:     trimDetail(v.Detail, MaxDetailHeight, MaxDetailWidth),
		WallMillis: v.Duration.Milliseconds(),
	}
}

// MapReport converts a finished engine report into its wire form.
func MapReport(r *internal.Report) RunReport {
	results := make([]CaseResult, 0, len(r.Verdicts))
	for _, v := range r.Verdicts {
		results = append(results, MapVerdict(v))
	}
	counts := make(map[string]int, len(r.Counts))
	for kind, n := range r.Counts {
		counts[kind.Code()] = n
	}
	return RunReport{
		Results:    results,
		Counts:     counts,
		Correct:    r.Correct(),
		Total:      r.Total(),
		AllOK:      r.AllOK,
		WallMillis: r.Elapsed.Milliseconds(),
	}
}
