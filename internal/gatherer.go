package internal

// Gatherer receives per-case events while a run is in progress, so an
// external reporter can render results incrementally. FinishCase is
// called in completion order, which under parallel execution is not
// registry order; the final Report is the ordered record. The engine
// serializes all calls, implementations need no locking.
type Gatherer interface {
	StartRun(total int)

	StartCase(tc *TestCase)
	FinishCase(v Verdict)

	FinishRun(r *Report)
}

// NopGatherer discards every event.
type NopGatherer struct{}

func (NopGatherer) StartRun(int)        {}
func (NopGatherer) StartCase(*TestCase) {}
func (NopGatherer) FinishCase(Verdict)  {}
func (NopGatherer) FinishRun(*Report)   {}

// MultiGatherer fans every event out to each member in order.
type MultiGatherer []Gatherer

func (m MultiGatherer) StartRun(total int) {
	for _, g := range m {
		g.StartRun(total)
	}
}

func (m MultiGatherer) StartCase(tc *TestCase) {
	for _, g := range m {
		g.StartCase(tc)
	}
}

func (m MultiGatherer) FinishCase(v Verdict) {
	for _, g := range m {
		g.FinishCase(v)
	}
}

func (m MultiGatherer) FinishRun(r *Report) {
	for _, g := range m {
		g.FinishRun(r)
	}
}
