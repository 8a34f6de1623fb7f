package natsgath

import (
	"github.com/nats-io/nats.go"

	"github.com/jbachurski/taucheck/api"
	"github.com/jbachurski/taucheck/internal"
)

type natsGatherer struct {
	nc      *nats.Conn
	subject string
	runUuid string
}

// StartRun implements internal.Gatherer.
func (s *natsGatherer) StartRun(total int) {
	s.send(api.NewStartRun(s.runUuid, total))
}

// StartCase implements internal.Gatherer.
func (s *natsGatherer) StartCase(tc *internal.TestCase) {
	s.send(api.NewStartCase(s.runUuid, tc.Base))
}

// FinishCase implements internal.Gatherer.
func (s *natsGatherer) FinishCase(v internal.Verdict) {
	s.send(api.NewFinishCase(s.runUuid, api.MapVerdict(v)))
}

// FinishRun implements internal.Gatherer.
func (s *natsGatherer) FinishRun(r *internal.Report) {
	s.send(api.NewFinishRun(s.runUuid, api.MapReport(r)))
}
