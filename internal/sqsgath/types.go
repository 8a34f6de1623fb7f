package sqsgath

import (
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/jbachurski/taucheck/api"
	"github.com/jbachurski/taucheck/internal"
)

type sqsResQueueGatherer struct {
	sqsClient *sqs.Client
	queueUrl  string
	runUuid   string
}

// StartRun implements internal.Gatherer.
func (s *sqsResQueueGatherer) StartRun(total int) {
	s.send(api.NewStartRun(s.runUuid, total))
}

// StartCase implements internal.Gatherer.
func (s *sqsResQueueGatherer) StartCase(tc *internal.TestCase) {
	s.send(api.NewStartCase(s.runUuid, tc.Base))
}

// FinishCase implements internal.Gatherer.
func (s *sqsResQueueGatherer) FinishCase(v internal.Verdict) {
	s.send(api.NewFinishCase(s.runUuid, api.MapVerdict(v)))
}

// FinishRun implements internal.Gatherer.
func (s *sqsResQueueGatherer) FinishRun(r *internal.Report) {
	s.send(api.NewFinishRun(s.runUuid, api.MapReport(r)))
}
