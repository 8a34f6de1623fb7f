package sqsgath

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// New creates an SQS gatherer that posts run events to the given queue.
// Credentials and region come from the default AWS config chain.
func New(ctx context.Context, runUuid string, queueUrl string) (*sqsResQueueGatherer, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &sqsResQueueGatherer{
		sqsClient: sqs.NewFromConfig(cfg),
		queueUrl:  queueUrl,
		runUuid:   runUuid,
	}, nil
}
