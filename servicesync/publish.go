package servicesync

import (
	"context"
	"encoding/json"
	"errors"

	"cloud.google.com/go/pubsub"
)

// SummaryMessage is the payload published once a run finishes.
type SummaryMessage struct {
	Event  string `json:"event"`
	Result Result `json:"result"`
}

const summaryEvent = "services.sync.finished"

func EncodeSummary(result Result) ([]byte, error) {
	return json.Marshal(SummaryMessage{Event: summaryEvent, Result: result})
}

// PublishSummary sends the run summary to topicName and returns the
// server-assigned message id.
func PublishSummary(ctx context.Context, client *pubsub.Client, topicName string, result Result) (string, error) {
	if client == nil {
		return "", errors.New("pubsub client is nil")
	}
	if topicName == "" {
		return "", errors.New("topic is required")
	}
	data, err := EncodeSummary(result)
	if err != nil {
		return "", err
	}
	t := client.Topic(topicName)
	defer t.Stop()
	res := t.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"run_id": result.RunID, "event": summaryEvent},
	})
	return res.Get(ctx)
}
