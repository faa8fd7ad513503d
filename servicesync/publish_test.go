package servicesync

import (
	"context"
	"encoding/json"
	"testing"
)

func TestEncodeSummary(t *testing.T) {
	data, err := EncodeSummary(Result{RunID: "run-7", Resolve: true, Processed: 10, Discrepant: 3, Resolved: 2})
	if err != nil {
		t.Fatalf("EncodeSummary: %v", err)
	}
	var msg struct {
		Event  string         `json:"event"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Event != "services.sync.finished" {
		t.Fatalf("unexpected event %q", msg.Event)
	}
	if msg.Result["run_id"] != "run-7" || msg.Result["processed"] != float64(10) || msg.Result["discrepant"] != float64(3) {
		t.Fatalf("unexpected result payload %v", msg.Result)
	}
}

func TestPublishSummary_RequiresClient(t *testing.T) {
	if _, err := PublishSummary(context.Background(), nil, "topic", Result{}); err == nil {
		t.Fatalf("expected error without a client")
	}
}
