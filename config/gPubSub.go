package config

import (
	"context"
	"errors"
	"os"
	"sync"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func getPubSubProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

// GetPubSubClient returns the shared Pub/Sub client, creating it on first use.
// It uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is provided.
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var opts []option.ClientOption
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	c, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	return pubsubClient, nil
}

func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
