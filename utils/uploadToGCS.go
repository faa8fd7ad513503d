package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
	// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// UploadFileToGCS copies the local file at path to gs://bucket/objectName.
func UploadFileToGCS(ctx context.Context, bucket, objectName, path, contentType string) error {
	if strings.TrimSpace(bucket) == "" {
		return errors.New("gcs bucket is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, f); err != nil {
		_ = wc.Close()
		return fmt.Errorf("upload %s to gcs: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("upload %s to gcs: %w", objectName, err)
	}
	return nil
}
