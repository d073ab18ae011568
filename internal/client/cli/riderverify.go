package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parcel-ng/parcel-client/internal/client/models"
)

// RiderVerify collects the rider's identity documents, uploads each to the
// storage provider and submits the resulting URLs to the backend. Any of
// the three documents may be skipped by leaving the path empty, but at
// least one must be provided.
func (a *App) RiderVerify(ctx context.Context) error {
	fmt.Println("Provide paths to your identity documents. Leave a field empty to skip it.")

	docs := models.RiderDocuments{}
	fields := []struct {
		prompt string
		dest   *string
	}{
		{"NIN slip image path", &docs.NIN},
		{"BVN slip image path", &docs.BVN},
		{"Driver's license image path", &docs.DriversLicense},
	}

	uploaded := 0
	for _, f := range fields {
		path, err := getSimpleText(a.reader, f.prompt, os.Stdout)
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		url, err := a.uploadDocument(ctx, path)
		if err != nil {
			reportErr(err)
			return err
		}
		*f.dest = url
		uploaded++
	}

	if uploaded == 0 {
		fmt.Println("No documents provided, nothing submitted.")
		return nil
	}

	if err := a.apiClient.SubmitRiderVerification(ctx, docs); err != nil {
		reportErr(err)
		return err
	}
	fmt.Println("Documents submitted. Verification is usually reviewed within 24 hours.")
	return nil
}

func (a *App) uploadDocument(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	return a.uploader.Upload(ctx, filepath.Base(path), file)
}
