// Package upload sends rider identity documents to the external object
// storage provider using an unsigned upload preset, returning the public
// URL the backend expects in the verification submission.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/parcel-ng/parcel-client/internal/client/api"
)

// Uploader posts files to the storage provider's upload endpoint.
type Uploader struct {
	endpoint string
	preset   string
	http     *http.Client
}

func NewUploader(endpoint, preset string, timeout time.Duration) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		preset:   preset,
		http:     &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload streams one file and returns its secure URL.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if err := mw.WriteField("upload_preset", u.preset); err != nil {
				return err
			}
			part, err := mw.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, r); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", api.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding upload response: %v", api.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return "", &api.BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("%w: upload response missing url", api.ErrUnavailable)
	}
	return out.SecureURL, nil
}
