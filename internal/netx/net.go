// Package netx uploads files to presigned object-storage URLs.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPClient is the part of *http.Client used for uploads.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// UploadToPresignedURL PUTs body to a presigned URL and expects 200 OK.
func UploadToPresignedURL(ctx context.Context, client HTTPClient, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
