package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"
)

const defaultHTTPUploadURL = "https://api.imgbb.com/1/upload"

// HTTPUploader posts images to a hosted image API that takes the API key
// as a query parameter and the file as the "image" form field, and answers
// with {"data":{"url":"..."}}.
type HTTPUploader struct {
	httpClient *http.Client
	apiKey     string

	// Overridable for testing.
	uploadURL string
}

// NewHTTPUploader creates an uploader for the given API key.
func NewHTTPUploader(apiKey string) (*HTTPUploader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image host API key is required")
	}
	return &HTTPUploader{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		uploadURL:  defaultHTTPUploadURL,
	}, nil
}

type hostedResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (h *HTTPUploader) Upload(ctx context.Context, name string, data []byte, _ string) (hosted string, err error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", path.Base(name))
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint(), &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var result hostedResponse
	if jsonErr := json.Unmarshal(raw, &result); jsonErr != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decoding response: %w", jsonErr)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return "", fmt.Errorf("image host returned %d: %s", resp.StatusCode, result.Error.Message)
		}
		return "", fmt.Errorf("image host returned %d", resp.StatusCode)
	}
	if result.Data.URL == "" {
		return "", fmt.Errorf("image host response has no url")
	}
	return result.Data.URL, nil
}

func (h *HTTPUploader) endpoint() string {
	return h.uploadURL + "?" + url.Values{"key": {h.apiKey}}.Encode()
}
