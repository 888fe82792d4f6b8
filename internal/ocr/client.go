package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/customHttpClient"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var log = logger_i.NewLogger("ocr")

// Client talks to the OCR provider's REST API. Documents and audio follow
// the same lifecycle: upload, fetch a signed URL, run the model against the
// URL, delete the upload.
type Client interface {
	UploadFile(ctx context.Context, path, purpose string) (string, error)
	SignedURL(ctx context.Context, fileID string) (string, error)
	ProcessDocument(ctx context.Context, documentURL string, imageLimit int) (*Result, error)
	Transcribe(ctx context.Context, fileURL string) (*Transcription, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type client struct {
	baseURL string
	apiKey  string
}

func NewClient(apiKey string) Client {
	return &client{
		baseURL: config.OCRBaseURL,
		apiKey:  apiKey,
	}
}

// Page is one OCR'd page in reading order.
type Page struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type Result struct {
	Pages []Page `json:"pages"`
	Model string `json:"model"`
}

type Transcription struct {
	Model    string `json:"model"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

type apiError struct {
	Message string `json:"message"`
}

func (c *client) UploadFile(ctx context.Context, path, purpose string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("purpose", purpose); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("buffering upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, config.UploadTimeout, &resp); err != nil {
		return "", fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}
	log.Debug("file uploaded", "file", filepath.Base(path), "id", resp.ID)
	return resp.ID, nil
}

func (c *client) SignedURL(ctx context.Context, fileID string) (string, error) {
	endpoint := fmt.Sprintf("%s/files/%s/url?expiry=24", c.baseURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(req, config.UploadTimeout, &resp); err != nil {
		return "", fmt.Errorf("fetching signed url: %w", err)
	}
	return resp.URL, nil
}

// ProcessDocument runs the OCR model over an uploaded document. imageLimit 0
// asks the provider to skip embedded-image extraction entirely; pass a
// negative value for the provider default.
func (c *client) ProcessDocument(ctx context.Context, documentURL string, imageLimit int) (*Result, error) {
	payload := map[string]any{
		"model": config.OCRModelName,
		"document": map[string]string{
			"type":         "document_url",
			"document_url": documentURL,
		},
		"include_image_base64": false,
	}
	if imageLimit >= 0 {
		payload["image_limit"] = imageLimit
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result Result
	if err := c.do(req, config.OCRTimeout, &result); err != nil {
		return nil, fmt.Errorf("ocr processing: %w", err)
	}
	return &result, nil
}

func (c *client) Transcribe(ctx context.Context, fileURL string) (*Transcription, error) {
	form := url.Values{}
	form.Set("model", config.TranscriptionModel)
	form.Set("file_url", fileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/audio/transcriptions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr Transcription
	if err := c.do(req, config.TranscriptionTimeout, &tr); err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	return &tr, nil
}

func (c *client) DeleteFile(ctx context.Context, fileID string) error {
	endpoint := fmt.Sprintf("%s/files/%s", c.baseURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, config.UploadTimeout, nil); err != nil {
		return fmt.Errorf("deleting upload %s: %w", fileID, err)
	}
	return nil
}

func (c *client) do(req *http.Request, timeout time.Duration, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpClient := customHttpClient.PooledClient(timeout)
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
