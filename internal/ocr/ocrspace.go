package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	DefaultOCRSpaceURL    = "https://api.ocr.space/parse/image"
	DefaultOCRSpaceAPIKey = "helloworld"
)

// OCRSpaceEngine calls the OCR.space parse endpoint.
type OCRSpaceEngine struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewOCRSpaceEngine(apiKey, endpoint string, client *http.Client) *OCRSpaceEngine {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = DefaultOCRSpaceAPIKey
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultOCRSpaceURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &OCRSpaceEngine{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   client,
	}
}

func (e *OCRSpaceEngine) Name() string {
	return "ocr.space"
}

func (e *OCRSpaceEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	body, contentType, err := buildOCRSpaceForm(e.apiKey, image)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("ocr.space: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr.space: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ocr.space: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("ocr.space: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("ocr.space: decode response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr.space: processing error: %s", strings.TrimSpace(string(parsed.ErrorMessage)))
	}
	if len(parsed.ParsedResults) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.ParsedResults[0].ParsedText), nil
}

func buildOCRSpaceForm(apiKey string, image []byte) (*bytes.Buffer, string, error) {
	if len(image) == 0 {
		return nil, "", fmt.Errorf("ocr.space: image data is required")
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	dataURI := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"apikey", apiKey},
		{"base64Image", dataURI},
		{"language", "eng"},
		{"isOverlayRequired", "false"},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("ocr.space: write %s field: %w", field[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("ocr.space: close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}
