package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/ink-check/internal/logging"
)

const canonicalFieldName = "image"

// HTTPClient talks to the remote classifier over multipart HTTP. The
// classifier expects the canonical PNG as a form file and answers with
// a {prediction, label, confidence} JSON body.
type HTTPClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPClient builds a classifier client for the given endpoint.
func NewHTTPClient(url string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.Named("classifier_client"),
	}
}

// Classify uploads a canonical sample buffer and parses the model's answer.
func (c *HTTPClient) Classify(ctx context.Context, canonical []byte) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(canonicalFieldName, "canonical.png")
	if err != nil {
		return nil, logging.NewOperationError("classifier.build_request", "", err)
	}
	if _, err := part.Write(canonical); err != nil {
		return nil, logging.NewOperationError("classifier.build_request", "", err)
	}
	if err := writer.Close(); err != nil {
		return nil, logging.NewOperationError("classifier.build_request", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, logging.NewOperationError("classifier.build_request", "", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		wrapped := logging.NewOperationError("classifier.classify", "", err)
		c.logger.Error("classifier call failed", zap.Error(wrapped))
		return nil, wrapped
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("classifier returned status %d", resp.StatusCode)
		c.logger.Error("classifier call failed", zap.Error(err))
		return nil, logging.NewOperationError("classifier.classify", "", err)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, logging.NewOperationError("classifier.decode_response", "", err)
	}
	return &result, nil
}

// CheckHealth probes the classifier's health endpoint.
func (c *HTTPClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier health returned status %d", resp.StatusCode)
	}
	return nil
}
