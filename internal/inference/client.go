package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WorkersAIClient calls the Workers AI REST API for text and image models.
type WorkersAIClient struct {
	baseURL    string
	accountID  string
	apiToken   string
	textModel  string
	imageModel string
	httpClient *http.Client
}

// NewWorkersAIClient creates a client. A zero timeout means no client-side
// timeout, which streaming responses need.
func NewWorkersAIClient(baseURL, accountID, apiToken, textModel, imageModel string, timeout time.Duration) *WorkersAIClient {
	return &WorkersAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountID:  accountID,
		apiToken:   apiToken,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type runRequest struct {
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream,omitempty"`
}

type runResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Generate runs the text model and returns the complete response.
func (c *WorkersAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.run(ctx, c.textModel, runRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var apiResp runResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !apiResp.Success {
		if len(apiResp.Errors) > 0 {
			return "", fmt.Errorf("workers ai error %d: %s", apiResp.Errors[0].Code, apiResp.Errors[0].Message)
		}
		return "", fmt.Errorf("workers ai reported failure")
	}
	return apiResp.Result.Response, nil
}

// GenerateStream runs the text model in streaming mode and hands back the
// unread event-stream body. The caller must close it.
func (c *WorkersAIClient) GenerateStream(ctx context.Context, prompt string) (io.ReadCloser, error) {
	resp, err := c.run(ctx, c.textModel, runRequest{Prompt: prompt, Stream: true})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GenerateImage runs the image model and returns the PNG bytes.
func (c *WorkersAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.run(ctx, c.imageModel, runRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	img, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("empty image from workers ai")
	}
	return img, nil
}

// run posts to the model endpoint and returns the response when the status
// is 200. Any other status is turned into a *StatusError.
func (c *WorkersAIClient) run(ctx context.Context, model string, req runRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("workers ai: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return resp, nil
}

// Close releases resources.
func (c *WorkersAIClient) Close() {
	c.httpClient.CloseIdleConnections()
}

// StatusError is a non-200 reply from the model API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("workers ai status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

// Transient reports whether the status usually clears on its own.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
