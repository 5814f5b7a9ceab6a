// Package kie implements the external-worker contract against the KIE
// jobs API (the hosted nano-banana image-generation service). The worker
// is asynchronous: createTask starts a job, completion arrives through a
// webhook to our callback endpoint, and recordInfo serves as the pull
// fallback when no callback lands.
package kie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xsideai/pixgen-api/internal/worker"
)

const defaultTimeout = 30 * time.Second

// Client talks to the KIE jobs API. It implements both worker.Worker and
// worker.StatusPuller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a KIE client for the given API base URL and key.
// If logger is nil, a default logger will be used.
func NewClient(baseURL, apiKey string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.With(slog.String("component", "kie_client")),
	}
}

var (
	_ worker.Worker       = (*Client)(nil)
	_ worker.StatusPuller = (*Client)(nil)
)

// createTaskRequest is the wire payload for starting a job.
type createTaskRequest struct {
	Model       string          `json:"model"`
	CallBackURL string          `json:"callBackUrl"`
	Input       createTaskInput `json:"input"`
}

type createTaskInput struct {
	Prompt       string   `json:"prompt"`
	OutputFormat string   `json:"output_format,omitempty"`
	ImageSize    string   `json:"image_size,omitempty"`
	ImageURLs    []string `json:"image_urls,omitempty"`
}

// apiEnvelope is the common KIE response wrapper.
type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// diagnostic returns the upstream's own error text, preferring the long
// form. The text is passed through verbatim: callers need the original
// wording to decide what went wrong.
func (e *apiEnvelope) diagnostic() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Msg
}

// Submit implements worker.Worker.Submit via POST /api/v1/jobs/createTask.
func (c *Client) Submit(ctx context.Context, req worker.SubmitRequest) (string, error) {
	payload := createTaskRequest{
		Model:       req.Model,
		CallBackURL: req.CallbackURL,
		Input: createTaskInput{
			Prompt:       req.Prompt,
			OutputFormat: req.Format,
			ImageSize:    req.Aspect,
			ImageURLs:    req.ImageURLs,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal createTask payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/v1/jobs/createTask",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build createTask request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &worker.UpstreamError{Message: "failed to reach generation service", Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", slog.String("error", closeErr.Error()))
		}
	}()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &worker.UpstreamError{
			Code:    resp.StatusCode,
			Message: "unparseable response from generation service",
			Err:     err,
		}
	}

	var data struct {
		TaskID string `json:"taskId"`
	}
	if envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return "", &worker.UpstreamError{
				Code:    envelope.Code,
				Message: "unparseable task data from generation service",
				Err:     err,
			}
		}
	}

	if envelope.Code != 200 || data.TaskID == "" {
		// A 200 envelope without a task id gets an explicit diagnostic;
		// its own message text ("success") would be misleading.
		var message string
		if envelope.Code != 200 {
			message = envelope.diagnostic()
		}
		if message == "" {
			message = "no taskId returned"
		}
		c.logger.Warn("createTask rejected",
			slog.Int("code", envelope.Code),
			slog.String("message", message))
		return "", &worker.UpstreamError{Code: envelope.Code, Message: message}
	}

	c.logger.Debug("createTask accepted", slog.String("task_id", data.TaskID))
	return data.TaskID, nil
}

// recordInfoData is the job record returned by the pull endpoint.
type recordInfoData struct {
	TaskID     string `json:"taskId"`
	State      string `json:"state"`
	ResultJSON string `json:"resultJson"`
	FailMsg    string `json:"failMsg"`
}

// PullStatus implements worker.StatusPuller via
// GET /api/v1/jobs/recordInfo?taskId=.
func (c *Client) PullStatus(ctx context.Context, jobID string) (*worker.PullResult, error) {
	endpoint := fmt.Sprintf(
		"%s/api/v1/jobs/recordInfo?taskId=%s",
		c.baseURL,
		url.QueryEscape(jobID),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build recordInfo request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &worker.UpstreamError{Message: "failed to reach generation service", Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", slog.String("error", closeErr.Error()))
		}
	}()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &worker.UpstreamError{
			Code:    resp.StatusCode,
			Message: "unparseable response from generation service",
			Err:     err,
		}
	}

	if envelope.Code != 200 {
		message := envelope.diagnostic()
		if message == "" {
			message = fmt.Sprintf("recordInfo returned code %d", envelope.Code)
		}
		return nil, &worker.UpstreamError{Code: envelope.Code, Message: message}
	}

	var data recordInfoData
	if envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, &worker.UpstreamError{
				Code:    envelope.Code,
				Message: "unparseable record data from generation service",
				Err:     err,
			}
		}
	}

	switch data.State {
	case "success":
		return &worker.PullResult{
			Done:      true,
			Succeeded: true,
			ResultURL: FirstResultURL(data.ResultJSON),
		}, nil
	case "fail":
		failMsg := data.FailMsg
		if failMsg == "" {
			failMsg = envelope.diagnostic()
		}
		return &worker.PullResult{
			Done:           true,
			FailureMessage: failMsg,
		}, nil
	default:
		// waiting / queuing / generating: still in progress.
		return &worker.PullResult{}, nil
	}
}

// FirstResultURL extracts the first artifact URL from a resultJson string.
// The field is a JSON document whose URL array has gone by several names
// across API revisions. Unparseable or empty documents yield "", which
// reconciliation treats as a missing result.
func FirstResultURL(resultJSON string) string {
	if resultJSON == "" {
		return ""
	}

	var parsed struct {
		ResultURLs []string `json:"resultUrls"`
		URLs       []string `json:"urls"`
		Images     []string `json:"images"`
	}
	if err := json.Unmarshal([]byte(resultJSON), &parsed); err != nil {
		return ""
	}

	for _, urls := range [][]string{parsed.ResultURLs, parsed.URLs, parsed.Images} {
		if len(urls) > 0 {
			return urls[0]
		}
	}
	return ""
}
