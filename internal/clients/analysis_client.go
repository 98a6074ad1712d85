package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/sentiview/config"
	"github.com/spacesedan/sentiview/internal/models"
	"github.com/spacesedan/sentiview/internal/schema"
)

const (
	USER_AGENT        = "sentiview/0.1"
	REQUEST_ID_HEADER = "X-Request-ID"
)

// AnalysisClient talks to the remote sentiment analysis service. Each call to
// Analyze issues at most one request; there is no retry and no caching.
type AnalysisClient struct {
	Client           *http.Client
	analyzeURL       string
	healthURL        string
	maxResponseBytes int64
}

func NewAnalysisClient(cfg config.Config) *AnalysisClient {
	slog.Info("[AnalysisClient] Initializing Client",
		slog.String("endpoint", cfg.AnalyzeURL()),
		slog.Duration("timeout", cfg.RequestTimeout),
		slog.String("env", cfg.AppEnv))

	return &AnalysisClient{
		Client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		analyzeURL:       cfg.AnalyzeURL(),
		healthURL:        cfg.HealthURL(),
		maxResponseBytes: cfg.MaxResponseBytes,
	}
}

// Analyze sends text for analysis with the given method. The returned error is
// always a *models.AnalysisError: InvalidRequest before any network call,
// TransportError for connection failures and non-2xx statuses, SchemaError when
// the body is not a recognizable result.
func (a *AnalysisClient) Analyze(ctx context.Context, text string, method models.AnalysisMethod) (models.AnalysisResult, error) {
	// the wire name is lower-cased, so only the typed value can tell "TEXTBLOB" from TextBlob
	if !method.Valid() {
		slog.Warn("[AnalysisClient] Rejected request before sending",
			slog.String("method", string(method)))
		return nil, models.NewInvalidRequestError("method", fmt.Errorf("unknown analysis method %q", method))
	}

	request := models.NewAnalysisRequest(text, method)
	if err := request.Validate(); err != nil {
		slog.Warn("[AnalysisClient] Rejected request before sending",
			slog.String("error", err.Error()))
		return nil, err
	}

	requestID := uuid.NewString()
	log := slog.With(
		slog.String("request_id", requestID),
		slog.String("method", request.Method))

	log.Info("[AnalysisClient] Requesting sentiment analysis from sentiment analysis service",
		slog.Int("text_length", len(request.Text)))
	start := time.Now()

	body, err := a.postJSON(ctx, requestID, request)
	if err != nil {
		log.Error("[AnalysisClient] Sentiment Analysis request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}

	result, err := schema.Validate(body)
	if err != nil {
		log.Error("[AnalysisClient] Unrecognized analysis result",
			slog.String("error", err.Error()),
			getPreview(body),
			slog.Int("raw_response_length", len(body)))
		return nil, err
	}

	log.Info("[AnalysisClient] Sentiment Analysis request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// HealthCheck reports whether the service answers its health endpoint with a 2xx.
func (a *AnalysisClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.healthURL, nil)
	if err != nil {
		slog.Error("[AnalysisClient] Failed to build health request",
			slog.String("endpoint", a.healthURL),
			slog.String("error", err.Error()))
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := a.Client.Do(req)
	if err != nil || !isSuccess(resp.StatusCode) {
		slog.Debug("[AnalysisClient] Health check failed",
			slog.String("endpoint", a.healthURL),
			slog.String("error", errMsg(err, resp)))
		if resp != nil {
			resp.Body.Close()
		}
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, a.maxResponseBytes))
	return true
}

// postJSON sends input and returns the raw body of a 2xx response.
func (a *AnalysisClient) postJSON(ctx context.Context, requestID string, input any) ([]byte, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, models.NewInvalidRequestError("", fmt.Errorf("failed to marshal input: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.analyzeURL, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewTransportError(0, fmt.Errorf("failed to build request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set(REQUEST_ID_HEADER, requestID)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, models.NewTransportError(0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		// drain so the connection can be reused; the body is never interpreted
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, a.maxResponseBytes))
		return nil, models.NewTransportError(resp.StatusCode, fmt.Errorf("unexpected %s", errMsg(nil, resp)))
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, a.maxResponseBytes+1))
	if err != nil {
		return nil, models.NewTransportError(0, fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(respBody)) > a.maxResponseBytes {
		return nil, models.NewSchemaError("", fmt.Errorf("response body exceeds %d bytes", a.maxResponseBytes))
	}

	return respBody, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
