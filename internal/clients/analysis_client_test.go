package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/sentiview/config"
	"github.com/spacesedan/sentiview/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	*httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value
	lastID   atomic.Value
}

func newFakeBackend(t *testing.T, handler http.HandlerFunc) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/analyze" {
			fb.calls.Add(1)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			fb.lastBody.Store(body)
			fb.lastID.Store(r.Header.Get(REQUEST_ID_HEADER))
		}
		handler(w, r)
	}))
	t.Cleanup(fb.Close)
	return fb
}

func newTestClient(baseURL string) *AnalysisClient {
	return NewAnalysisClient(config.Config{
		BackendURL:       baseURL,
		AnalyzePath:      "/api/analyze",
		HealthPath:       "/health",
		RequestTimeout:   2 * time.Second,
		MaxResponseBytes: 1 << 10,
	})
}

func respondJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func requireKind(t *testing.T, err error, kind models.ErrorKind) *models.AnalysisError {
	t.Helper()
	var ae *models.AnalysisError
	require.True(t, errors.As(err, &ae), "expected *models.AnalysisError, got %T: %v", err, err)
	require.Equal(t, kind, ae.Kind, "error: %v", err)
	return ae
}

func TestAnalyze_TextBlobSuccess(t *testing.T) {
	req := require.New(t)
	backend := newFakeBackend(t, respondJSON(`{"method":"textblob","polarity":0.8,"subjectivity":0.6}`))
	client := newTestClient(backend.URL)

	result, err := client.Analyze(context.Background(), "I love this", models.TextBlob)
	req.NoError(err)
	req.Equal(models.TextBlobResult{
		Polarity:     0.8,
		Subjectivity: 0.6,
		Raw:          json.RawMessage(`{"method":"textblob","polarity":0.8,"subjectivity":0.6}`),
	}, result)

	req.Equal(int32(1), backend.calls.Load())
	req.Equal(map[string]any{"text": "I love this", "method": "textblob"}, backend.lastBody.Load())
	_, err = uuid.Parse(backend.lastID.Load().(string))
	req.NoError(err, "X-Request-ID should be a uuid")
}

func TestAnalyze_TransformersSuccess(t *testing.T) {
	req := require.New(t)
	backend := newFakeBackend(t, respondJSON(`{"method":"transformers","positive_chunks":3,"negative_chunks":5,"avg_positive_score":0.71,"avg_negative_score":0.64,"model":"distilbert"}`))
	client := newTestClient(backend.URL)

	result, err := client.Analyze(context.Background(), "mixed feelings", models.Transformers)
	req.NoError(err)

	tr, ok := result.(models.TransformersResult)
	req.True(ok)
	req.Equal(3, tr.PositiveChunks)
	req.Equal(5, tr.NegativeChunks)
	req.Equal(map[string]any{"text": "mixed feelings", "method": "transformers"}, backend.lastBody.Load())
}

func TestAnalyze_InvalidRequestSendsNothing(t *testing.T) {
	backend := newFakeBackend(t, respondJSON(`{"method":"textblob","polarity":0.1,"subjectivity":0.1}`))
	client := newTestClient(backend.URL)

	tests := []struct {
		description string
		text        string
		method      models.AnalysisMethod
		wantField   string
	}{
		{"Should reject empty text", "", models.TextBlob, "text"},
		{"Should reject blank text", "   \n", models.Transformers, "text"},
		{"Should reject invalid UTF-8", "\xc3\x28", models.TextBlob, "text"},
		{"Should reject an unknown method", "hello", models.AnalysisMethod("Vader"), "method"},
		{"Should reject an upper-cased method", "hello", models.AnalysisMethod("TEXTBLOB"), "method"},
		{"Should reject a wire name as the method", "hello", models.AnalysisMethod("textblob"), "method"},
		{"Should reject an empty method", "hello", models.AnalysisMethod(""), "method"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			result, err := client.Analyze(context.Background(), tt.text, tt.method)
			require.Nil(t, result)
			ae := requireKind(t, err, models.KindInvalidRequest)
			require.Equal(t, tt.wantField, ae.Field)
		})
	}

	require.Equal(t, int32(0), backend.calls.Load())
}

func TestAnalyze_ConnectionRefused(t *testing.T) {
	backend := newFakeBackend(t, respondJSON(`{}`))
	url := backend.URL
	backend.Close()

	result, err := newTestClient(url).Analyze(context.Background(), "I love this", models.TextBlob)
	require.Nil(t, result)
	require.ErrorIs(t, err, models.ErrTransport)
	require.NotErrorIs(t, err, models.ErrSchema)
}

func TestAnalyze_NonSuccessStatusIsTransport(t *testing.T) {
	// a well-formed result body must not be read when the status is an error
	backend := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"method":"textblob","polarity":0.1,"subjectivity":0.1}`))
	})

	result, err := newTestClient(backend.URL).Analyze(context.Background(), "hello", models.TextBlob)
	require.Nil(t, result)
	ae := requireKind(t, err, models.KindTransport)
	require.Equal(t, http.StatusBadGateway, ae.StatusCode)
	require.Equal(t, int32(1), backend.calls.Load())
}

func TestAnalyze_NoRetryOnServerError(t *testing.T) {
	backend := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := newTestClient(backend.URL).Analyze(context.Background(), "hello", models.Transformers)
	require.ErrorIs(t, err, models.ErrTransport)
	require.Equal(t, int32(1), backend.calls.Load())
}

func TestAnalyze_Timeout(t *testing.T) {
	backend := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		respondJSON(`{"method":"textblob","polarity":0.1,"subjectivity":0.1}`)(w, r)
	})
	client := newTestClient(backend.URL)
	client.Client.Timeout = 20 * time.Millisecond

	_, err := client.Analyze(context.Background(), "hello", models.TextBlob)
	require.ErrorIs(t, err, models.ErrTransport)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	backend := newFakeBackend(t, respondJSON(`{"method":"textblob","polarity":0.1,"subjectivity":0.1}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(backend.URL).Analyze(ctx, "hello", models.TextBlob)
	require.ErrorIs(t, err, models.ErrTransport)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_SchemaFailures(t *testing.T) {
	tests := []struct {
		description string
		body        string
		wantField   string
	}{
		{"Should fail on a non-JSON body", `<html>oops</html>`, ""},
		{"Should fail on a missing discriminant", `{"polarity":0.8,"subjectivity":0.6}`, "method"},
		{"Should fail on an unknown discriminant", `{"method":"unknown"}`, "method"},
		{"Should fail on a missing field", `{"method":"transformers","positive_chunks":3}`, "negative_chunks"},
		{"Should fail on an oversized body", `{"method":"textblob","pad":"` + strings.Repeat("x", 2048) + `"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			backend := newFakeBackend(t, respondJSON(tt.body))
			result, err := newTestClient(backend.URL).Analyze(context.Background(), "hello", models.TextBlob)
			require.Nil(t, result)
			ae := requireKind(t, err, models.KindSchema)
			require.Equal(t, tt.wantField, ae.Field)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	healthy := atomic.Bool{}
	backend := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	client := newTestClient(backend.URL)

	require.False(t, client.HealthCheck(context.Background()))
	healthy.Store(true)
	require.True(t, client.HealthCheck(context.Background()))
	require.Equal(t, int32(0), backend.calls.Load(), "health checks must not hit the analyze endpoint")

	url := backend.URL
	backend.Close()
	require.False(t, newTestClient(url).HealthCheck(context.Background()))
}
