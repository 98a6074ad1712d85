// Package pipeline runs one transcript submission end to end:
// analyze, then pick the chart and metrics for the validated result.
package pipeline

//go:generate go run go.uber.org/mock/mockgen -destination=../mocks/mock_analyzer.go -package=mocks github.com/spacesedan/sentiview/internal/pipeline Analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/spacesedan/sentiview/internal/charts"
	"github.com/spacesedan/sentiview/internal/models"
)

type Analyzer interface {
	Analyze(ctx context.Context, text string, method models.AnalysisMethod) (models.AnalysisResult, error)
}

type Report struct {
	// Requested is the method the user chose. Result.Method() is what the
	// backend answered with, and is what the chart and metrics follow.
	Requested models.AnalysisMethod
	Result    models.AnalysisResult
	Chart     charts.ChartSpec
	Metrics   []charts.Metric
}

// Run is strictly sequential and never returns a partially filled Report.
func Run(ctx context.Context, analyzer Analyzer, text string, method models.AnalysisMethod) (Report, error) {
	result, err := analyzer.Analyze(ctx, text, method)
	if err != nil {
		return Report{}, err
	}
	result = models.Concrete(result)
	if result == nil {
		return Report{}, models.NewSchemaError("", errors.New("analyzer returned no result"))
	}

	if result.Method() != method {
		slog.Warn("[Pipeline] Backend answered with a different method than requested",
			slog.String("requested", method.String()),
			slog.String("received", result.Method().String()))
	}

	return Report{
		Requested: method,
		Result:    result,
		Chart:     charts.Select(result),
		Metrics:   charts.Metrics(result),
	}, nil
}

// PrettyRaw is the indented response body, or the body as-is when it cannot be indented.
func (r Report) PrettyRaw() string {
	if r.Result == nil {
		return ""
	}
	raw := r.Result.RawJSON()
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// DecodeTranscript turns uploaded file bytes into transcript text.
func DecodeTranscript(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", models.NewInvalidRequestError("text", errors.New("transcript file is not valid UTF-8"))
	}
	return string(b), nil
}

// UserMessage is the text shown to a user for a failed submission.
func UserMessage(err error) string {
	var ae *models.AnalysisError
	if !errors.As(err, &ae) {
		return fmt.Sprintf("Error processing transcript: %v", err)
	}

	switch ae.Kind {
	case models.KindInvalidRequest:
		return "Please provide a non-empty UTF-8 transcript and choose a valid method."
	case models.KindTransport:
		if ae.StatusCode != 0 {
			return fmt.Sprintf("Could not reach the analysis service (status %d).", ae.StatusCode)
		}
		return "Could not reach the analysis service."
	case models.KindSchema:
		if ae.Field != "" {
			return fmt.Sprintf("The analysis service returned an unrecognized result (field %q).", ae.Field)
		}
		return "The analysis service returned an unrecognized result."
	default:
		return fmt.Sprintf("Error processing transcript: %v", err)
	}
}
