package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spacesedan/sentiview/internal/logging"
	"github.com/spacesedan/sentiview/internal/mocks"
	"github.com/spacesedan/sentiview/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	require.NoError(t, err)
	require.Equal(t, "TextBlob", cfg.Method)
	require.Empty(t, cfg.FilePath)
	require.Empty(t, cfg.ChartPath)
	require.NoError(t, cfg.Validate())
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-file", "calls/monday.txt",
		"-method", "transformers",
		"-chart", "out.svg",
		"-backend", "http://analyzer:5000",
	})
	require.NoError(t, err)
	require.Equal(t, Config{
		FilePath:   "calls/monday.txt",
		Method:     "transformers",
		ChartPath:  "out.svg",
		BackendURL: "http://analyzer:5000",
	}, cfg)
}

func TestParseFlags_RejectsPositionalArgs(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	_, err := parseFlags(fs, []string{"-method", "TextBlob", "extra"})
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		description string
		cfg         Config
		wantErr     bool
	}{
		{"Should accept the defaults", defaultConfig(), false},
		{"Should accept a png chart", Config{Method: "Transformers", ChartPath: "a/b.PNG"}, false},
		{"Should reject a missing method", Config{}, true},
		{"Should reject an unknown method", Config{Method: "Vader"}, true},
		{"Should reject an unsupported chart format", Config{Method: "TextBlob", ChartPath: "chart.jpg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAnalyze_PrintsMetricsAndWritesChart(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	analyzer.EXPECT().
		Analyze(gomock.Any(), "so so", models.Transformers).
		Return(models.TransformersResult{
			PositiveChunks:   3,
			NegativeChunks:   5,
			AvgPositiveScore: 0.71,
			AvgNegativeScore: 0.64,
			Raw:              json.RawMessage(`{"method":"transformers","positive_chunks":3,"negative_chunks":5,"avg_positive_score":0.71,"avg_negative_score":0.64}`),
		}, nil)

	chartPath := filepath.Join(t.TempDir(), "chart.svg")
	var out bytes.Buffer
	err := analyze(context.Background(), Config{Method: "Transformers", ChartPath: chartPath}, analyzer, strings.NewReader("so so"), &out)
	req.NoError(err)

	printed := out.String()
	req.Contains(printed, "Analysis Complete!")
	req.Contains(printed, `"positive_chunks": 3`)
	req.Contains(printed, "Positive Chunks")
	req.Contains(printed, "Average Positive Score")
	req.Contains(printed, "0.71")
	req.Contains(printed, "Average Negative Score")
	req.Contains(printed, "0.64")

	svg, err := os.ReadFile(chartPath)
	req.NoError(err)
	req.Contains(string(svg), "<svg")
}

func TestAnalyze_WritesPNG(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	analyzer.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), models.TextBlob).
		Return(models.TextBlobResult{Polarity: 0.1, Subjectivity: 0.2, Raw: json.RawMessage(`{}`)}, nil)

	chartPath := filepath.Join(t.TempDir(), "chart.png")
	err := analyze(context.Background(), Config{Method: "TextBlob", ChartPath: chartPath}, analyzer, strings.NewReader("fine"), &bytes.Buffer{})
	require.NoError(t, err)

	png, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestAnalyze_Failures(t *testing.T) {
	t.Run("Should reject a non UTF-8 transcript without calling the analyzer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := analyze(context.Background(), Config{Method: "TextBlob"}, analyzer, bytes.NewReader([]byte{0xff, 0xfe}), &bytes.Buffer{})
		require.ErrorIs(t, err, models.ErrInvalidRequest)
	})

	t.Run("Should print nothing and write no chart when analysis fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		analyzer.EXPECT().
			Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, models.NewTransportError(0, errors.New("connection refused")))

		chartPath := filepath.Join(t.TempDir(), "chart.png")
		var out bytes.Buffer
		err := analyze(context.Background(), Config{Method: "TextBlob", ChartPath: chartPath}, analyzer, strings.NewReader("hi"), &out)
		require.ErrorIs(t, err, models.ErrTransport)
		require.Empty(t, out.String())
		_, statErr := os.Stat(chartPath)
		require.True(t, os.IsNotExist(statErr))
	})
}

func TestAnalyze_LogsStayOffTheReport(t *testing.T) {
	req := require.New(t)
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var logs bytes.Buffer
	logging.InitLogger(&logs, "debug")

	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	// a method mismatch makes the pipeline log a warning
	analyzer.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), models.TextBlob).
		Return(models.TransformersResult{PositiveChunks: 1, Raw: json.RawMessage(`{}`)}, nil)

	var out bytes.Buffer
	err := analyze(context.Background(), Config{Method: "TextBlob"}, analyzer, strings.NewReader("hi"), &out)
	req.NoError(err)
	req.Contains(logs.String(), "[Pipeline]")
	req.NotContains(out.String(), "[Pipeline]")
	req.Contains(out.String(), "Detailed Metrics")
}
