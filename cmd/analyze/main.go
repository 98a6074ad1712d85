package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spacesedan/sentiview/config"
	"github.com/spacesedan/sentiview/internal/charts"
	"github.com/spacesedan/sentiview/internal/clients"
	"github.com/spacesedan/sentiview/internal/logging"
	"github.com/spacesedan/sentiview/internal/models"
	"github.com/spacesedan/sentiview/internal/pipeline"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	config.LoadEnv(config.AppEnv())
	appCfg, err := loadAppConfig(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	logging.InitLogger(os.Stderr, appCfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := io.Reader(os.Stdin)
	if cfg.FilePath != "" {
		f, err := os.Open(cfg.FilePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if err := analyze(ctx, cfg, clients.NewAnalysisClient(appCfg), in, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, pipeline.UserMessage(err))
		os.Exit(1)
	}
}

func loadAppConfig(cfg Config) (config.Config, error) {
	if cfg.BackendURL != "" {
		if err := os.Setenv("BACKEND_URL", cfg.BackendURL); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load()
}

// analyze reads one transcript from in, runs it through analyzer and prints
// the raw result and the metrics table to out.
func analyze(ctx context.Context, cfg Config, analyzer pipeline.Analyzer, in io.Reader, out io.Writer) error {
	method, err := models.ParseMethod(cfg.Method)
	if err != nil {
		return err
	}

	b, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	text, err := pipeline.DecodeTranscript(b)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx, analyzer, text, method)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Analysis Complete!")
	fmt.Fprintln(out, report.PrettyRaw())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Detailed Metrics")
	writeMetrics(out, report)

	if cfg.ChartPath != "" {
		if err := writeChart(cfg.ChartPath, report.Chart); err != nil {
			return err
		}
		fmt.Fprintf(out, "chart=%s\n", cfg.ChartPath)
	}
	return nil
}

func writeMetrics(out io.Writer, report pipeline.Report) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"Method", report.Result.Method().String()})
	switch r := report.Result.(type) {
	case models.TextBlobResult:
		table.Append([]string{"Polarity", charts.FormatScore(r.Polarity)})
	case models.TransformersResult:
		table.Append([]string{"Positive Chunks", fmt.Sprint(r.PositiveChunks)})
		table.Append([]string{"Negative Chunks", fmt.Sprint(r.NegativeChunks)})
	}
	for _, m := range report.Metrics {
		table.Append([]string{m.Label, m.Value})
	}
	table.Render()
}

func writeChart(path string, spec charts.ChartSpec) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return charts.RenderSVG(spec, f)
	}
	return charts.RenderPNG(spec, f)
}
