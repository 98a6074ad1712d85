package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spacesedan/sentiview/internal/models"
)

type Config struct {
	FilePath   string
	Method     string
	ChartPath  string
	BackendURL string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Method) == "" {
		return errors.New("missing -method")
	}
	if _, err := models.ParseMethod(c.Method); err != nil {
		return fmt.Errorf("invalid -method %q: want one of TextBlob, Transformers", c.Method)
	}
	if c.ChartPath != "" {
		switch strings.ToLower(filepath.Ext(c.ChartPath)) {
		case ".png", ".svg":
		default:
			return fmt.Errorf("invalid -chart %q: extension must be .png or .svg", c.ChartPath)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Method: models.TextBlob.String(),
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.FilePath, "file", cfg.FilePath, "Path to a UTF-8 transcript (.txt). Reads stdin when empty")
	fs.StringVar(&cfg.Method, "method", cfg.Method, "Sentiment analysis method: TextBlob or Transformers")
	fs.StringVar(&cfg.ChartPath, "chart", cfg.ChartPath, "Write the chart to this file (.png or .svg)")
	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "Override BACKEND_URL")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return cfg, nil
}
