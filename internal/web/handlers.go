package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
	"github.com/spacesedan/sentiview/internal/charts"
	"github.com/spacesedan/sentiview/internal/models"
	"github.com/spacesedan/sentiview/internal/pipeline"
)

const (
	pageTitle     = "Transcript Sentiment Analysis"
	fileField     = "transcript"
	textField     = "text"
	methodField   = "method"
	chartFallback = "Chart unavailable."
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	analyzer       pipeline.Analyzer
	healthy        *atomic.Bool
	maxUploadBytes int64
	tpl            *template.Template
}

type methodOption struct {
	Label    string
	Selected bool
}

type resultView struct {
	Method  string
	Chart   template.HTML
	Raw     string
	Metrics []charts.Metric
}

type pageData struct {
	Title       string
	Methods     []methodOption
	BackendDown bool
	Transcript  string
	Error       string
	Result      *resultView
}

func NewHandler(analyzer pipeline.Analyzer, healthy *atomic.Bool, maxUploadBytes int64) (*Handler, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer must not be nil")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive, got %d", maxUploadBytes)
	}
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Handler{
		analyzer:       analyzer,
		healthy:        healthy,
		maxUploadBytes: maxUploadBytes,
		tpl:            tpl,
	}, nil
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newPage(models.TextBlob))
}

// Analyze handles one form submission. An uploaded file takes precedence over
// the text area.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("[Web] Upload rejected, too large", slog.Int64("limit", tooLarge.Limit))
			page := h.newPage(models.TextBlob)
			page.Error = fmt.Sprintf("The transcript is larger than %d bytes.", h.maxUploadBytes)
			h.render(w, http.StatusRequestEntityTooLarge, page)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			slog.Warn("[Web] Failed to parse form", slog.String("error", err.Error()))
			page := h.newPage(models.TextBlob)
			page.Error = "The submitted form could not be read."
			h.render(w, http.StatusBadRequest, page)
			return
		}
	}

	method, err := models.ParseMethod(r.FormValue(methodField))
	if err != nil {
		h.renderFailure(w, h.newPage(models.TextBlob), err)
		return
	}
	page := h.newPage(method)

	text, err := h.transcript(r)
	if err != nil {
		h.renderFailure(w, page, err)
		return
	}
	page.Transcript = text

	report, err := pipeline.Run(r.Context(), h.analyzer, text, method)
	if err != nil {
		h.renderFailure(w, page, err)
		return
	}

	page.Result = &resultView{
		Method:  report.Result.Method().String(),
		Chart:   chartMarkup(report.Chart),
		Raw:     report.PrettyRaw(),
		Metrics: report.Metrics,
	}
	h.render(w, http.StatusOK, page)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	backend := "unknown"
	if h.healthy != nil {
		backend = lo.Ternary(h.healthy.Load(), "healthy", "unhealthy")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "backend": backend})
}

func (h *Handler) transcript(r *http.Request) (string, error) {
	file, header, err := r.FormFile(fileField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return r.FormValue(textField), nil
	}
	if err != nil {
		return "", models.NewInvalidRequestError("text", fmt.Errorf("failed to read upload: %w", err))
	}
	defer file.Close()

	b, err := io.ReadAll(file)
	if err != nil {
		return "", models.NewInvalidRequestError("text", fmt.Errorf("failed to read upload: %w", err))
	}
	if len(b) > 0 && !isText(b) {
		slog.Warn("[Web] Upload rejected, not a text file",
			slog.String("filename", header.Filename),
			slog.String("detected", mimetype.Detect(b).String()))
		return "", models.NewInvalidRequestError("text", fmt.Errorf("%s is not a text file", header.Filename))
	}
	return pipeline.DecodeTranscript(b)
}

// isText accepts text/plain and anything mimetype derives from it (html, csv, json...).
func isText(b []byte) bool {
	for mt := mimetype.Detect(b); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

func chartMarkup(spec charts.ChartSpec) template.HTML {
	var buf bytes.Buffer
	if err := charts.RenderSVG(spec, &buf); err != nil {
		slog.Error("[Web] Failed to render chart",
			slog.String("chart", spec.ChartTitle()),
			slog.String("error", err.Error()))
		return template.HTML(template.HTMLEscapeString(chartFallback))
	}
	// produced by the chart renderer from numeric values and fixed titles
	return template.HTML(buf.String())
}

func (h *Handler) newPage(selected models.AnalysisMethod) pageData {
	return pageData{
		Title: pageTitle,
		Methods: lo.Map(models.AnalysisMethods, func(m models.AnalysisMethod, _ int) methodOption {
			return methodOption{Label: m.String(), Selected: m == selected}
		}),
		BackendDown: h.healthy != nil && !h.healthy.Load(),
	}
}

func (h *Handler) renderFailure(w http.ResponseWriter, page pageData, err error) {
	status := http.StatusBadGateway
	if models.KindOf(err) == models.KindInvalidRequest {
		status = http.StatusBadRequest
	}
	slog.Warn("[Web] Analysis failed",
		slog.String("kind", models.KindOf(err).String()),
		slog.String("error", err.Error()))

	page.Error = pipeline.UserMessage(err)
	h.render(w, status, page)
}

func (h *Handler) render(w http.ResponseWriter, status int, page pageData) {
	var buf bytes.Buffer
	if err := h.tpl.ExecuteTemplate(&buf, "index.html", page); err != nil {
		slog.Error("[Web] Failed to execute template", slog.String("error", err.Error()))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
