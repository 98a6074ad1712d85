package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type AnalysisMethod string

const (
	TextBlob     AnalysisMethod = "TextBlob"
	Transformers AnalysisMethod = "Transformers"
)

// AnalysisMethods lists the methods in the order they are offered to users.
var AnalysisMethods = []AnalysisMethod{TextBlob, Transformers}

// WireName is the lower-cased label sent to and returned by the backend.
func (m AnalysisMethod) WireName() string {
	return strings.ToLower(string(m))
}

func (m AnalysisMethod) Valid() bool {
	return lo.Contains(AnalysisMethods, m)
}

func (m AnalysisMethod) String() string {
	return string(m)
}

// ParseMethod accepts a label or a wire name, ignoring case.
func ParseMethod(s string) (AnalysisMethod, error) {
	s = strings.TrimSpace(s)
	m, ok := lo.Find(AnalysisMethods, func(m AnalysisMethod) bool {
		return strings.EqualFold(string(m), s)
	})
	if !ok {
		return "", NewInvalidRequestError("method", fmt.Errorf("unknown analysis method %q", s))
	}
	return m, nil
}

// MethodFromWire resolves a response discriminant. Only the exact wire name matches.
func MethodFromWire(s string) (AnalysisMethod, bool) {
	return lo.Find(AnalysisMethods, func(m AnalysisMethod) bool {
		return m.WireName() == s
	})
}

// AnalysisResult is one of TextBlobResult or TransformersResult.
type AnalysisResult interface {
	Method() AnalysisMethod
	// RawJSON is the response body the result was validated from.
	RawJSON() json.RawMessage
	isAnalysisResult()
}

// Concrete returns the value form of a result. Pointer variants satisfy
// AnalysisResult too; a nil pointer yields nil.
func Concrete(r AnalysisResult) AnalysisResult {
	switch v := r.(type) {
	case *TextBlobResult:
		if v == nil {
			return nil
		}
		return *v
	case *TransformersResult:
		if v == nil {
			return nil
		}
		return *v
	default:
		return r
	}
}

type TextBlobResult struct {
	Polarity     float64         `json:"polarity"`
	Subjectivity float64         `json:"subjectivity"`
	Raw          json.RawMessage `json:"-"`
}

func (TextBlobResult) Method() AnalysisMethod     { return TextBlob }
func (r TextBlobResult) RawJSON() json.RawMessage { return r.Raw }
func (TextBlobResult) isAnalysisResult()          {}

func (r TextBlobResult) MarshalJSON() ([]byte, error) {
	type fields TextBlobResult
	return json.Marshal(struct {
		Method string `json:"method"`
		fields
	}{r.Method().WireName(), fields(r)})
}

type TransformersResult struct {
	PositiveChunks   int             `json:"positive_chunks"`
	NegativeChunks   int             `json:"negative_chunks"`
	AvgPositiveScore float64         `json:"avg_positive_score"`
	AvgNegativeScore float64         `json:"avg_negative_score"`
	Raw              json.RawMessage `json:"-"`
}

func (TransformersResult) Method() AnalysisMethod     { return Transformers }
func (r TransformersResult) RawJSON() json.RawMessage { return r.Raw }
func (TransformersResult) isAnalysisResult()          {}

func (r TransformersResult) MarshalJSON() ([]byte, error) {
	type fields TransformersResult
	return json.Marshal(struct {
		Method string `json:"method"`
		fields
	}{r.Method().WireName(), fields(r)})
}
