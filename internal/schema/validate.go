// Package schema turns a backend response body into a typed analysis result.
//
// The "method" discriminant alone selects the variant. Every field the variant
// needs must be present with the right JSON type; nothing is defaulted.
// Fields the variant does not use are ignored. A body that repeats the
// discriminant is rejected rather than resolved by key order.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/spacesedan/sentiview/internal/models"
	"github.com/tidwall/gjson"
)

const (
	FieldMethod           = "method"
	FieldPolarity         = "polarity"
	FieldSubjectivity     = "subjectivity"
	FieldPositiveChunks   = "positive_chunks"
	FieldNegativeChunks   = "negative_chunks"
	FieldAvgPositiveScore = "avg_positive_score"
	FieldAvgNegativeScore = "avg_negative_score"
)

// largest integer a float64 holds exactly
const maxExactInt = 1 << 53

// Validate parses raw and returns a TextBlobResult or TransformersResult.
// Any failure is a SchemaError naming the offending field.
func Validate(raw []byte) (models.AnalysisResult, error) {
	if !gjson.ValidBytes(raw) {
		return nil, models.NewSchemaError("", errors.New("response body is not valid JSON"))
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, models.NewSchemaError("", errors.New("response body is not a JSON object"))
	}

	method, err := discriminant(doc)
	if err != nil {
		return nil, err
	}

	body := append(json.RawMessage(nil), raw...)

	switch method {
	case models.TextBlob:
		return textBlob(doc, body)
	case models.Transformers:
		return transformers(doc, body)
	default:
		return nil, models.NewSchemaError(FieldMethod, fmt.Errorf("unsupported method %q", method))
	}
}

func discriminant(doc gjson.Result) (models.AnalysisMethod, error) {
	r := doc.Get(FieldMethod)
	if !r.Exists() {
		return "", models.NewSchemaError(FieldMethod, errors.New("discriminant is missing"))
	}
	if r.Type != gjson.String {
		return "", models.NewSchemaError(FieldMethod, fmt.Errorf("discriminant must be a string, got %s", r.Type))
	}
	if n := keyCount(doc, FieldMethod); n > 1 {
		return "", models.NewSchemaError(FieldMethod, fmt.Errorf("discriminant appears %d times", n))
	}
	method, ok := models.MethodFromWire(r.Str)
	if !ok {
		return "", models.NewSchemaError(FieldMethod, fmt.Errorf("unknown method %q", r.Str))
	}
	return method, nil
}

func keyCount(doc gjson.Result, key string) int {
	n := 0
	doc.ForEach(func(k, _ gjson.Result) bool {
		if k.Str == key {
			n++
		}
		return true
	})
	return n
}

func textBlob(doc gjson.Result, raw json.RawMessage) (models.AnalysisResult, error) {
	polarity, err := numberIn(doc, FieldPolarity, -1, 1)
	if err != nil {
		return nil, err
	}
	subjectivity, err := numberIn(doc, FieldSubjectivity, 0, 1)
	if err != nil {
		return nil, err
	}

	return models.TextBlobResult{
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Raw:          raw,
	}, nil
}

func transformers(doc gjson.Result, raw json.RawMessage) (models.AnalysisResult, error) {
	positive, err := count(doc, FieldPositiveChunks)
	if err != nil {
		return nil, err
	}
	negative, err := count(doc, FieldNegativeChunks)
	if err != nil {
		return nil, err
	}
	avgPositive, err := number(doc, FieldAvgPositiveScore)
	if err != nil {
		return nil, err
	}
	avgNegative, err := number(doc, FieldAvgNegativeScore)
	if err != nil {
		return nil, err
	}

	return models.TransformersResult{
		PositiveChunks:   positive,
		NegativeChunks:   negative,
		AvgPositiveScore: avgPositive,
		AvgNegativeScore: avgNegative,
		Raw:              raw,
	}, nil
}

func number(doc gjson.Result, field string) (float64, error) {
	r := doc.Get(field)
	if !r.Exists() {
		return 0, models.NewSchemaError(field, errors.New("field is missing"))
	}
	if r.Type != gjson.Number {
		return 0, models.NewSchemaError(field, fmt.Errorf("expected a number, got %s", r.Type))
	}
	return r.Num, nil
}

func numberIn(doc gjson.Result, field string, lo, hi float64) (float64, error) {
	v, err := number(doc, field)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, models.NewSchemaError(field, fmt.Errorf("%v is outside [%v, %v]", v, lo, hi))
	}
	return v, nil
}

// count accepts integral JSON numbers (3 or 3.0) that are not negative.
func count(doc gjson.Result, field string) (int, error) {
	v, err := number(doc, field)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, models.NewSchemaError(field, fmt.Errorf("%v is not an integer", v))
	}
	if v < 0 {
		return 0, models.NewSchemaError(field, fmt.Errorf("%v is negative", v))
	}
	if v > maxExactInt {
		return 0, models.NewSchemaError(field, fmt.Errorf("%v is out of range", v))
	}
	return int(v), nil
}
