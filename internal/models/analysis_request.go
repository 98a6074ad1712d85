package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so errors match the wire fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// AnalysisRequest is the body POSTed to the analysis endpoint.
type AnalysisRequest struct {
	Text   string `json:"text" validate:"required"`
	Method string `json:"method" validate:"required,oneof=textblob transformers"`
}

func NewAnalysisRequest(text string, method AnalysisMethod) AnalysisRequest {
	return AnalysisRequest{
		Text:   text,
		Method: method.WireName(),
	}
}

// Validate returns an InvalidRequest AnalysisError when the request must not be sent.
func (r AnalysisRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return NewInvalidRequestError(fe.Field(), fmt.Errorf("failed %q validation", fe.Tag()))
		}
		return NewInvalidRequestError("", err)
	}

	if strings.TrimSpace(r.Text) == "" {
		return NewInvalidRequestError("text", errors.New("transcript is blank"))
	}
	if !utf8.ValidString(r.Text) {
		return NewInvalidRequestError("text", errors.New("transcript is not valid UTF-8"))
	}
	return nil
}
