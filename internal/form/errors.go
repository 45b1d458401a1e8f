package form

import (
	"errors"
	"strings"
)

var (
	ErrMissingInput   = errors.New("missing input")
	ErrTooLong        = errors.New("too long")
	ErrSubmitDisabled = errors.New("submit is disabled while a submission is in flight")
)

// Field names match the multipart fields of the try-on request.
type Field string

const (
	FieldGarment     Field = "garm_img"
	FieldPhoto       Field = "human_img"
	FieldDescription Field = "garment_des"
)

type FieldError struct {
	Field Field
	Err   error
}

func (e FieldError) Error() string {
	return string(e.Field) + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors lists every failing field of one validation pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v))
	for _, fe := range v {
		out = append(out, fe)
	}
	return out
}
