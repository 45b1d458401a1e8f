package form

import (
	"errors"
	"strings"
	"testing"

	"tryon-studio/internal/tryon"
)

func stagedImage(name string) *tryon.Image {
	return &tryon.Image{Name: name, MIMEType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n" + name)}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want []FieldError
	}{
		{
			name: "everything missing",
			in:   Input{},
			want: []FieldError{
				{Field: FieldGarment, Err: ErrMissingInput},
				{Field: FieldPhoto, Err: ErrMissingInput},
				{Field: FieldDescription, Err: ErrMissingInput},
			},
		},
		{
			name: "blank description",
			in:   Input{Garment: stagedImage("g"), Photo: stagedImage("p"), Description: " \t\n "},
			want: []FieldError{{Field: FieldDescription, Err: ErrMissingInput}},
		},
		{
			name: "missing photo only",
			in:   Input{Garment: stagedImage("g"), Description: "linen shirt"},
			want: []FieldError{{Field: FieldPhoto, Err: ErrMissingInput}},
		},
		{
			name: "description at limit",
			in:   Input{Garment: stagedImage("g"), Photo: stagedImage("p"), Description: strings.Repeat("a", 200)},
		},
		{
			name: "description over limit",
			in:   Input{Garment: stagedImage("g"), Photo: stagedImage("p"), Description: strings.Repeat("a", 201)},
			want: []FieldError{{Field: FieldDescription, Err: ErrTooLong}},
		},
		{
			name: "limit counts characters not bytes",
			in:   Input{Garment: stagedImage("g"), Photo: stagedImage("p"), Description: strings.Repeat("é", 200)},
		},
		{
			name: "missing garment and too long",
			in:   Input{Photo: stagedImage("p"), Description: strings.Repeat("b", 250)},
			want: []FieldError{
				{Field: FieldGarment, Err: ErrMissingInput},
				{Field: FieldDescription, Err: ErrTooLong},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if len(tc.want) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidationErrors", err)
			}
			if len(verrs) != len(tc.want) {
				t.Fatalf("got %d errors (%v), want %d", len(verrs), verrs, len(tc.want))
			}
			for i, want := range tc.want {
				if verrs[i].Field != want.Field || !errors.Is(verrs[i].Err, want.Err) {
					t.Fatalf("error[%d] = %v, want %s: %v", i, verrs[i], want.Field, want.Err)
				}
			}
		})
	}
}

func TestValidationErrorsMatchSentinels(t *testing.T) {
	err := Validate(Input{Garment: stagedImage("g"), Photo: stagedImage("p"), Description: strings.Repeat("x", 201)})
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("errors.Is(%v, ErrTooLong) = false", err)
	}
	if errors.Is(err, ErrMissingInput) {
		t.Fatalf("errors.Is(%v, ErrMissingInput) = true", err)
	}
}
