package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"tryon-studio/internal/tryon"
)

const MaxDescriptionLength = 200

// Input is the set of slots checked before anything is sent.
type Input struct {
	Garment     *tryon.Image `form:"garm_img" validate:"required"`
	Photo       *tryon.Image `form:"human_img" validate:"required"`
	Description string       `form:"garment_des" validate:"notblank,max=200"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate checks all slots and reports every failure at once. It returns
// nil or ValidationErrors ordered garment, photo, description.
func Validate(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: Field(fe.Field()),
			Err:   errForTag(fe.Tag()),
		})
	}
	return out
}

func errForTag(tag string) error {
	switch tag {
	case "max":
		return ErrTooLong
	default:
		return ErrMissingInput
	}
}
