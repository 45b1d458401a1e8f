package handlers

import (
	"strings"
	"unicode"

	"tryon-studio/internal/form"
)

var (
	garmentWords = []string{
		"garment", "suit", "shirt", "dress", "jacket", "blazer", "coat", "outfit", "clothes",
		"pakaian", "baju", "kemeja", "setelan", "jas", "gaun", "jaket",
	}
	personWords = []string{
		"me", "myself", "selfie", "person", "model", "body",
		"saya", "aku", "diri",
	}
)

// photoTarget guesses from a photo caption which slot the photo is meant
// for. Captions that name both or neither are not a hint.
func photoTarget(caption string) (form.Field, bool) {
	words := strings.FieldsFunc(strings.ToLower(caption), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var garment, person bool
	for _, w := range words {
		if containsWord(garmentWords, w) {
			garment = true
		}
		if containsWord(personWords, w) {
			person = true
		}
	}

	switch {
	case garment && !person:
		return form.FieldGarment, true
	case person && !garment:
		return form.FieldPhoto, true
	default:
		return "", false
	}
}

// nextSlot picks the slot for an incoming photo: an explicit request wins,
// then a caption hint, then the first empty slot.
func nextSlot(requested form.Field, caption string, view form.View) (form.Field, bool) {
	if requested != "" {
		return requested, true
	}
	if field, ok := photoTarget(caption); ok {
		return field, true
	}
	switch {
	case !view.HasGarment:
		return form.FieldGarment, true
	case !view.HasPhoto:
		return form.FieldPhoto, true
	default:
		return "", false
	}
}

func containsWord(list []string, w string) bool {
	for _, candidate := range list {
		if candidate == w {
			return true
		}
	}
	return false
}
