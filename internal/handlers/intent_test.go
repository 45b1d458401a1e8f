package handlers

import (
	"testing"

	"tryon-studio/internal/form"
)

func TestPhotoTarget(t *testing.T) {
	tests := []struct {
		caption string
		want    form.Field
		ok      bool
	}{
		{"navy suit", form.FieldGarment, true},
		{"Kemeja batik", form.FieldGarment, true},
		{"this is me", form.FieldPhoto, true},
		{"foto saya", form.FieldPhoto, true},
		{"me in a suit", "", false},
		{"", "", false},
		{"summer", "", false},
	}
	for _, tc := range tests {
		got, ok := photoTarget(tc.caption)
		if got != tc.want || ok != tc.ok {
			t.Errorf("photoTarget(%q) = %q, %v; want %q, %v", tc.caption, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNextSlot(t *testing.T) {
	empty := form.View{}
	garmentOnly := form.View{HasGarment: true}
	full := form.View{HasGarment: true, HasPhoto: true}

	tests := []struct {
		name      string
		requested form.Field
		caption   string
		view      form.View
		want      form.Field
		ok        bool
	}{
		{"first empty slot", "", "", empty, form.FieldGarment, true},
		{"second empty slot", "", "", garmentOnly, form.FieldPhoto, true},
		{"both full", "", "", full, "", false},
		{"explicit request", form.FieldGarment, "", full, form.FieldGarment, true},
		{"caption hint", "", "selfie", empty, form.FieldPhoto, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := nextSlot(tc.requested, tc.caption, tc.view)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("nextSlot = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}
