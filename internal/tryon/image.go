package tryon

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnsupportedMedia is returned when a staged file is not an image.
var ErrUnsupportedMedia = errors.New("tryon: file is not an image")

// Image is an opaque handle to one staged image. The bytes are shared, not
// copied, between the holder and the request that eventually carries them.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// NewImage checks that data looks like an image and resolves its MIME type.
// declaredType is the type reported by the uploader and is trusted only when
// it names an image type.
func NewImage(name string, data []byte, declaredType string) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty file", ErrUnsupportedMedia)
	}

	mimeType := stripParams(declaredType)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = stripParams(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}

	return Image{
		Name:     strings.TrimSpace(name),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

func (i Image) Size() int {
	return len(i.Data)
}

func stripParams(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	return strings.ToLower(mimeType)
}
