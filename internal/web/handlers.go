package web

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tryon-studio/internal/form"
	"tryon-studio/internal/i18n"
	"tryon-studio/internal/tryon"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(w, r)
	page := s.newPage(requestLanguage(r), ctrl.View())

	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, page); err != nil {
		s.logger.Error("render page failed", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(w, r)
	writeJSON(w, http.StatusOK, s.newViewResponse(requestLanguage(r), ctrl.View(), ""))
}

func (s *Server) handleSelect(field form.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := s.controller(w, r)
		tag := requestLanguage(r)

		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "file too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "missing file"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read file"})
			return
		}

		img, err := tryon.NewImage(header.Filename, data, header.Header.Get("Content-Type"))
		if err != nil {
			writeJSON(w, http.StatusUnsupportedMediaType,
				s.newViewResponse(tag, ctrl.View(), i18n.Text(tag, "notice.not_image")))
			return
		}

		var view form.View
		if field == form.FieldGarment {
			view = ctrl.SelectGarment(img)
		} else {
			view = ctrl.SelectPhoto(img)
		}
		writeJSON(w, http.StatusOK, s.newViewResponse(tag, view, ""))
	}
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid form"})
		return
	}

	view := ctrl.SetDescription(r.PostFormValue(string(form.FieldDescription)))
	writeJSON(w, http.StatusOK, s.newViewResponse(requestLanguage(r), view, ""))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(w, r)
	tag := requestLanguage(r)

	view, err := ctrl.Submit(r.Context())

	var verrs form.ValidationErrors
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.newViewResponse(tag, view, ""))
	case errors.Is(err, form.ErrSubmitDisabled):
		writeJSON(w, http.StatusConflict, s.newViewResponse(tag, view, i18n.Text(tag, "notice.submit_disabled")))
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, s.newViewResponse(tag, view, ""))
	default:
		s.logger.Warn("submit failed", "err", err)
		writeJSON(w, http.StatusBadGateway, s.newViewResponse(tag, view, ""))
	}
}

// handlePreview serves the staged bytes of one slot. Previews are never
// cached or stored anywhere else.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var (
		img    tryon.Image
		staged bool
	)
	switch strings.ToLower(chi.URLParam(r, "slot")) {
	case "garment":
		img, staged = ctrl.Garment()
	case "photo":
		img, staged = ctrl.Photo()
	}
	if !staged {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("content-type", img.MIMEType)
	w.Header().Set("cache-control", "no-store")
	w.Header().Set("x-content-type-options", "nosniff")
	_, _ = w.Write(img.Data)
}
