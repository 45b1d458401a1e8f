package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"tryon-studio/internal/form"
	"tryon-studio/internal/i18n"
)

const placeholderPath = "/assets/placeholder.svg"

var pageTemplate = template.Must(template.ParseFS(assetsFS, "assets/index.html.tmpl"))

type viewResponse struct {
	form.View
	ResultSrc string   `json:"result_src"`
	Messages  []string `json:"messages"`
	Error     string   `json:"error,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

type pageData struct {
	Lang      string
	View      form.View
	ResultSrc template.URL
	Messages  []string
	Text      map[string]string
	MaxChars  int
}

var pageKeys = []string{
	"page.title",
	"page.garment.drop",
	"page.photo.drop",
	"page.description",
	"page.submit",
	"page.submitting",
	"page.result",
}

func (s *Server) newPage(tag language.Tag, view form.View) pageData {
	text := make(map[string]string, len(pageKeys))
	for _, key := range pageKeys {
		text[strings.ReplaceAll(strings.TrimPrefix(key, "page."), ".", "_")] = i18n.Text(tag, key)
	}
	return pageData{
		Lang:      tag.String(),
		View:      view,
		ResultSrc: template.URL(s.resultSrc(view.Result)),
		Messages:  i18n.NoticeTexts(tag, view.Notices),
		Text:      text,
		MaxChars:  form.MaxDescriptionLength,
	}
}

func (s *Server) newViewResponse(tag language.Tag, view form.View, errText string) viewResponse {
	return viewResponse{
		View:      view,
		ResultSrc: s.resultSrc(view.Result),
		Messages:  i18n.NoticeTexts(tag, view.Notices),
		Error:     errText,
	}
}

// resultSrc turns a result locator into something an <img> can load. Unknown
// schemes fall back to the placeholder.
func (s *Server) resultSrc(locator string) string {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return placeholderPath
	}
	if strings.HasPrefix(locator, "data:image/") {
		return locator
	}

	u, err := url.Parse(locator)
	if err != nil {
		return placeholderPath
	}
	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		return locator
	case u.Scheme == "" && u.Host == "":
		if s.resultBaseURL == "" {
			return locator
		}
		if !strings.HasPrefix(locator, "/") {
			locator = "/" + locator
		}
		return s.resultBaseURL + locator
	default:
		return placeholderPath
	}
}

func requestLanguage(r *http.Request) language.Tag {
	return i18n.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
