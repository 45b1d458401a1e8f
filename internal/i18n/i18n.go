// Package i18n renders user-facing text in the languages the front-ends
// support.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"tryon-studio/internal/form"
)

var supported = []language.Tag{
	language.English,
	language.Indonesian,
}

var matcher = language.NewMatcher(supported)

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, texts := range entries {
		for i, text := range texts {
			if err := b.SetString(supported[i], key, text); err != nil {
				panic(fmt.Sprintf("i18n: %s/%s: %v", supported[i], key, err))
			}
		}
	}
	return b
}

// Match picks the best supported language for the given Accept-Language
// headers or bare language codes. English is the fallback.
func Match(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, pref := range prefs {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

func Text(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(key, args...)
}

func NoticeText(tag language.Tag, n form.Notice) string {
	switch n.Kind {
	case form.NoticeMissingInput:
		return Text(tag, "notice.missing."+string(n.Field))
	case form.NoticeTooLong:
		return Text(tag, "notice.too_long."+string(n.Field), form.MaxDescriptionLength)
	case form.NoticeSubmissionFailed:
		return Text(tag, "notice.submission_failed")
	default:
		return Text(tag, "notice.unexpected")
	}
}

func NoticeTexts(tag language.Tag, notices []form.Notice) []string {
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, NoticeText(tag, n))
	}
	return out
}
