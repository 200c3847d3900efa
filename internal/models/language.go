package models

import (
	"fmt"

	"golang.org/x/text/language"
)

// Language is a supported UI language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
)

var (
	supportedTags = []language.Tag{language.English, language.French}
	matcher       = language.NewMatcher(supportedTags)
)

// ParseLanguage maps any BCP 47 tag (e.g. "fr-CA") onto a supported language.
func ParseLanguage(v string) (Language, error) {
	tag, err := language.Parse(v)
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", v, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("unsupported language %q", v)
	}
	if supportedTags[idx] == language.French {
		return LanguageFrench, nil
	}
	return LanguageEnglish, nil
}

// Valid reports whether l is a supported language code.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageFrench
}

// Tag returns the x/text tag for localized formatting.
func (l Language) Tag() language.Tag {
	if l == LanguageFrench {
		return language.French
	}
	return language.English
}
