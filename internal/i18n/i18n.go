// Package i18n holds the closed set of interface locales and the small
// string tables the analyzer needs: UI labels, the per-locale figure label,
// English language names for the vision prompt hint, and the localized
// multilingual hint template. Unknown locale codes fall back to English.
package i18n

import (
	"fmt"
	"strings"
)

// Auto is the document-language value meaning "let the model detect it".
const Auto = "auto"

// DefaultLocale is used whenever an unknown locale code is supplied.
const DefaultLocale = "en"

// Locales is the closed set of supported interface locale codes.
var Locales = []string{"en", "de", "fr", "es", "it", "nl", "pt", "ru", "zh", "ja"}

// figureLabels maps a locale to the word used in generated figure captions.
var figureLabels = map[string]string{
	"en": "Figure",
	"de": "Abbildung",
	"fr": "Figure",
	"es": "Figura",
	"it": "Figura",
	"nl": "Figuur",
	"pt": "Figura",
	"ru": "Рисунок",
	"zh": "图",
	"ja": "図",
}

// languageNames maps document-language codes to their English names. The
// vision prompt names the document language in English regardless of the
// interface locale.
var languageNames = map[string]string{
	"de": "German",
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"nl": "Dutch",
	"pt": "Portuguese",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
}

// multilingualHints maps a locale to the advisory sentence appended to the
// vision prompt when a document language is selected. %s receives the
// language name.
var multilingualHints = map[string]string{
	"en": "This document is primarily in %s, but may contain content in other languages as well.",
	"de": "Dieses Dokument ist hauptsächlich in %s verfasst, kann aber auch Inhalte in anderen Sprachen enthalten.",
	"fr": "Ce document est principalement en %s, mais peut également contenir du contenu dans d'autres langues.",
	"es": "Este documento está principalmente en %s, pero también puede contener contenido en otros idiomas.",
	"it": "Questo documento è principalmente in %s, ma può contenere anche contenuti in altre lingue.",
	"nl": "Dit document is voornamelijk in %s, maar kan ook inhoud in andere talen bevatten.",
	"pt": "Este documento é principalmente em %s, mas também pode conter conteúdo em outros idiomas.",
	"ru": "Этот документ в основном на %s, но также может содержать контент на других языках.",
	"zh": "此文档主要使用 %s，但也可能包含其他语言的内容。",
	"ja": "このドキュメントは主に%sで書かれていますが、他の言語のコンテンツも含まれている可能性があります。",
}

// nativeNames maps locale codes to their self-names, used by selectors.
var nativeNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
	"fr": "Français",
	"es": "Español",
	"it": "Italiano",
	"nl": "Nederlands",
	"pt": "Português",
	"ru": "Русский",
	"zh": "中文",
	"ja": "日本語",
}

// Normalize lowercases a locale code and falls back to the default locale
// when the code is not in the supported set.
func Normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if _, ok := figureLabels[locale]; ok {
		return locale
	}
	return DefaultLocale
}

// Supported reports whether the locale code is in the closed set.
func Supported(locale string) bool {
	_, ok := figureLabels[strings.ToLower(strings.TrimSpace(locale))]
	return ok
}

// FigureLabel returns the caption word for figures in the given locale.
func FigureLabel(locale string) string {
	return figureLabels[Normalize(locale)]
}

// LanguageName returns the English name of a document-language code. Unknown
// codes are returned unchanged so the prompt still carries something usable.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// NativeName returns a locale's self-name for display in selectors.
func NativeName(locale string) string {
	return nativeNames[Normalize(locale)]
}

// MultilingualHint renders the advisory prompt sentence for a selected
// document language in the given interface locale. It returns the empty
// string for the auto-detect value, where no hint is sent.
func MultilingualHint(locale, docLang string) string {
	if docLang == "" || docLang == Auto {
		return ""
	}
	return fmt.Sprintf(multilingualHints[Normalize(locale)], LanguageName(docLang))
}
