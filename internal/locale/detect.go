package locale

import "strings"

// languageMapping maps Telegram client language codes to language keys
var languageMapping = map[string]string{
	"en":      En,
	"ru":      Ru,
	"es":      Es,
	"ar":      Ar,
	"zh":      Zh,
	"zh-cn":   Zh,
	"zh-tw":   Zh,
	"zh-hans": Zh,
	"zh-hant": Zh,
}

// Detect maps a Telegram language_code hint to a supported language key.
// Unknown or empty hints fall back to the default language.
func Detect(languageCode string) string {
	if languageCode == "" {
		return DefaultLanguage
	}

	code := strings.ToLower(languageCode)
	if lang, ok := languageMapping[code]; ok {
		return lang
	}

	// Try the primary subtag for codes like "es-MX"
	if i := strings.IndexByte(code, '-'); i > 0 {
		if lang, ok := languageMapping[code[:i]]; ok {
			return lang
		}
	}

	return DefaultLanguage
}
