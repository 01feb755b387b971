package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localizedata embed.FS

// Supported language keys. They double as the file names of the embedded
// translation bundles.
const (
	En = "en"
	Ru = "ru"
	Es = "es"
	Ar = "ar"
	Zh = "zh"
)

// DefaultLanguage is used when detection fails and as the fallback bundle
const DefaultLanguage = En

// Supported returns all supported language keys
func Supported() []string {
	return []string{En, Ru, Es, Ar, Zh}
}

type localizer struct {
	locale string
	*i18n.Localizer
}

// Localizer resolves message keys for one language
type Localizer interface {
	Locale() string
	MustLocalize(id string) string
	MustLocalizeWithTemplate(id string, fields ...string) string
}

func (l *localizer) Locale() string {
	return l.locale
}

func (l *localizer) MustLocalize(id string) string {
	return l.Localizer.MustLocalize(&i18n.LocalizeConfig{
		MessageID: id,
	})
}

// MustLocalizeWithTemplate fills template parameters f1..fn in order.
func (l *localizer) MustLocalizeWithTemplate(id string, fields ...string) string {
	td := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		td["f"+strconv.Itoa(i+1)] = f
	}

	return l.Localizer.MustLocalize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: td,
	})
}

// Registry holds one Localizer per supported language. Built once at
// startup from the embedded bundles and shared by every handler.
type Registry struct {
	byLocale map[string]Localizer
}

// NewRegistry loads the embedded translation bundles
func NewRegistry() (*Registry, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, loc := range Supported() {
		data, err := localizedata.ReadFile(fmt.Sprintf("locales/%s.json", loc))
		if err != nil {
			return nil, fmt.Errorf("failed to load translation data: %s.json", loc)
		}
		bundle.MustParseMessageFileBytes(data, loc+".json")
	}

	byLocale := make(map[string]Localizer, len(Supported()))
	for _, loc := range Supported() {
		byLocale[loc] = &localizer{
			locale:    loc,
			Localizer: i18n.NewLocalizer(bundle, loc, DefaultLanguage),
		}
	}

	return &Registry{byLocale: byLocale}, nil
}

// For returns the Localizer for a language key, falling back to the
// default language for unknown keys.
func (r *Registry) For(loc string) Localizer {
	if l, ok := r.byLocale[loc]; ok {
		return l
	}
	return r.byLocale[DefaultLanguage]
}

// MatchButton reports whether text equals the message id's rendering in
// any supported language. Reply-keyboard presses arrive as plain text, so
// routing has to compare against every translation of the label.
func (r *Registry) MatchButton(id, text string) bool {
	for _, l := range r.byLocale {
		if l.MustLocalize(id) == text {
			return true
		}
	}
	return false
}
