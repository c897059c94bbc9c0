package i18n

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"golang.org/x/text/language"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
)

//go:embed translations.json
var builtin []byte

// Translations maps a language code to its key → text table.
type Translations map[string]map[string]string

// Catalog is a read-only set of translations shared by all sessions.
type Catalog struct {
	translations    Translations
	defaultLanguage string
	languages       []string
	matcher         language.Matcher
}

// Load reads the catalog from path, or the embedded one when path is empty.
// A catalog that cannot be read or parsed is replaced by the built-in
// Portuguese fallback. Missing keys are only logged.
func Load(logger *slog.Logger, path, defaultLanguage string) *Catalog {
	log := logger.With("component", "i18n")

	translations, err := read(path)
	if err != nil {
		log.Warn("failed to load translations, using fallback", "path", path, "error", err)
		translations = fallbackCatalog()
	}

	if err = Validate(translations); err != nil {
		log.Warn("incomplete translations", "error", err)
	}

	return New(translations, defaultLanguage)
}

func New(translations Translations, defaultLanguage string) *Catalog {
	languages := slices.Sorted(maps.Keys(translations))

	if _, ok := translations[defaultLanguage]; !ok {
		defaultLanguage = FallbackLanguage
		if _, ok = translations[defaultLanguage]; !ok && len(languages) > 0 {
			defaultLanguage = languages[0]
		}
	}

	// the default goes first so it wins when nothing matches
	tags := []language.Tag{language.Make(defaultLanguage)}
	for _, code := range languages {
		if code != defaultLanguage {
			tags = append(tags, language.Make(code))
		}
	}

	return &Catalog{
		translations:    translations,
		defaultLanguage: defaultLanguage,
		languages:       languages,
		matcher:         language.NewMatcher(tags),
	}
}

func read(path string) (Translations, error) {
	data := builtin

	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("%w: %w", apperror.ErrTranslationsMissing, err)
		}
	}

	return Parse(data)
}

func Parse(data []byte) (Translations, error) {
	var translations Translations
	if err := json.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to decode translations: %w", err)
	}

	if len(translations) == 0 {
		return nil, apperror.ErrTranslationsMissing
	}

	return translations, nil
}

// Validate reports every required key absent from any language.
func Validate(translations Translations) error {
	var errs []error

	for _, code := range slices.Sorted(maps.Keys(translations)) {
		for _, key := range RequiredKeys {
			if translations[code][key] == "" {
				errs = append(errs, fmt.Errorf("%w: %s.%s", apperror.ErrMissingTranslation, code, key))
			}
		}
	}

	return errors.Join(errs...)
}

func (that *Catalog) DefaultLanguage() string {
	return that.defaultLanguage
}

func (that *Catalog) Languages() []string {
	return slices.Clone(that.languages)
}

func (that *Catalog) Has(lang string) bool {
	_, ok := that.translations[lang]
	return ok
}

// Text looks a key up in lang, then in the built-in set and the label
// defaults. The key itself is returned only when nothing knows it.
func (that *Catalog) Text(lang, key string) string {
	if text := that.translations[lang][key]; text != "" {
		return text
	}

	if text := builtinTexts[key]; text != "" {
		return text
	}

	if text, ok := labelDefaults[key]; ok {
		return text
	}

	return key
}

// Language returns every known key of lang with fallbacks applied.
func (that *Catalog) Language(lang string) (map[string]string, error) {
	if !that.Has(lang) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownLanguage, lang)
	}

	texts := make(map[string]string, len(RequiredKeys)+1)
	for key := range labelDefaults {
		texts[key] = that.Text(lang, key)
	}

	for _, key := range RequiredKeys {
		texts[key] = that.Text(lang, key)
	}

	for key := range that.translations[lang] {
		texts[key] = that.Text(lang, key)
	}

	return texts, nil
}

func (that *Catalog) All() Translations {
	all := make(Translations, len(that.translations))
	for code, texts := range that.translations {
		all[code] = maps.Clone(texts)
	}

	return all
}

// Negotiate picks a catalog language: an explicit code wins, then the
// Accept-Language header, then the default.
func (that *Catalog) Negotiate(explicit, acceptLanguage string) string {
	if explicit != "" && that.Has(explicit) {
		return explicit
	}

	if acceptLanguage == "" {
		return that.defaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return that.defaultLanguage
	}

	tag, _, confidence := that.matcher.Match(tags...)
	if confidence == language.No {
		return that.defaultLanguage
	}

	base, _ := tag.Base()
	if code := base.String(); that.Has(code) {
		return code
	}

	return that.defaultLanguage
}

// HTMLTag is the value for the document lang attribute.
func HTMLTag(lang string) string {
	if tag, ok := htmlTags[lang]; ok {
		return tag
	}

	return lang
}
