package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message identifiers used by the built-in validators. Locale files override
// them by id.
const (
	MsgFieldIsRequired   = "fieldIsRequired"
	MsgInvalidNumber     = "invalidNumber"
	MsgNumberTooSmall    = "numberTooSmall"
	MsgNumberTooBig      = "numberTooBig"
	MsgInvalidInteger    = "invalidInteger"
	MsgInvalidDouble     = "invalidDouble"
	MsgThisNotString     = "thisNotString"
	MsgTextTooSmall      = "textTooSmall"
	MsgTextTooBig        = "textTooBig"
	MsgThisNotArray      = "thisNotArray"
	MsgSelectMinItems    = "selectMinItems"
	MsgSelectMaxItems    = "selectMaxItems"
	MsgInvalidFormat     = "invalidFormat"
	MsgInvalidEmail      = "invalidEmail"
	MsgInvalidURL        = "invalidURL"
	MsgInvalidAlpha      = "invalidTextContainNumber"
	MsgInvalidAlphaNumer = "invalidTextContainSpec"
)

var defaultMessages = `
[fieldIsRequired]
other = "This field is required!"

[invalidNumber]
other = "Invalid number"

[numberTooSmall]
other = "The number is too small! Minimum: {{.Min}}"

[numberTooBig]
other = "The number is too big! Maximum: {{.Max}}"

[invalidInteger]
other = "The value is not an integer"

[invalidDouble]
other = "Invalid double"

[thisNotString]
other = "This is not a text!"

[textTooSmall]
other = "The length of text is too small! Current: {{.Length}}, Minimum: {{.Min}}"

[textTooBig]
other = "The length of text is too big! Current: {{.Length}}, Maximum: {{.Max}}"

[thisNotArray]
other = "This is not an array!"

[selectMinItems]
one = "Select minimum {{.Min}} item!"
other = "Select minimum {{.Min}} items!"

[selectMaxItems]
one = "Select maximum {{.Max}} item!"
other = "Select maximum {{.Max}} items!"

[invalidFormat]
other = "Invalid format!"

[invalidEmail]
other = "Invalid e-mail address!"

[invalidURL]
other = "Invalid URL!"

[invalidTextContainNumber]
other = "Invalid! Cannot contains numbers or special characters"

[invalidTextContainSpec]
other = "Invalid! Cannot contains special characters"
`

// Messages renders validator messages from a go-i18n bundle. English defaults
// are always loaded; locale files (TOML, YAML or JSON) add translations.
type Messages struct {
	bundle *i18n.Bundle

	mu        sync.RWMutex
	locale    string
	localizer *i18n.Localizer
}

// NewMessages builds a catalogue for locale and loads the given message files.
func NewMessages(locale string, files ...string) (*Messages, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if _, err := bundle.ParseMessageFileBytes([]byte(defaultMessages), "default.en.toml"); err != nil {
		return nil, fmt.Errorf("validation: parse default messages: %w", err)
	}

	for _, file := range files {
		if _, err := bundle.LoadMessageFile(file); err != nil {
			return nil, fmt.Errorf("validation: load message file %s: %w", file, err)
		}
	}

	m := &Messages{bundle: bundle}
	if err := m.SetLocale(locale); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultMessages returns the English catalogue.
func DefaultMessages() *Messages {
	m, err := NewMessages("en")
	if err != nil {
		panic(err)
	}
	return m
}

// SetLocale switches the active locale. Unknown tags are rejected; tags the
// bundle has no messages for fall back to English.
func (m *Messages) SetLocale(locale string) error {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = language.English.String()
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("validation: invalid locale %q: %w", locale, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.locale = locale
	m.localizer = i18n.NewLocalizer(m.bundle, locale)
	return nil
}

// Locale returns the active locale.
func (m *Messages) Locale() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locale
}

// Text renders message id with data. Messages the active locale does not
// translate fall back to English; missing ids render as the id itself.
func (m *Messages) Text(id string, data map[string]any) string {
	if m == nil {
		return id
	}
	m.mu.RLock()
	localizer := m.localizer
	m.mu.RUnlock()

	config := &i18n.LocalizeConfig{MessageID: id, TemplateData: data}
	if count, ok := data["Count"].(int); ok {
		config.PluralCount = count
	}
	text, err := localizer.Localize(config)
	var notFound *i18n.MessageNotFoundErr
	if err != nil && !errors.As(err, &notFound) {
		return id
	}
	if strings.TrimSpace(text) == "" {
		return id
	}
	return text
}
