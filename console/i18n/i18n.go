// Package i18n resolves the user facing texts of the console.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys used by the widget framework.
const (
	PatternMismatch = "validation.pattern"
	ValueRequired   = "validation.required"
	NamesNotUnique  = "validation.unique"
	NotANumber      = "validation.number"
)

var bundles = map[language.Tag]map[string]string{
	language.English: {
		PatternMismatch: "value doesn't match the pattern",
		ValueRequired:   "value is required",
		NamesNotUnique:  "names are not unique",
		NotANumber:      "value must be a number",
	},
	language.German: {
		PatternMismatch: "Wert entspricht nicht dem Muster",
		ValueRequired:   "Wert ist erforderlich",
		NamesNotUnique:  "Namen sind nicht eindeutig",
		NotANumber:      "Wert muss eine Zahl sein",
	},
}

// Texts resolves message keys for one language.  Keys without a
// translation resolve to themselves.
type Texts struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns the texts for the given language (BCP 47).  Unknown or
// malformed languages fall back to English.
func New(lang string) *Texts {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range bundles {
		for key, msg := range msgs {
			// keys and messages are static; SetString only fails on bad input
			_ = builder.SetString(tag, key, msg)
		}
	}

	tag := language.English
	if requested, err := language.Parse(lang); err == nil {
		supported := builder.Languages()
		_, idx, confidence := language.NewMatcher(supported).Match(requested)
		if confidence != language.No {
			tag = supported[idx]
		}
	}
	return &Texts{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}
}

// Language returns the resolved language.
func (t *Texts) Language() language.Tag {
	return t.tag
}

// Text returns the text for key.
func (t *Texts) Text(key string) string {
	return t.printer.Sprintf(key)
}

// TextFor resolves key and hands the text to fn.
func (t *Texts) TextFor(key string, fn func(text string)) {
	fn(t.Text(key))
}
