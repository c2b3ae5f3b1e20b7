package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestTexts(t *testing.T) {
	en := New("en")
	assert.Equal(t, language.English, en.Language())
	assert.Equal(t, "value is required", en.Text(ValueRequired))

	de := New("de-DE")
	assert.Equal(t, language.German, de.Language())
	assert.Equal(t, "Wert ist erforderlich", de.Text(ValueRequired))

	var got string
	de.TextFor(NamesNotUnique, func(text string) { got = text })
	assert.Equal(t, "Namen sind nicht eindeutig", got)
}

func TestFallbacks(t *testing.T) {
	assert.Equal(t, language.English, New("not a language!").Language())
	assert.Equal(t, language.English, New("ja").Language())
	assert.Equal(t, "some.unknown.key", New("en").Text("some.unknown.key"))
}
