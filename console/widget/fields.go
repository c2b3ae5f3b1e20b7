package widget

import (
	"html"
	"strconv"
	"strings"

	"github.com/G-Node/console/console/dom"
	"github.com/G-Node/console/console/i18n"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Selectors of the standard widget types.
const (
	TextFieldSelector   = ".widget.text-field-widget"
	NumberFieldSelector = ".widget.number-field-widget"
	CheckboxSelector    = ".widget.checkbox-widget"
	SelectSelector      = ".widget.select-widget"
	RichTextSelector    = ".widget.richtext-widget"
	FormSelector        = "form.widget-form"
)

// TextField is a text input or textarea.
type TextField struct {
	*Base
}

// NewTextField binds a text field to el.
func NewTextField(p *Page, el *goquery.Selection, opts Options) Widget {
	w := &TextField{}
	w.Base = NewBase(w, p, el, opts)
	return w
}

// Value returns the text, or nil when there is no input.
func (w *TextField) Value() interface{} {
	if w.Input().Length() == 0 {
		return nil
	}
	return dom.Value(w.Input())
}

// SetValue replaces the text.
func (w *TextField) SetValue(value interface{}, triggerChange bool) {
	w.Guard().Run(func() {
		dom.SetValue(w.Input(), textOf(value))
	})
	if triggerChange {
		w.Changed()
	}
}

// NumberField is a text field holding a number.
type NumberField struct {
	*TextField
}

// NewNumberField binds a number field to el.
func NewNumberField(p *Page, el *goquery.Selection, opts Options) Widget {
	w := &NumberField{TextField: &TextField{}}
	w.Base = NewBase(w, p, el, opts)
	return w
}

// Value returns the number as float64, nil for an empty field and the raw
// text when it is not a number.
func (w *NumberField) Value() interface{} {
	text := strings.TrimSpace(textOf(w.TextField.Value()))
	if text == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// SetValue writes numbers without trailing zeros.
func (w *NumberField) SetValue(value interface{}, triggerChange bool) {
	if f, ok := value.(float64); ok {
		value = strconv.FormatFloat(f, 'f', -1, 64)
	}
	w.TextField.SetValue(value, triggerChange)
}

// ExtValidate accepts empty values and numbers.
func (w *NumberField) ExtValidate(value interface{}) bool {
	switch value.(type) {
	case nil, float64:
		return true
	}
	w.Raise(nil, i18n.NotANumber, textOf(value))
	return false
}

// Checkbox holds a boolean.
type Checkbox struct {
	*Base
}

// NewCheckbox binds a checkbox to el.
func NewCheckbox(p *Page, el *goquery.Selection, opts Options) Widget {
	w := &Checkbox{}
	w.Base = NewBase(w, p, el, opts)
	return w
}

// Value returns the checked state.
func (w *Checkbox) Value() interface{} {
	if w.Input().Length() == 0 {
		return nil
	}
	return dom.Checked(w.Input())
}

// SetValue checks the box for true values and the strings "true" and "on".
func (w *Checkbox) SetValue(value interface{}, triggerChange bool) {
	checked := false
	switch v := value.(type) {
	case bool:
		checked = v
	case string:
		checked = v == "true" || v == "on" || (v != "" && v == w.Input().AttrOr("value", "on"))
	default:
		checked = Truthy(value)
	}
	w.Guard().Run(func() {
		dom.SetChecked(w.Input(), checked)
	})
	if triggerChange {
		w.Changed()
	}
}

// SelectField is a single choice select.
type SelectField struct {
	*TextField
}

// NewSelectField binds a select to el.
func NewSelectField(p *Page, el *goquery.Selection, opts Options) Widget {
	w := &SelectField{TextField: &TextField{}}
	w.Base = NewBase(w, p, el, opts)
	return w
}

// Options returns the option values in order.
func (w *SelectField) Options() []string {
	var values []string
	w.Input().Find("option").Each(func(_ int, opt *goquery.Selection) {
		values = append(values, opt.AttrOr("value", opt.Text()))
	})
	return values
}

var textPolicy = bluemonday.StrictPolicy()

// RichText is a textarea holding markup.  A rendered preview of the content
// may follow the textarea inside the element.
type RichText struct {
	*TextField
}

// NewRichText binds a rich text editor to el.
func NewRichText(p *Page, el *goquery.Selection, opts Options) Widget {
	w := &RichText{TextField: &TextField{}}
	w.Base = NewBase(w, p, el, opts)
	return w
}

// ValueForValidation returns the text without markup.
func (w *RichText) ValueForValidation() interface{} {
	value := w.Value()
	if value == nil {
		return nil
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(textOf(value))))
}

// SetValue replaces the markup and refreshes the preview.
func (w *RichText) SetValue(value interface{}, triggerChange bool) {
	w.TextField.SetValue(value, false)
	if preview := w.Element().Find(".richtext-preview"); preview.Length() > 0 {
		preview.SetHtml(richTextPolicy.Sanitize(textOf(value)))
	}
	if triggerChange {
		w.Changed()
	}
}

var richTextPolicy = bluemonday.UGCPolicy()

// dropPreview removes rendered previews from a cloned element.
func dropPreview(el *goquery.Selection) {
	el.Find(".richtext-preview").Empty()
}
