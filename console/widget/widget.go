// Package widget binds controllers to the elements of server rendered forms.
//
// A Registry maps selectors to widget types.  For every parsed document a
// Page binds widgets to the matching elements and keeps the mapping from
// element to widget.  Widgets share the value and validation contract of
// Base: Value and SetValue, rule based validation with a memoized result,
// field naming through DeclareName and a normalized changed event.
package widget

import (
	"fmt"
	"strings"

	"github.com/G-Node/console/console/dom"
	"github.com/G-Node/console/console/i18n"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Alert is a validation message reported to the caller of Validate.
type Alert struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// AlertFunc receives validation alerts.
type AlertFunc func(a Alert)

// Alerts collects alerts; Add can be passed as AlertFunc.
type Alerts []Alert

// Add appends a.
func (as *Alerts) Add(a Alert) {
	*as = append(*as, a)
}

// Widget is the contract shared by all bound widgets.
type Widget interface {
	Element() *goquery.Selection
	Name() string
	DeclareName(name string)
	Value() interface{}
	SetValue(value interface{}, triggerChange bool)
	IsValid(alert AlertFunc) bool
	Validate(alert AlertFunc) bool
	ValidationReset()
}

// Resettable widgets clear their value on Reset.
type Resettable interface {
	Reset()
}

// Validatable is anything that validates itself.
type Validatable interface {
	Validate(alert AlertFunc) bool
}

// ExtValidator adds a type specific check after the rule checks.
type ExtValidator interface {
	ExtValidate(value interface{}) bool
}

// ValidationValuer supplies the value the rules are checked against when it
// differs from Value.
type ValidationValuer interface {
	ValueForValidation() interface{}
}

// FieldNamer reports the logical field name of a widget explicitly.
type FieldNamer interface {
	FieldName() string
}

// Preparer widgets rewrite the names of their fields below basePath before
// the form is serialized.
type Preparer interface {
	Prepare(basePath string)
}

// ChangeFunc receives the changed event.
type ChangeFunc func(w Widget, value interface{})

// Base implements the common widget behaviour.  Concrete widgets embed it
// and pass themselves as self so that Value, Name and the extension hooks
// resolve to the concrete implementation.
type Base struct {
	self      Widget
	page      *Page
	el        *goquery.Selection
	input     *goquery.Selection
	rules     Rules
	valid     *bool
	pending   *Alert
	listeners []ChangeFunc
	guard     Guard
	log       *zap.Logger
}

// NewBase prepares the common state of a widget bound to el.
func NewBase(self Widget, p *Page, el *goquery.Selection, opts Options) *Base {
	b := &Base{
		self:  self,
		page:  p,
		el:    el,
		input: dom.Input(el),
		log:   p.Registry().Logger(),
	}
	b.rules = InitRules(el, opts, b.log)
	if b.rules.Disabled {
		b.SetDisabled(true)
	}
	return b
}

// Element returns the bound element.
func (b *Base) Element() *goquery.Selection {
	return b.el
}

// Input returns the owned input element; the selection is empty when the
// widget has no editable value.
func (b *Base) Input() *goquery.Selection {
	return b.input
}

// Page returns the page the widget is bound on.
func (b *Base) Page() *Page {
	return b.page
}

// Rules returns the validation rules.
func (b *Base) Rules() Rules {
	return b.rules
}

// Guard returns the re-entrancy guard of the widget.
func (b *Base) Guard() *Guard {
	return &b.guard
}

// Log returns the widget logger.
func (b *Base) Log() *zap.Logger {
	return b.log
}

// Label returns the display label used in alerts.
func (b *Base) Label() string {
	if label, ok := b.el.Attr("data-label"); ok {
		return label
	}
	return b.self.Name()
}

// Name returns the name of the input.
func (b *Base) Name() string {
	return b.input.AttrOr("name", "")
}

// DeclareName sets the input name; the empty name removes it.
func (b *Base) DeclareName(name string) {
	if b.input.Length() == 0 {
		return
	}
	if name == "" {
		b.input.RemoveAttr("name")
	} else {
		b.input.SetAttr("name", name)
	}
}

// Value is undefined for the base widget.
func (b *Base) Value() interface{} {
	return nil
}

// SetValue does nothing for the base widget.
func (b *Base) SetValue(value interface{}, triggerChange bool) {}

// Reset clears the value and the validation state.
func (b *Base) Reset() {
	b.self.SetValue(nil, false)
	b.ValidationReset()
	b.markError(false)
}

// Hidden reports whether the element is flagged hidden.
func (b *Base) Hidden() bool {
	return dom.IsHidden(b.el)
}

// Disabled reports whether the input is disabled.
func (b *Base) Disabled() bool {
	_, ok := b.input.Attr("disabled")
	return ok
}

// SetDisabled enables or disables the input.
func (b *Base) SetDisabled(disabled bool) {
	if disabled {
		b.input.SetAttr("disabled", "disabled")
		b.el.AddClass("disabled")
	} else {
		b.input.RemoveAttr("disabled")
		b.el.RemoveClass("disabled")
	}
}

// Focus moves the autofocus marker of the page to the input.
func (b *Base) Focus() {
	if b.input.Length() == 0 {
		return
	}
	b.page.Document().Find("[autofocus]").RemoveAttr("autofocus")
	b.input.SetAttr("autofocus", "autofocus")
}

// Form returns the enclosing form widget, if any.
func (b *Base) Form() *FormWidget {
	var form *FormWidget
	b.el.Parents().EachWithBreak(func(_ int, parent *goquery.Selection) bool {
		if f, ok := b.page.WidgetOf(parent).(*FormWidget); ok {
			form = f
			return false
		}
		return true
	})
	return form
}

// OnChanged registers a listener for the changed event.
func (b *Base) OnChanged(fn ChangeFunc) {
	b.listeners = append(b.listeners, fn)
}

// Changed raises the changed event with the current value.
func (b *Base) Changed() {
	value := b.self.Value()
	for _, fn := range b.listeners {
		fn(b.self, value)
	}
}

// InputChanged handles a change of the input made by the user.  It is
// ignored while the widget itself is assigning a value.
func (b *Base) InputChanged() {
	if b.guard.Busy() {
		return
	}
	b.Changed()
}

// Valid returns the memoized validation result; validated is false when the
// widget has not been validated since the last reset.
func (b *Base) Valid() (valid, validated bool) {
	if b.valid == nil {
		return false, false
	}
	return *b.valid, true
}

// ValidationReset forgets the last validation result.
func (b *Base) ValidationReset() {
	b.valid = nil
	b.pending = nil
}

// IsValid validates the widget unless it has been validated already and
// hands a deferred alert to alert.
func (b *Base) IsValid(alert AlertFunc) bool {
	if b.valid == nil {
		b.self.Validate(alert)
	}
	b.flush(alert)
	return b.valid != nil && *b.valid
}

// flush hands a deferred alert to alert.
func (b *Base) flush(alert AlertFunc) {
	if alert != nil && b.pending != nil {
		alert(*b.pending)
		b.pending = nil
	}
}

// Validate checks the value against the rules.  Hidden and unnamed widgets
// are always valid.
func (b *Base) Validate(alert AlertFunc) bool {
	valid := true
	if !b.Hidden() && b.self.Name() != "" {
		value := b.validationValue()
		text := textOf(value)
		if b.rules.Pattern != nil {
			valid = (text == "" && b.rules.Blank) || b.rules.Match(text)
			if !valid {
				if b.rules.PatternHint != "" {
					b.report(alert, b.rules.PatternHint, b.rules.PatternText)
				} else {
					b.Raise(alert, i18n.PatternMismatch, b.rules.PatternText)
				}
			}
		}
		if valid && b.rules.Required {
			valid = value != nil && (b.rules.Blank || strings.TrimSpace(text) != "")
			if !valid {
				b.Raise(alert, i18n.ValueRequired, "")
			}
		}
		if valid {
			if ext, ok := b.self.(ExtValidator); ok {
				valid = ext.ExtValidate(value)
				b.flush(alert)
			}
		}
	}
	b.SetValidity(valid)
	return valid
}

// SetValidity records the validation result and marks the form group.
func (b *Base) SetValidity(valid bool) {
	b.RecordValidity(valid)
	b.markError(!valid)
}

// RecordValidity records the validation result without marking the form
// group.
func (b *Base) RecordValidity(valid bool) {
	b.valid = &valid
}

// Raise reports an alert with the text resolved for key.  Without an alert
// function the alert is kept until the next IsValid call.
func (b *Base) Raise(alert AlertFunc, key, hint string) {
	b.page.Registry().TextFor(key, func(text string) {
		b.report(alert, text, hint)
	})
}

func (b *Base) report(alert AlertFunc, message, hint string) {
	a := Alert{Type: "danger", Label: b.Label(), Message: message, Hint: hint}
	if alert != nil {
		alert(a)
		return
	}
	b.pending = &a
}

func (b *Base) markError(failed bool) {
	group := b.el.Closest(".form-group")
	if failed {
		group.AddClass("has-error")
	} else {
		group.RemoveClass("has-error")
	}
}

func (b *Base) validationValue() interface{} {
	if vv, ok := b.self.(ValidationValuer); ok {
		return vv.ValueForValidation()
	}
	return b.self.Value()
}

// FieldName resolves the logical name of a widget: its explicit field name,
// the name or data-name attribute of its element, or the name of the first
// named element inside it.
func FieldName(w Widget) string {
	if fn, ok := w.(FieldNamer); ok {
		if name := fn.FieldName(); name != "" {
			return name
		}
	}
	el := w.Element()
	if name := el.AttrOr("name", ""); name != "" {
		return name
	}
	if name := el.AttrOr("data-name", ""); name != "" {
		return name
	}
	return el.Find("[name]").First().AttrOr("name", "")
}

// textOf renders a value the way it appears in an input.
func textOf(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(value)
}

// Truthy reports whether a value counts as set: not nil, not false, not
// zero and not empty.
func Truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	}
	return true
}
