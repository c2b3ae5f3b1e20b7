// Package form defines the declarative form model the service renders into
// widget markup.
package form

import "strings"

const (
	CheckboxInput ElementType = "checkbox"
	ColorInput    ElementType = "color"
	DateInput     ElementType = "date"
	DateTimeInput ElementType = "datetime-local"
	EmailInput    ElementType = "email"
	FileInput     ElementType = "file"
	HiddenInput   ElementType = "hidden"
	ImageInput    ElementType = "image"
	MonthInput    ElementType = "month"
	NumberInput   ElementType = "number"
	PasswordInput ElementType = "password"
	RadioInput    ElementType = "radio"
	RangeInput    ElementType = "range"
	SearchInput   ElementType = "search"
	TelInput      ElementType = "tel"
	TextInput     ElementType = "text"
	TimeInput     ElementType = "time"
	URLInput      ElementType = "url"
	WeekInput     ElementType = "week"
	TextArea      ElementType = "textarea"
	Select        ElementType = "select"
	RichText      ElementType = "richtext"
)

// ElementType defines the type of a form input element:
// https://developer.mozilla.org/en-US/docs/Web/HTML/Element/input
type ElementType string

// Form is the top level type for defining the web form for user input.
type Form struct {
	// The Name appears at the top of all pages in the form and in the HTML
	// title.
	Name string
	// The Description appears under the Name on every page.
	Description string
	// Each Page creates a form page with the included elements.  The last page
	// contains the submit button.
	Pages []Page
}

// Page represents a single page of a multi-page web form.
type Page struct {
	// The Description appears under the form description.  Use it to provide
	// information about the elements of the specific page.
	Description string
	// Each element creates an input field on the form.
	Elements []Element
}

// Element represents a single form element (field).
type Element struct {
	// ID of the element.  Must be unique.
	ID string
	// Name of the element.  Used as key to retrieve the value on submission.
	Name string
	// The Label of the field as it appears on the rendered form.
	Label string
	// If set, the field will be filled with the given value, or the
	// appropriate option will be selected, when rendered.
	Value string
	// Whether the element represents a required form field.
	Required bool
	// An optional description for the field.  If set will be displayed under
	// the input field.  Can be used to provide extra information such as input
	// constraints.
	Description string
	// Type is the HTML input element type.
	Type ElementType
	// ValueList should contain a set of values that represent the permissible
	// or recommended options available to the element.  For input type
	// elements, it represents suggested values (datalist).  For select
	// elements, it represents the values in the list.
	ValueList []string
	// Read only fields can't be edited.
	ReadOnly bool
	// Pattern is a regular expression the value must match, either plain or
	// in /source/flags form.
	Pattern string
	// PatternHint replaces the generic message shown when the value does not
	// match the Pattern.
	PatternHint string
	// Rules holds additional validation rules separated by spaces, such as
	// "blank" to accept empty values or "unique".
	Rules string
	// Hidden elements are submitted but neither shown nor validated.
	Hidden bool
	// Items turns the element into a list of repeatable items, each made of
	// the given elements.
	Items []Element
	// NameField is the name of the item element whose value names an item.
	NameField string
	// ItemPrefix is used to name items without a name value.
	ItemPrefix string
	// Class holds extra classes for the widget element.
	Class string
}

// IsMultiForm reports whether the element is a list of items.
func (e Element) IsMultiForm() bool {
	return len(e.Items) > 0
}

// ItemElements returns the item elements, the one named by NameField marked
// as the name widget of the items.
func (e Element) ItemElements() []Element {
	items := make([]Element, len(e.Items))
	copy(items, e.Items)
	for idx := range items {
		if e.NameField != "" && items[idx].Name == e.NameField {
			items[idx].Class = strings.TrimSpace(items[idx].Class + " name-widget")
		}
	}
	return items
}

// WidgetClass returns the class of the widget type rendered for the element.
func (e Element) WidgetClass() string {
	if e.IsMultiForm() {
		return "multi-form-widget"
	}
	switch e.Type {
	case CheckboxInput:
		return "checkbox-widget"
	case NumberInput, RangeInput:
		return "number-field-widget"
	case Select, RadioInput:
		return "select-widget"
	case RichText:
		return "richtext-widget"
	}
	return "text-field-widget"
}

// InputType returns the type attribute of the input element.
func (e Element) InputType() string {
	switch e.Type {
	case "", HiddenInput:
		return string(TextInput)
	}
	return string(e.Type)
}

// RuleSet returns the validation rules of the element including the
// required rule.
func (e Element) RuleSet() string {
	rules := strings.Fields(e.Rules)
	if e.Required {
		rules = append(rules, "required")
	}
	return strings.Join(rules, " ")
}

// IsHidden reports whether the element is rendered hidden.
func (e Element) IsHidden() bool {
	return e.Hidden || e.Type == HiddenInput
}

// Checked reports whether a checkbox element starts checked.
func (e Element) Checked() bool {
	switch strings.ToLower(e.Value) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// Elements returns the elements of all pages in order.
func (f Form) Elements() []Element {
	var elements []Element
	for _, p := range f.Pages {
		elements = append(elements, p.Elements...)
	}
	return elements
}
