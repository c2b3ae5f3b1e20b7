package widget

import (
	"github.com/PuerkitoBio/goquery"
)

// FormWidget is the enclosing form.  It validates every widget inside it and
// aggregates the values of its outermost widgets by field name.
type FormWidget struct {
	*Base
}

// NewFormWidget binds a form widget to el.
func NewFormWidget(p *Page, el *goquery.Selection, opts Options) Widget {
	f := &FormWidget{}
	f.Base = NewBase(f, p, el, opts)
	return f
}

// Name returns the form name or id.
func (f *FormWidget) Name() string {
	return f.Element().AttrOr("name", f.Element().AttrOr("id", ""))
}

// DeclareName renames the form element.
func (f *FormWidget) DeclareName(name string) {
	f.Element().SetAttr("name", name)
}

// Widgets returns all widgets inside the form.
func (f *FormWidget) Widgets() []Widget {
	return f.Page().Widgets(f.Element())
}

// Fields returns the outermost widgets of the form.
func (f *FormWidget) Fields() []Widget {
	return f.Page().Owned(f.Element())
}

// Validate asks every widget of the form; all widgets are checked so that
// every alert is reported.
func (f *FormWidget) Validate(alert AlertFunc) bool {
	valid := true
	for _, w := range f.Widgets() {
		w.ValidationReset()
		if !w.IsValid(alert) {
			valid = false
		}
	}
	f.SetValidity(valid)
	return valid
}

// Prepare rewrites the field names of the containers of the form.
func (f *FormWidget) Prepare() {
	for _, w := range f.Fields() {
		if p, ok := w.(Preparer); ok {
			p.Prepare(FieldName(w))
		}
	}
}

// Value prepares the form and returns the field values by name.
func (f *FormWidget) Value() interface{} {
	return f.Values()
}

// Values prepares the form and returns the field values by name.
func (f *FormWidget) Values() map[string]interface{} {
	f.Prepare()
	values := make(map[string]interface{})
	for _, w := range f.Fields() {
		if name := FieldName(w); name != "" {
			values[name] = w.Value()
		}
	}
	return values
}

// SetValue assigns a map of field values; fields missing from the map are
// left untouched.
func (f *FormWidget) SetValue(value interface{}, triggerChange bool) {
	values, ok := value.(map[string]interface{})
	if !ok {
		return
	}
	for _, w := range f.Fields() {
		if v, ok := values[FieldName(w)]; ok {
			w.SetValue(v, triggerChange)
		}
	}
	f.Prepare()
}

// Reset resets every field of the form.
func (f *FormWidget) Reset() {
	for _, w := range f.Fields() {
		if r, ok := w.(Resettable); ok {
			r.Reset()
		}
	}
	f.ValidationReset()
}

// ReadOnly disables every input of the form.
func (f *FormWidget) ReadOnly() {
	f.Element().Find("input, select, textarea, button").SetAttr("disabled", "disabled")
}
