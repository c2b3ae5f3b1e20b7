package multiform

import (
	"fmt"

	"github.com/G-Node/console/console/dom"
	"github.com/G-Node/console/console/widget"
	"github.com/PuerkitoBio/goquery"
)

// Selectors of the item markup.
const (
	ItemSelector = ".multi-form-item"
	KeySelector  = ".multi-form-key"
)

// Item is one row of a multi-form.  Its value aggregates the values of the
// widgets inside it.
type Item struct {
	*widget.Base
	index      int
	path       string
	prefix     string
	nameWidget string
}

// NewItem binds an item to el and sets up the widgets inside it.  The
// options "nameWidget" (selector of the widget holding the item name) and
// "prefix" (segment prefix of unnamed items) are recognized.
func NewItem(p *widget.Page, el *goquery.Selection, opts widget.Options) widget.Widget {
	it := &Item{
		prefix:     opts.String("prefix"),
		nameWidget: opts.String("nameWidget"),
	}
	if it.prefix == "" {
		it.prefix = "item"
	}
	it.Base = widget.NewBase(it, p, el, opts)
	if el.ChildrenFiltered(KeySelector).Length() == 0 {
		el.PrependHtml(`<input type="hidden" class="multi-form-key">`)
	}
	p.SetUp(el, false)
	return it
}

// Name is empty: the item itself carries no field rules.
func (it *Item) Name() string {
	return ""
}

// Validate accepts the item.  The enclosing form group belongs to the
// multi-form, whose uniqueness check marks it.
func (it *Item) Validate(widget.AlertFunc) bool {
	it.RecordValidity(true)
	return true
}

// Index returns the position recorded by the multi-form.
func (it *Item) Index() int {
	return it.index
}

// Path returns the path assigned by the last Prepare.
func (it *Item) Path() string {
	return it.path
}

// Widgets returns the widgets of the item.
func (it *Item) Widgets() []widget.Widget {
	return it.Page().Owned(it.Element())
}

// NameWidget returns the widget holding the item name, if the item type
// designates one.
func (it *Item) NameWidget() widget.Widget {
	if it.nameWidget == "" {
		return nil
	}
	return it.Page().WidgetOf(it.Element().Find(it.nameWidget).First())
}

// NameValue returns the value of the name widget.
func (it *Item) NameValue() string {
	nw := it.NameWidget()
	if nw == nil {
		return ""
	}
	if v := nw.Value(); v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// Value returns the widget values by field name.  A single field is
// returned as its bare value and an item without fields has no value.
func (it *Item) Value() interface{} {
	values := make(map[string]interface{})
	for _, w := range it.Widgets() {
		if name := widget.FieldName(w); name != "" {
			values[name] = w.Value()
		}
	}
	switch len(values) {
	case 0:
		return nil
	case 1:
		for _, v := range values {
			return v
		}
	}
	return values
}

// SetValue distributes an object value to the widgets by field name; any
// other value is given to every widget as is.
func (it *Item) SetValue(value interface{}, triggerChange bool) {
	values, isObject := value.(map[string]interface{})
	for _, w := range it.Widgets() {
		if isObject {
			w.SetValue(values[widget.FieldName(w)], triggerChange)
		} else {
			w.SetValue(value, triggerChange)
		}
	}
}

// Reset resets the widgets of the item and clears inputs that are not bound
// to a widget.
func (it *Item) Reset() {
	for _, w := range it.Widgets() {
		if r, ok := w.(widget.Resettable); ok {
			r.Reset()
		} else {
			w.SetValue(nil, false)
		}
	}
	it.Element().Find(dom.InputSelector).Each(func(_ int, in *goquery.Selection) {
		if it.Page().Owner(in, it.Element()) == nil {
			dom.SetValue(in, "")
		}
	})
	it.ValidationReset()
}

// Prepare rewrites the names of the item fields to basePath/segment/field.
// The segment is the value of the name widget when there is one, otherwise
// prefix-index.
func (it *Item) Prepare(basePath string, index int) {
	it.PrepareAs(basePath, index, "")
}

// PrepareAs is Prepare with a given segment.  An empty segment is derived as
// in Prepare.  The segment is recorded in the key input of the item so that
// posted fields can be matched to their item.
func (it *Item) PrepareAs(basePath string, index int, segment string) {
	it.index = index
	if segment == "" {
		segment = it.NameValue()
	}
	if segment == "" {
		segment = fmt.Sprintf("%s-%d", it.prefix, index)
	}
	it.path = joinPath(basePath, segment)
	it.Element().ChildrenFiltered(KeySelector).SetAttr("name", KeyField(basePath)).SetAttr("value", segment)
	for _, w := range it.Widgets() {
		name := widget.FieldName(w)
		if name == "" {
			continue
		}
		el := w.Element()
		if _, named := el.Attr("name"); !named {
			if _, ok := el.Attr("data-name"); !ok {
				// keep the field name once the input is renamed
				el.SetAttr("data-name", name)
			}
		}
		path := joinPath(it.path, name)
		if p, ok := w.(widget.Preparer); ok {
			p.Prepare(path)
			continue
		}
		w.DeclareName(path)
	}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
