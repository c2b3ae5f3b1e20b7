// Package multiform implements the editor for arrays of structured values:
// a list of repeatable items, each a small form of its own, that can be
// added, removed, reordered and selected.
package multiform

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/G-Node/console/console/dom"
	"github.com/G-Node/console/console/i18n"
	"github.com/G-Node/console/console/widget"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Selectors of the multi-form markup.
const (
	Selector        = ".widget.multi-form-widget"
	ActionsSelector = ".multi-form-actions"
	SelectSelector  = ".multi-form-select"
	CurrentSelector = ".multi-form-current"
)

// Actions understood by Do.
const (
	ActionAdd      = "add"
	ActionRemove   = "remove"
	ActionMoveUp   = "move-up"
	ActionMoveDown = "move-down"
)

const actionBar = `<div class="multi-form-actions btn-group">` +
	`<button type="submit" class="btn btn-default" name="_action" data-action="add" title="Add">+</button>` +
	`<button type="submit" class="btn btn-default" name="_action" data-action="remove" title="Remove">-</button>` +
	`<button type="submit" class="btn btn-default" name="_action" data-action="move-up" title="Move up">&uarr;</button>` +
	`<button type="submit" class="btn btn-default" name="_action" data-action="move-down" title="Move down">&darr;</button>` +
	`</div>`

// Register adds the multi-form widget type to the registry.
func Register(r *widget.Registry) {
	r.Register(Selector, New, nil)
}

// Widget manages the ordered items of a multi-form.  All items are of the
// same type; the last item serves as the template for new ones.
type Widget struct {
	*widget.Base
	items       []*Item
	current     *Item
	path        string
	itemOptions widget.Options
}

// New binds a multi-form to el.  The item name widget and segment prefix
// come from the options "nameWidget" and "prefix" or the data-name-widget
// and data-item-prefix attributes.
func New(p *widget.Page, el *goquery.Selection, opts widget.Options) widget.Widget {
	w := &Widget{
		itemOptions: widget.Options{
			"nameWidget": el.AttrOr("data-name-widget", opts.String("nameWidget")),
			"prefix":     el.AttrOr("data-item-prefix", opts.String("prefix")),
		},
	}
	w.Base = widget.NewBase(w, p, el, opts)
	el.Find(ItemSelector).Each(func(_ int, s *goquery.Selection) {
		if w.owns(s) {
			w.items = append(w.items, w.bindItem(s, false))
		}
	})
	if el.ChildrenFiltered(CurrentSelector).Length() == 0 {
		el.AppendHtml(`<input type="hidden" class="multi-form-current" value="0">`)
	}
	if el.ChildrenFiltered(ActionsSelector).Length() == 0 {
		el.AppendHtml(actionBar)
	}
	if len(w.items) > 0 {
		w.SetCurrent(w.items[0])
	} else {
		w.Log().Warn("multi-form without items", zap.String("name", w.Name()))
	}
	return w
}

// owns reports whether the item element belongs to this multi-form and not
// to a nested one.
func (w *Widget) owns(item *goquery.Selection) bool {
	return dom.Same(item.Parent().Closest(Selector), w.Element())
}

func (w *Widget) bindItem(el *goquery.Selection, force bool) *Item {
	return w.Page().Bind(el, NewItem, w.itemOptions, force).(*Item)
}

// Name returns the data-name of the element.
func (w *Widget) Name() string {
	return w.Element().AttrOr("data-name", "")
}

// FieldName is the name of the multi-form in the enclosing value.
func (w *Widget) FieldName() string {
	return w.Name()
}

// DeclareName renames the multi-form; item fields follow on the next
// Prepare.
func (w *Widget) DeclareName(name string) {
	w.Element().SetAttr("data-name", name)
}

// Path returns the base path of the last Prepare.
func (w *Widget) Path() string {
	return w.path
}

// Items returns the items in order.
func (w *Widget) Items() []*Item {
	items := make([]*Item, len(w.items))
	copy(items, w.items)
	return items
}

// Len returns the number of items.
func (w *Widget) Len() int {
	return len(w.items)
}

// Current returns the selected item.
func (w *Widget) Current() *Item {
	return w.current
}

// SetCurrent selects item; items that are not part of the list are ignored.
func (w *Widget) SetCurrent(item *Item) {
	if w.indexOf(item) < 0 {
		return
	}
	w.current = item
	w.refresh()
}

// Select selects the item at index.
func (w *Widget) Select(index int) {
	if index >= 0 && index < len(w.items) {
		w.SetCurrent(w.items[index])
	}
}

func (w *Widget) indexOf(item *Item) int {
	if item == nil {
		return -1
	}
	for i, it := range w.items {
		if it == item {
			return i
		}
	}
	return -1
}

// refresh records the item positions and marks the selected item.
func (w *Widget) refresh() {
	for i, it := range w.items {
		it.index = i
		handle := it.Element().ChildrenFiltered(SelectSelector)
		if handle.Length() > 0 {
			handle.SetAttr("value", w.path+":"+strconv.Itoa(i))
		} else {
			handle = it.Element()
		}
		if it == w.current {
			handle.AddClass("active")
		} else {
			handle.RemoveClass("active")
		}
	}
	if idx := w.indexOf(w.current); idx >= 0 {
		w.Element().ChildrenFiltered(CurrentSelector).SetAttr("value", strconv.Itoa(idx))
	}
}

// Value returns the item values in order.  The last item is left out when
// it is empty; empty items elsewhere are kept.
func (w *Widget) Value() interface{} {
	values := make([]interface{}, 0, len(w.items))
	for i, it := range w.items {
		v := it.Value()
		if i == len(w.items)-1 && isEmpty(v) {
			break
		}
		values = append(values, v)
	}
	return values
}

// SetValue resizes the list to the given values and assigns them.  A value
// that is not a list clears the multi-form to one empty item.
func (w *Widget) SetValue(value interface{}, triggerChange bool) {
	list := toList(value)
	w.ResetTo(len(list))
	for i, v := range list {
		w.items[i].SetValue(v, false)
	}
	if triggerChange {
		w.Changed()
	}
}

// Reset clears the multi-form to one empty item.
func (w *Widget) Reset() {
	w.ResetTo(1)
	w.ValidationReset()
}

// ResetTo resizes the list to size items (at least one) with empty values.
func (w *Widget) ResetTo(size int) {
	if len(w.items) == 0 {
		return
	}
	if size < 1 {
		size = 1
	}
	for len(w.items) > size {
		w.removeAt(len(w.items) - 1)
	}
	for _, it := range w.items {
		it.Reset()
	}
	for len(w.items) < size {
		w.add()
	}
	if w.current == nil {
		w.current = w.items[0]
	}
	w.refresh()
}

// Add appends a copy of the last item with empty values.  The selection is
// kept.
func (w *Widget) Add() *Item {
	item := w.add()
	if item != nil {
		w.refresh()
		w.Changed()
	}
	return item
}

func (w *Widget) add() *Item {
	if len(w.items) == 0 {
		return nil
	}
	last := w.items[len(w.items)-1].Element()
	clone := last.Clone()
	dom.InsertAfter(last, clone)
	w.Page().Apply(clone, "afterClone")
	item := w.bindItem(clone, true)
	item.Reset()
	w.items = append(w.items, item)
	return item
}

// Remove removes the selected item and selects its neighbour.  The only
// item is reset instead of removed.
func (w *Widget) Remove() {
	if len(w.items) == 0 {
		return
	}
	if len(w.items) == 1 {
		w.items[0].Reset()
		w.Changed()
		return
	}
	idx := w.indexOf(w.current)
	if idx < 0 {
		return
	}
	w.removeAt(idx)
	if idx >= len(w.items) {
		idx = len(w.items) - 1
	}
	w.SetCurrent(w.items[idx])
	w.Changed()
}

func (w *Widget) removeAt(idx int) {
	it := w.items[idx]
	w.Page().Release(it.Element())
	it.Element().Remove()
	w.items = append(w.items[:idx], w.items[idx+1:]...)
	if it == w.current {
		w.current = nil
	}
}

// MoveUp swaps the selected item with its predecessor.
func (w *Widget) MoveUp() {
	idx := w.indexOf(w.current)
	if idx <= 0 {
		return
	}
	prev := w.items[idx-1]
	dom.InsertBefore(prev.Element(), w.current.Element())
	w.items[idx-1], w.items[idx] = w.current, prev
	w.refresh()
	w.Changed()
}

// MoveDown swaps the selected item with its successor.
func (w *Widget) MoveDown() {
	idx := w.indexOf(w.current)
	if idx < 0 || idx >= len(w.items)-1 {
		return
	}
	next := w.items[idx+1]
	dom.InsertAfter(next.Element(), w.current.Element())
	w.items[idx], w.items[idx+1] = next, w.current
	w.refresh()
	w.Changed()
}

// Do runs one of the action bar actions.
func (w *Widget) Do(action string) error {
	switch action {
	case ActionAdd:
		w.Add()
	case ActionRemove:
		w.Remove()
	case ActionMoveUp:
		w.MoveUp()
	case ActionMoveDown:
		w.MoveDown()
	default:
		return fmt.Errorf("unknown multi-form action %q", action)
	}
	return nil
}

// Validate checks that the item names are unique.  The first duplicate is
// reported; field validation is left to the widgets of the items.
func (w *Widget) Validate(alert widget.AlertFunc) bool {
	valid := true
	seen := make(map[string]bool, len(w.items))
	for _, it := range w.items {
		name := it.NameValue()
		if name == "" {
			continue
		}
		if seen[name] {
			valid = false
			w.Raise(alert, i18n.NamesNotUnique, fmt.Sprintf("'%s'", name))
			break
		}
		seen[name] = true
	}
	w.SetValidity(valid)
	return valid
}

// Prepare names the item fields below basePath and labels the action and
// selection controls with the path.
func (w *Widget) Prepare(basePath string) {
	w.path = basePath
	for i, it := range w.items {
		it.Prepare(basePath, i)
	}
	w.Element().ChildrenFiltered(CurrentSelector).SetAttr("name", CurrentField(basePath))
	w.Element().ChildrenFiltered(ActionsSelector).Find("[data-action]").Each(func(_ int, b *goquery.Selection) {
		b.SetAttr("value", basePath+":"+b.AttrOr("data-action", ""))
	})
	w.refresh()
}

// GetWidgetValue returns the value of the widget bound to el, or the raw
// value of the element when it has no widget.
func GetWidgetValue(p *widget.Page, el *goquery.Selection) interface{} {
	if w := p.WidgetOf(el); w != nil {
		return w.Value()
	}
	in := dom.Input(el)
	if dom.IsCheckbox(in) {
		return dom.Checked(in)
	}
	return dom.Value(in)
}

// SetWidgetValue assigns value through the widget bound to el, or directly
// to the element when it has no widget.
func SetWidgetValue(p *widget.Page, el *goquery.Selection, value interface{}) {
	if w := p.WidgetOf(el); w != nil {
		w.SetValue(value, false)
		return
	}
	in := dom.Input(el)
	switch v := value.(type) {
	case nil:
		dom.SetValue(in, "")
	case bool:
		dom.SetValue(in, strconv.FormatBool(v))
	default:
		dom.SetValue(in, fmt.Sprint(v))
	}
}

// isEmpty reports whether all leaves of a value are falsy.
func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case map[string]interface{}:
		for _, leaf := range v {
			if !isEmpty(leaf) {
				return false
			}
		}
		return true
	case []interface{}:
		for _, leaf := range v {
			if !isEmpty(leaf) {
				return false
			}
		}
		return true
	}
	return !widget.Truthy(value)
}

func toList(value interface{}) []interface{} {
	if list, ok := value.([]interface{}); ok {
		return list
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	list := make([]interface{}, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list
}
