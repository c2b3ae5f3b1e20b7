package multiform

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/G-Node/console/console/widget"
	"github.com/PuerkitoBio/goquery"
)

// Names of the posted control fields.
const (
	ActionField = "_action"
	SelectField = "_select"
)

// MaxItems is the largest number of items a post may give a multi-form.
const MaxItems = 1000

// ErrTooManyItems is returned by Decode when a post exceeds MaxItems.
var ErrTooManyItems = errors.New("too many multi-form items")

// KeyField is the posted field listing the item segments of the multi-form
// at path, in item order.
func KeyField(path string) string {
	return "_item:" + path
}

// CurrentField is the posted field holding the selected item index of the
// multi-form at path.
func CurrentField(path string) string {
	return "_current:" + path
}

// Find returns the multi-form below root prepared with path.
func Find(p *widget.Page, root *goquery.Selection, path string) *Widget {
	for _, w := range p.Widgets(root) {
		if mf, ok := w.(*Widget); ok && mf.Path() == path {
			return mf
		}
	}
	return nil
}

// Decode assigns posted values to the widgets below root.  Widgets are
// matched by their input names, so root must be prepared.  Each multi-form
// is first resized to the number of items posted for it and its items are
// named after the posted segments; nested multi-forms follow.  A post with
// more than MaxItems items for a multi-form is rejected before any item is
// added.
func Decode(p *widget.Page, root *goquery.Selection, values url.Values) error {
	for _, w := range p.Owned(root) {
		var err error
		switch v := w.(type) {
		case *Widget:
			err = v.decode(values)
		case *Item:
			err = Decode(p, v.Element(), values)
		case *widget.FormWidget:
			err = Decode(p, v.Element(), values)
		default:
			decodeField(w, values)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Widget) decode(values url.Values) error {
	keys := values[KeyField(w.path)]
	if len(keys) > MaxItems {
		return fmt.Errorf("%w: %d posted for %q", ErrTooManyItems, len(keys), w.path)
	}
	w.ResetTo(len(keys))
	for i, it := range w.items {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		it.PrepareAs(w.path, i, key)
		if err := Decode(w.Page(), it.Element(), values); err != nil {
			return err
		}
	}
	if idx, err := strconv.Atoi(values.Get(CurrentField(w.path))); err == nil {
		w.Select(idx)
	}
	return nil
}

type inputer interface {
	Input() *goquery.Selection
}

type inputChanger interface {
	InputChanged()
}

// decodeField assigns the posted value of a plain widget and raises its
// changed event when the value differs from the rendered one.
func decodeField(w widget.Widget, values url.Values) {
	in, ok := w.(inputer)
	if !ok || in.Input().Length() == 0 {
		return
	}
	name := in.Input().AttrOr("name", "")
	if name == "" {
		return
	}
	old := w.Value()
	posted, ok := values[name]
	_, isCheckbox := w.(*widget.Checkbox)
	switch {
	case isCheckbox:
		w.SetValue(ok && len(posted) > 0 && posted[0] != "", false)
	case !ok || len(posted) == 0:
		w.SetValue(nil, false)
	default:
		w.SetValue(posted[0], false)
	}
	if ic, ok := w.(inputChanger); ok && !reflect.DeepEqual(old, w.Value()) {
		ic.InputChanged()
	}
}

// Control runs the multi-form action or selection requested by a post: an
// action field "path:action" or a select field "path:index".  It reports
// whether the post carried a control; such posts edit the form and are not
// submissions.
func Control(p *widget.Page, root *goquery.Selection, values url.Values) (bool, error) {
	if action := values.Get(ActionField); action != "" {
		path, name := splitControl(action)
		mf := Find(p, root, path)
		if mf == nil {
			return true, fmt.Errorf("no multi-form at %q", path)
		}
		return true, mf.Do(name)
	}
	if sel := values.Get(SelectField); sel != "" {
		path, arg := splitControl(sel)
		mf := Find(p, root, path)
		if mf == nil {
			return true, fmt.Errorf("no multi-form at %q", path)
		}
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return true, fmt.Errorf("invalid item index %q: %w", arg, err)
		}
		mf.Select(idx)
		return true, nil
	}
	return false, nil
}

func splitControl(value string) (path, arg string) {
	i := strings.LastIndex(value, ":")
	if i < 0 {
		return "", value
	}
	return value[:i], value[i+1:]
}
