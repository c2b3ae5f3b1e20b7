// Package dom holds the small set of element operations the widgets need on
// top of goquery: parsing and rendering, input value access, and moving
// nodes around a parsed tree.
package dom

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// InputSelector matches the elements that carry an editable value.
const InputSelector = "input:not([type=hidden]), select, textarea"

// Parse reads an HTML document or fragment.
func Parse(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}

// ParseString is Parse for markup held in a string.
func ParseString(markup string) (*goquery.Document, error) {
	return Parse(strings.NewReader(markup))
}

// Render writes the nodes of the selection (including the nodes themselves)
// to w.
func Render(w io.Writer, sel *goquery.Selection) error {
	for _, n := range sel.Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders the selection into a string.
func RenderString(sel *goquery.Selection) (string, error) {
	buf := new(bytes.Buffer)
	if err := Render(buf, sel); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Same reports whether both selections start with the same node.
func Same(a, b *goquery.Selection) bool {
	if a == nil || b == nil || a.Length() == 0 || b.Length() == 0 {
		return false
	}
	return a.Get(0) == b.Get(0)
}

// Input returns the editable input of an element: the element itself when
// it is an input, otherwise its first non-hidden input descendant.  The
// returned selection is empty when there is none.
func Input(el *goquery.Selection) *goquery.Selection {
	if el.Is(InputSelector) {
		return el.First()
	}
	return el.Find(InputSelector).First()
}

// IsHidden reports whether the element is flagged hidden in the markup.
func IsHidden(el *goquery.Selection) bool {
	if _, ok := el.Attr("hidden"); ok {
		return true
	}
	return el.HasClass("hidden")
}

// IsCheckbox reports whether the input is a checkbox or radio button.
func IsCheckbox(in *goquery.Selection) bool {
	if goquery.NodeName(in) != "input" {
		return false
	}
	switch strings.ToLower(in.AttrOr("type", "")) {
	case "checkbox", "radio":
		return true
	}
	return false
}

// Checked reports the checked state of a checkbox or radio button.
func Checked(in *goquery.Selection) bool {
	_, ok := in.Attr("checked")
	return ok
}

// SetChecked sets or clears the checked state.
func SetChecked(in *goquery.Selection, checked bool) {
	if checked {
		in.SetAttr("checked", "checked")
	} else {
		in.RemoveAttr("checked")
	}
}

// Value returns the current value of an input, select or textarea.
// Unchecked checkboxes have the empty value.
func Value(in *goquery.Selection) string {
	if in.Length() == 0 {
		return ""
	}
	switch goquery.NodeName(in) {
	case "textarea":
		return in.Text()
	case "select":
		opt := in.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = in.Find("option").First()
		}
		return optionValue(opt)
	}
	if IsCheckbox(in) {
		if !Checked(in) {
			return ""
		}
		return in.AttrOr("value", "on")
	}
	return in.AttrOr("value", "")
}

// SetValue assigns the value to an input, select or textarea.  A checkbox is
// checked by any value other than "" and "false".
func SetValue(in *goquery.Selection, value string) {
	if in.Length() == 0 {
		return
	}
	switch goquery.NodeName(in) {
	case "textarea":
		in.SetText(value)
		return
	case "select":
		in.Find("option").Each(func(_ int, opt *goquery.Selection) {
			if optionValue(opt) == value {
				opt.SetAttr("selected", "selected")
			} else {
				opt.RemoveAttr("selected")
			}
		})
		return
	}
	if IsCheckbox(in) {
		SetChecked(in, value != "" && value != "false")
		return
	}
	in.SetAttr("value", value)
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return opt.Text()
}

// InsertAfter moves (or attaches) the nodes of sel directly after ref.
func InsertAfter(ref, sel *goquery.Selection) {
	if ref.Length() == 0 {
		return
	}
	anchor := ref.Get(ref.Length() - 1)
	parent := anchor.Parent
	if parent == nil {
		return
	}
	next := anchor.NextSibling
	for _, n := range sel.Nodes {
		if n == anchor {
			continue
		}
		if n == next {
			next = n.NextSibling
		}
		detach(n)
		parent.InsertBefore(n, next)
	}
}

// InsertBefore moves (or attaches) the nodes of sel directly before ref.
func InsertBefore(ref, sel *goquery.Selection) {
	if ref.Length() == 0 {
		return
	}
	anchor := ref.Get(0)
	if anchor.Parent == nil {
		return
	}
	for _, n := range sel.Nodes {
		if n == anchor {
			continue
		}
		detach(n)
		anchor.Parent.InsertBefore(n, anchor)
	}
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Walk calls fn for every node below root in document order.  When fn
// returns false the children of that node are skipped.
func Walk(root *html.Node, fn func(n *html.Node) bool) {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if fn(c) {
			Walk(c, fn)
		}
	}
}
