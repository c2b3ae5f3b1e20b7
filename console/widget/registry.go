package widget

import (
	"sort"
	"sync"

	"github.com/G-Node/console/console/dom"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Options configure a widget type or a single binding.
type Options map[string]interface{}

// Merge returns a new option set with the values of other taking precedence.
func (o Options) Merge(other Options) Options {
	merged := make(Options, len(o)+len(other))
	for k, v := range o {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// String returns the string option for key or the empty string.
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Hook returns the function valued option for key.
func (o Options) Hook(key string) (Hook, bool) {
	switch h := o[key].(type) {
	case Hook:
		return h, h != nil
	case func(*goquery.Selection):
		return h, h != nil
	}
	return nil, false
}

// Hook is a function valued widget option applied to matching elements,
// e.g. "afterClone".
type Hook func(el *goquery.Selection)

// Constructor binds a new widget to el.
type Constructor func(p *Page, el *goquery.Selection, opts Options) Widget

// Descriptor is a registered widget type.
type Descriptor struct {
	Selector string
	New      Constructor
	Options  Options
}

// TextResolver resolves user facing message keys.
type TextResolver interface {
	TextFor(key string, fn func(text string))
}

// Registry maps selectors to widget types.  It is populated once at startup
// and read by every page afterwards.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
	texts       TextResolver
	log         *zap.Logger
}

// NewRegistry returns an empty registry.  A nil logger discards log output.
func NewRegistry(texts TextResolver, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		descriptors: make(map[string]Descriptor),
		texts:       texts,
		log:         log,
	}
}

// Register adds the widget type for selector.  A later registration for the
// same selector replaces the earlier one.
func (r *Registry) Register(selector string, c Constructor, opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[selector] = Descriptor{Selector: selector, New: c, Options: opts}
	r.log.Debug("widget registered", zap.String("selector", selector))
}

// Descriptors returns the registered widget types ordered by selector.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Selector < list[j].Selector })
	return list
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger {
	return r.log
}

// TextFor resolves key through the configured resolver.  Without a resolver
// the key itself is used.
func (r *Registry) TextFor(key string, fn func(text string)) {
	if r.texts == nil {
		fn(key)
		return
	}
	r.texts.TextFor(key, fn)
}

// NewPage starts binding widgets on a parsed document.
func (r *Registry) NewPage(doc *goquery.Document) *Page {
	return &Page{
		reg:   r,
		doc:   doc,
		views: make(map[*html.Node]Widget),
	}
}

// Page holds the widgets bound to the elements of one document.
type Page struct {
	reg   *Registry
	doc   *goquery.Document
	views map[*html.Node]Widget
	// Options are merged into the options of every binding on the page.
	Options Options
}

// Registry returns the registry the page was created from.
func (p *Page) Registry() *Registry {
	return p.reg
}

// Document returns the page document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// SetUp binds the registered widget types to all matching elements under and
// including root that have no widget yet (all matching elements when force
// is set).  A nil root means the whole document.  It returns the widgets
// bound in this pass.
func (p *Page) SetUp(root *goquery.Selection, force bool) []Widget {
	if root == nil {
		root = p.doc.Selection
	}
	var bound []Widget
	for _, d := range p.reg.Descriptors() {
		matching(root, d.Selector).Each(func(_ int, el *goquery.Selection) {
			if _, ok := p.views[el.Get(0)]; ok && !force {
				return
			}
			bound = append(bound, p.Bind(el, d.New, d.Options, true))
		})
	}
	return bound
}

// Bind returns the widget bound to el, constructing it when el has none or
// force is set.
func (p *Page) Bind(el *goquery.Selection, c Constructor, opts Options, force bool) Widget {
	if el == nil || el.Length() == 0 {
		return nil
	}
	el = el.First()
	node := el.Get(0)
	if w, ok := p.views[node]; ok && !force {
		return w
	}
	w := c(p, el, opts.Merge(p.Options))
	p.views[node] = w
	return w
}

// Apply calls the hook option named optionName of every registered widget
// type on each element under or equal to root that matches the type.
func (p *Page) Apply(root *goquery.Selection, optionName string) {
	for _, d := range p.reg.Descriptors() {
		hook, ok := d.Options.Hook(optionName)
		if !ok {
			continue
		}
		matching(root, d.Selector).Each(func(_ int, el *goquery.Selection) {
			hook(el)
		})
	}
}

// WidgetOf returns the widget bound to the first element of el.
func (p *Page) WidgetOf(el *goquery.Selection) Widget {
	if el == nil || el.Length() == 0 {
		return nil
	}
	return p.views[el.Get(0)]
}

// Widgets returns every widget bound below root in document order.
func (p *Page) Widgets(root *goquery.Selection) []Widget {
	var list []Widget
	for _, n := range root.Nodes {
		dom.Walk(n, func(c *html.Node) bool {
			if w, ok := p.views[c]; ok {
				list = append(list, w)
			}
			return true
		})
	}
	return list
}

// Owned returns the outermost widgets below root: descendants of a bound
// element belong to that element's widget and are not listed.
func (p *Page) Owned(root *goquery.Selection) []Widget {
	var list []Widget
	for _, n := range root.Nodes {
		dom.Walk(n, func(c *html.Node) bool {
			if w, ok := p.views[c]; ok {
				list = append(list, w)
				return false
			}
			return true
		})
	}
	return list
}

// Owner returns the nearest widget bound to el or one of its ancestors below
// stop.
func (p *Page) Owner(el, stop *goquery.Selection) Widget {
	var limit *html.Node
	if stop != nil && stop.Length() > 0 {
		limit = stop.Get(0)
	}
	for _, n := range el.Nodes {
		for c := n; c != nil && c != limit; c = c.Parent {
			if w, ok := p.views[c]; ok {
				return w
			}
		}
	}
	return nil
}

// Release forgets the widgets bound to root and its descendants.
func (p *Page) Release(root *goquery.Selection) {
	for _, n := range root.Nodes {
		delete(p.views, n)
		dom.Walk(n, func(c *html.Node) bool {
			delete(p.views, c)
			return true
		})
	}
}

// Render writes the page markup.
func (p *Page) Render() (string, error) {
	return dom.RenderString(p.doc.Selection)
}

func matching(root *goquery.Selection, selector string) *goquery.Selection {
	return root.Filter(selector).AddSelection(root.Find(selector))
}
