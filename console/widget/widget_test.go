package widget

import (
	"testing"

	"github.com/G-Node/console/console/dom"
	"github.com/G-Node/console/console/i18n"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newPage(t *testing.T, markup string) *Page {
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	reg := NewRegistry(i18n.New("en"), zaptest.NewLogger(t))
	Defaults(reg)
	return reg.NewPage(doc)
}

func textField(t *testing.T, p *Page, selector string) *TextField {
	w, ok := p.WidgetOf(p.Document().Find(selector)).(*TextField)
	require.True(t, ok, "no text field bound to %s", selector)
	return w
}

func TestSetUpBindsOnce(t *testing.T) {
	p := newPage(t, `
		<div id="a" class="widget text-field-widget"><input name="a"></div>
		<div id="b" class="widget text-field-widget"><input name="b"></div>`)

	bound := p.SetUp(nil, false)
	assert.Len(t, bound, 2)
	first := p.WidgetOf(p.Document().Find("#a"))
	require.NotNil(t, first)

	assert.Empty(t, p.SetUp(nil, false))
	assert.Same(t, first, p.WidgetOf(p.Document().Find("#a")))

	forced := p.SetUp(nil, true)
	assert.Len(t, forced, 2)
	assert.NotSame(t, first, p.WidgetOf(p.Document().Find("#a")))
}

func TestSetUpIncludesRoot(t *testing.T) {
	p := newPage(t, `<div id="a" class="widget text-field-widget"><input name="a"></div>`)
	root := p.Document().Find("#a")
	bound := p.SetUp(root, false)
	require.Len(t, bound, 1)
	assert.Equal(t, "a", bound[0].Name())
}

func TestRegisterReplaces(t *testing.T) {
	p := newPage(t, `<div class="widget text-field-widget"><input name="a"></div>`)
	calls := 0
	p.Registry().Register(TextFieldSelector, func(p *Page, el *goquery.Selection, opts Options) Widget {
		calls++
		return NewTextField(p, el, opts)
	}, nil)
	p.SetUp(nil, false)
	assert.Equal(t, 1, calls)
}

func TestApplyHook(t *testing.T) {
	p := newPage(t, `
		<div id="item">
			<div class="widget richtext-widget"><textarea name="text">&lt;b&gt;x&lt;/b&gt;</textarea><div class="richtext-preview"><b>x</b></div></div>
			<div class="widget text-field-widget"><input name="a"></div>
		</div>`)
	called := 0
	p.Registry().Register(".counted", NewTextField, Options{"afterClone": func(el *goquery.Selection) { called++ }})

	item := p.Document().Find("#item")
	p.Apply(item, "afterClone")
	assert.Equal(t, 0, item.Find(".richtext-preview").Children().Length())
	assert.Equal(t, 0, called)

	p.Apply(item, "noSuchHook")
}

func TestUnnamedWidgetIsValid(t *testing.T) {
	p := newPage(t, `<div class="widget text-field-widget" data-rules="required"><input type="text"></div>`)
	p.SetUp(nil, false)
	w := p.Widgets(p.Document().Selection)[0]
	var alerts Alerts
	assert.True(t, w.IsValid(alerts.Add))
	assert.Empty(t, alerts)
}

func TestHiddenWidgetIsValid(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget" data-rules="required" hidden><input name="x"></div>`)
	p.SetUp(nil, false)
	assert.True(t, textField(t, p, "#w").IsValid(nil))
}

func TestPatternWithBlank(t *testing.T) {
	p := newPage(t, `
		<div class="form-group">
			<div id="w" class="widget text-field-widget" data-label="Count" data-pattern="/^\d+$/" data-rules="blank"><input name="count"></div>
		</div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")

	var alerts Alerts
	w.SetValue("", false)
	assert.True(t, w.IsValid(alerts.Add))

	w.SetValue("abc", false)
	assert.True(t, w.IsValid(alerts.Add), "result is memoized until reset")
	w.ValidationReset()
	assert.False(t, w.IsValid(alerts.Add))
	require.Len(t, alerts, 1)
	assert.Equal(t, Alert{Type: "danger", Label: "Count", Message: "value doesn't match the pattern", Hint: `^\d+$`}, alerts[0])
	assert.True(t, p.Document().Find(".form-group").HasClass("has-error"))

	w.SetValue("123", false)
	w.ValidationReset()
	assert.True(t, w.IsValid(alerts.Add))
	assert.False(t, p.Document().Find(".form-group").HasClass("has-error"))
}

func TestPatternWithoutBlank(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget" data-pattern="^[a-z]+$" data-pattern-hint="lower case letters"><input name="id" value=""></div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")

	var alerts Alerts
	assert.False(t, w.Validate(alerts.Add))
	require.Len(t, alerts, 1)
	assert.Equal(t, "lower case letters", alerts[0].Message)
	assert.Equal(t, "^[a-z]+$", alerts[0].Hint)

	w.SetValue("ABC", false)
	assert.False(t, w.Validate(nil), "bare patterns are case sensitive")
	w.SetValue("abc", false)
	assert.True(t, w.Validate(nil))
}

func TestPatternFlags(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget" data-pattern="/^[a-z]+$/i"><input name="id" value="ABC"></div>`)
	p.SetUp(nil, false)
	assert.True(t, textField(t, p, "#w").Validate(nil))
}

func TestInvalidPatternIsDropped(t *testing.T) {
	doc, err := dom.ParseString(`<div id="w" class="widget text-field-widget" data-pattern="/[a-/"><input name="id" value="x"></div>`)
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	reg := NewRegistry(nil, zap.New(core))
	Defaults(reg)
	p := reg.NewPage(doc)
	p.SetUp(nil, false)

	w := p.WidgetOf(doc.Find("#w")).(*TextField)
	assert.Nil(t, w.Rules().Pattern)
	assert.True(t, w.Validate(nil))
	assert.Equal(t, 1, logs.FilterMessage("ignoring invalid pattern").Len())
}

func TestParsePattern(t *testing.T) {
	for _, pattern := range []string{`^\d+$`, `/^\d+$/`, `/a.b/s`, `/x/gim`} {
		_, err := ParsePattern(pattern)
		assert.NoError(t, err, pattern)
	}
	for _, pattern := range []string{`/unterminated`, `/x/q`, `(`} {
		_, err := ParsePattern(pattern)
		assert.Error(t, err, pattern)
	}
}

func TestInitRulesPatternFlags(t *testing.T) {
	doc, err := dom.ParseString(`
		<div id="i" data-pattern="/^abc$/i"></div>
		<div id="s" data-pattern="/a.b/s"></div>
		<div id="o"></div>`)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)

	rules := InitRules(doc.Find("#i"), nil, log)
	require.NotNil(t, rules.Pattern)
	assert.Equal(t, "^abc$", rules.PatternText)
	assert.True(t, rules.Match("ABC"))
	assert.False(t, rules.Match("abcd"))

	rules = InitRules(doc.Find("#s"), nil, log)
	require.NotNil(t, rules.Pattern)
	assert.True(t, rules.Match("a\nb"))

	rules = InitRules(doc.Find("#o"), Options{"pattern": "/^x+$/im", "rules": "required"}, log)
	require.NotNil(t, rules.Pattern)
	assert.True(t, rules.Match("y\nXX"))
	assert.True(t, rules.Required)
}

func TestRequiredWithoutBlank(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget" data-rules="Mandatory"><input name="title"></div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")
	require.True(t, w.Rules().Required)

	var alerts Alerts
	w.SetValue("   ", false)
	assert.False(t, w.Validate(alerts.Add))
	require.Len(t, alerts, 1)
	assert.Equal(t, "value is required", alerts[0].Message)
	assert.Equal(t, "title", alerts[0].Label)

	w.SetValue("x", false)
	assert.True(t, w.Validate(alerts.Add))
}

func TestRequiredWithBlank(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget" data-rules="required blank"><input name="title"></div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")
	w.SetValue("   ", false)
	assert.True(t, w.Validate(nil))
}

func TestDeferredAlert(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget" data-rules="required"><input name="title"></div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")

	assert.False(t, w.Validate(nil))
	valid, validated := w.Valid()
	assert.True(t, validated)
	assert.False(t, valid)

	var alerts Alerts
	assert.False(t, w.IsValid(alerts.Add))
	assert.Len(t, alerts, 1)
	assert.False(t, w.IsValid(alerts.Add))
	assert.Len(t, alerts, 1, "a flushed alert is delivered once")

	w.ValidationReset()
	_, validated = w.Valid()
	assert.False(t, validated)
}

func TestRules(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget" data-rules="unique, DISABLED"><input name="x"></div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")
	rules := w.Rules()
	assert.True(t, rules.Unique)
	assert.True(t, rules.Disabled)
	assert.False(t, rules.Required)
	assert.True(t, w.Disabled())
	w.SetDisabled(false)
	assert.False(t, w.Disabled())
}

func TestDeclareName(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget"><input name="x"></div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")
	w.DeclareName("a/b")
	assert.Equal(t, "a/b", w.Name())
	assert.Equal(t, 1, p.Document().Find(`input[name="a/b"]`).Length())
	w.DeclareName("")
	assert.Equal(t, "", w.Name())
	_, ok := w.Input().Attr("name")
	assert.False(t, ok)
}

func TestChangedEvent(t *testing.T) {
	p := newPage(t, `<div id="w" class="widget text-field-widget"><input name="x"></div>`)
	p.SetUp(nil, false)
	w := textField(t, p, "#w")

	var events []interface{}
	w.OnChanged(func(_ Widget, value interface{}) {
		events = append(events, value)
		// a handler writing back must not loop
		w.SetValue("handled", false)
	})

	w.SetValue("a", true)
	w.InputChanged()
	assert.Equal(t, []interface{}{"a", "handled"}, events)

	w.Guard().Run(func() {
		w.InputChanged()
	})
	assert.Len(t, events, 2)
}

func TestGuard(t *testing.T) {
	var g Guard
	inner := true
	assert.True(t, g.Run(func() {
		assert.True(t, g.Busy())
		inner = g.Run(func() {})
	}))
	assert.False(t, inner)
	assert.False(t, g.Busy())
}

func TestFieldTypes(t *testing.T) {
	p := newPage(t, `
		<div id="n" class="widget number-field-widget"><input name="n" value="4.50"></div>
		<div id="c" class="widget checkbox-widget"><input type="checkbox" name="c"></div>
		<div id="s" class="widget select-widget"><select name="s"><option value="a">A</option><option value="b">B</option></select></div>
		<div id="r" class="widget richtext-widget" data-rules="required"><textarea name="r"></textarea><div class="richtext-preview"></div></div>`)
	p.SetUp(nil, false)
	doc := p.Document()

	n := p.WidgetOf(doc.Find("#n")).(*NumberField)
	assert.Equal(t, 4.5, n.Value())
	n.SetValue(float64(12), false)
	assert.Equal(t, "12", dom.Value(n.Input()))
	n.SetValue("twelve", false)
	var alerts Alerts
	assert.False(t, n.IsValid(alerts.Add))
	require.Len(t, alerts, 1)
	assert.Equal(t, "value must be a number", alerts[0].Message)

	alerts = nil
	n.ValidationReset()
	assert.False(t, n.Validate(alerts.Add))
	require.Len(t, alerts, 1, "a direct Validate delivers the number alert")
	assert.Equal(t, "value must be a number", alerts[0].Message)
	assert.Equal(t, "twelve", alerts[0].Hint)
	assert.False(t, n.IsValid(alerts.Add))
	assert.Len(t, alerts, 1)

	c := p.WidgetOf(doc.Find("#c")).(*Checkbox)
	assert.Equal(t, false, c.Value())
	c.SetValue(true, false)
	assert.Equal(t, true, c.Value())
	c.SetValue("false", false)
	assert.Equal(t, false, c.Value())

	s := p.WidgetOf(doc.Find("#s")).(*SelectField)
	assert.Equal(t, "a", s.Value())
	s.SetValue("b", false)
	assert.Equal(t, "b", s.Value())
	assert.Equal(t, []string{"a", "b"}, s.Options())

	r := p.WidgetOf(doc.Find("#r")).(*RichText)
	r.SetValue("<p> </p>", false)
	assert.False(t, r.Validate(nil), "markup alone is no value")
	r.SetValue("<p>text</p>", false)
	assert.True(t, r.Validate(nil))
	assert.Equal(t, "<p>text</p>", r.Value())
	assert.Equal(t, 1, doc.Find(".richtext-preview p").Length())
}

func TestFormWidget(t *testing.T) {
	p := newPage(t, `
		<form class="widget-form" name="props">
			<div class="form-group"><div id="t" class="widget text-field-widget" data-rules="required"><input name="title"></div></div>
			<div class="form-group"><div id="d" class="widget text-field-widget" data-name="desc"><textarea name="./desc"></textarea></div></div>
			<div class="form-group"><div id="c" class="widget checkbox-widget"><input type="checkbox" name="enabled" checked></div></div>
		</form>`)
	p.SetUp(nil, false)
	form := p.WidgetOf(p.Document().Find("form")).(*FormWidget)
	assert.Len(t, form.Fields(), 3)
	assert.Same(t, form, textField(t, p, "#t").Form())

	var alerts Alerts
	assert.False(t, form.Validate(alerts.Add))
	assert.Len(t, alerts, 1)

	form.SetValue(map[string]interface{}{"title": "Hello", "desc": "text"}, false)
	assert.True(t, form.Validate(nil))
	assert.Equal(t, map[string]interface{}{"title": "Hello", "desc": "text", "enabled": true}, form.Values())

	form.Reset()
	assert.Equal(t, map[string]interface{}{"title": "", "desc": "", "enabled": false}, form.Values())

	form.ReadOnly()
	assert.Equal(t, 3, p.Document().Find("[disabled]").Length())
}

func TestRelease(t *testing.T) {
	p := newPage(t, `<div id="box"><div id="w" class="widget text-field-widget"><input name="x"></div></div>`)
	p.SetUp(nil, false)
	box := p.Document().Find("#box")
	require.Len(t, p.Widgets(box), 1)
	p.Release(box)
	assert.Empty(t, p.Widgets(box))
	assert.Nil(t, p.WidgetOf(p.Document().Find("#w")))
}

func TestTruthy(t *testing.T) {
	for _, v := range []interface{}{nil, false, "", 0, float64(0), []interface{}{}, map[string]interface{}{}} {
		assert.False(t, Truthy(v), "%#v", v)
	}
	for _, v := range []interface{}{true, "x", 1, 0.5, []interface{}{nil}, map[string]interface{}{"a": nil}} {
		assert.True(t, Truthy(v), "%#v", v)
	}
}
