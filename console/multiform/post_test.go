package multiform

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/G-Node/console/console/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupsForm = `
<form class="widget-form">
	<div class="widget checkbox-widget"><input type="checkbox" name="notify"></div>
	<div class="widget multi-form-widget" data-name="groups" data-name-widget=".name-widget">
		<div class="multi-form-item">
			<div class="widget text-field-widget name-widget"><input name="title"></div>
			<div class="widget multi-form-widget" data-name="members">
				<div class="multi-form-item"><div class="widget text-field-widget"><input name="member"></div></div>
			</div>
		</div>
	</div>
</form>`

func prepared(t *testing.T, markup string) (*widget.Page, *widget.FormWidget) {
	p, _ := newMultiForm(t, markup)
	form, ok := p.WidgetOf(p.Document().Find("form")).(*widget.FormWidget)
	require.True(t, ok)
	form.Prepare()
	return p, form
}

func TestDecode(t *testing.T) {
	p, form := prepared(t, filtersForm)
	post := url.Values{
		"_item:filters":         {"a", "filter-1", "c"},
		"filters/a/name":        {"a"},
		"filters/a/path":        {"/a"},
		"filters/filter-1/name": {""},
		"filters/filter-1/path": {"/x"},
		"filters/c/name":        {"c"},
		"filters/c/path":        {"/c"},
		"_current:filters":      {"2"},
	}
	require.NoError(t, Decode(p, p.Document().Selection, post))

	mf := Find(p, form.Element(), "filters")
	require.NotNil(t, mf)
	assert.Equal(t, []interface{}{filter("a", "/a"), filter("", "/x"), filter("c", "/c")}, mf.Value())
	assert.Equal(t, 2, mf.Current().Index())

	// names follow the decoded values on the next prepare
	mf.Items()[2].SetValue(filter("d", "/c"), false)
	form.Prepare()
	assert.Equal(t, 1, p.Document().Find(`input[name="filters/d/path"]`).Length())
	assert.Equal(t, "d", mf.Items()[2].Element().ChildrenFiltered(KeySelector).AttrOr("value", ""))
}

func TestDecodeEmptyPost(t *testing.T) {
	p, form := prepared(t, filtersForm)
	mf := Find(p, form.Element(), "filters")
	mf.SetValue([]interface{}{filter("a", ""), filter("b", "")}, false)
	form.Prepare()

	require.NoError(t, Decode(p, form.Element(), url.Values{}))
	assert.Equal(t, 1, mf.Len())
	assert.Equal(t, []interface{}{}, mf.Value())
}

func TestDecodeNested(t *testing.T) {
	p, form := prepared(t, groupsForm)
	post := url.Values{
		"notify":                          {"on"},
		"_item:groups":                    {"g1", "g2"},
		"groups/g1/title":                 {"g1"},
		"_item:groups/g1/members":         {"item-0", "item-1"},
		"groups/g1/members/item-0/member": {"x"},
		"groups/g1/members/item-1/member": {"y"},
		"groups/g2/title":                 {"g2"},
		"_item:groups/g2/members":         {"item-0"},
		"groups/g2/members/item-0/member": {"z"},
		"groups/g2/members/item-9/member": {"ignored"},
		"_current:groups/g1/members":      {"1"},
	}
	require.NoError(t, Decode(p, form.Element(), post))

	values := form.Values()
	assert.Equal(t, true, values["notify"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"title": "g1", "members": []interface{}{"x", "y"}},
		map[string]interface{}{"title": "g2", "members": []interface{}{"z"}},
	}, values["groups"])

	members := Find(p, form.Element(), "groups/g1/members")
	require.NotNil(t, members)
	assert.Equal(t, 1, members.Current().Index())

	require.NoError(t, Decode(p, form.Element(), url.Values{}))
	assert.Equal(t, false, form.Values()["notify"])
}

func TestDecodeTooManyItems(t *testing.T) {
	p, form := prepared(t, groupsForm)
	keys := make([]string, MaxItems+1)
	for i := range keys {
		keys[i] = fmt.Sprintf("g%d", i)
	}

	err := Decode(p, form.Element(), url.Values{"_item:groups": keys})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyItems))
	groups := Find(p, form.Element(), "groups")
	require.NotNil(t, groups)
	assert.Equal(t, 1, groups.Len(), "no item is added for a rejected post")

	err = Decode(p, form.Element(), url.Values{
		"_item:groups":            {"g"},
		"_item:groups/g/members": keys,
	})
	assert.True(t, errors.Is(err, ErrTooManyItems), "nested multi-forms are limited too")

	require.NoError(t, Decode(p, form.Element(), url.Values{"_item:groups": keys[:MaxItems]}))
	assert.Equal(t, MaxItems, groups.Len())
}

func TestDecodeRaisesChanged(t *testing.T) {
	p, form := prepared(t, groupsForm)
	notify, ok := p.WidgetOf(form.Element().Find(".checkbox-widget")).(*widget.Checkbox)
	require.True(t, ok)
	var events []interface{}
	notify.OnChanged(func(_ widget.Widget, value interface{}) {
		events = append(events, value)
	})

	require.NoError(t, Decode(p, form.Element(), url.Values{"notify": {"on"}}))
	assert.Equal(t, []interface{}{true}, events)

	require.NoError(t, Decode(p, form.Element(), url.Values{"notify": {"on"}}))
	assert.Len(t, events, 1, "an unchanged value raises no event")

	require.NoError(t, Decode(p, form.Element(), url.Values{}))
	assert.Equal(t, []interface{}{true, false}, events)
}

func TestControl(t *testing.T) {
	p, form := prepared(t, filtersForm)
	root := form.Element()
	mf := Find(p, root, "filters")

	handled, err := Control(p, root, url.Values{"name": {"x"}})
	assert.False(t, handled)
	assert.NoError(t, err)

	handled, err = Control(p, root, url.Values{ActionField: {"filters:add"}})
	assert.True(t, handled)
	require.NoError(t, err)
	assert.Equal(t, 2, mf.Len())

	handled, err = Control(p, root, url.Values{SelectField: {"filters:1"}})
	assert.True(t, handled)
	require.NoError(t, err)
	assert.Equal(t, 1, mf.Current().Index())

	_, err = Control(p, root, url.Values{SelectField: {"filters:one"}})
	assert.Error(t, err)
	_, err = Control(p, root, url.Values{ActionField: {"nothing:add"}})
	assert.Error(t, err)
	_, err = Control(p, root, url.Values{ActionField: {"filters:explode"}})
	assert.Error(t, err)
}

func TestSplitControl(t *testing.T) {
	path, arg := splitControl("groups/g1/members:move-up")
	assert.Equal(t, "groups/g1/members", path)
	assert.Equal(t, "move-up", arg)

	path, arg = splitControl("add")
	assert.Equal(t, "", path)
	assert.Equal(t, "add", arg)
}
