package widget

// Defaults registers the standard widget types.
func Defaults(r *Registry) {
	r.Register(TextFieldSelector, NewTextField, nil)
	r.Register(NumberFieldSelector, NewNumberField, nil)
	r.Register(CheckboxSelector, NewCheckbox, nil)
	r.Register(SelectSelector, NewSelectField, nil)
	r.Register(RichTextSelector, NewRichText, Options{"afterClone": Hook(dropPreview)})
	r.Register(FormSelector, NewFormWidget, nil)
}
