package templates

// Form renders a form.Form in the widget markup: every element becomes a
// widget element inside a .form-group, lists of items become multi-forms.
const Form = `
{{ define "content" }}
			<div class="consoleform split-pane {{.pane.Orientation}}" data-pane="{{.pane.Name}}">
				<div class="split-pane-first" style="flex-basis: {{.pane.FirstPercent}}%">
					<form class="widget-form ui form" name="{{.form.Name}}" action="{{if .action}}{{.action}}{{else}}/{{end}}" method="post">
						<input type="hidden" name="_csrf" value="">
						<h3 class="ui top attached header">
							{{.form.Name}}
						</h3>
						{{with .form.Description}}<p class="form-description">{{.}}</p>{{end}}
						<div class="form-alerts">{{template "alerts" .alerts}}</div>
						{{range $page := .form.Pages}}
							<div class="ui attached segment form-page">
								{{with $page.Description}}<p class="page-description">{{.}}</p>{{end}}
								{{range $elem := $page.Elements}}
									{{template "element" $elem}}
								{{end}}
							</div>
						{{end}}
						{{if not .readonly}}
							<div class="inline field">
								<label></label>
								<button class="ui green button" type="submit">Submit</button>
							</div>
						{{end}}
						{{if .submit_time}}
							<div>
								Submitted {{.submit_time}}
							</div>
							<div>
								{{if .end_time}}
									Finished {{.end_time}}
								{{else}}
									In queue
								{{end}}
							</div>
						{{end}}
					</form>
				</div>
				<div class="split-pane-divider"></div>
				<div class="split-pane-second">
					{{range .messages}}
						<div class="message">{{.}}</div>
					{{end}}
					{{if .error}}
						<div class="message error">{{.error}}</div>
					{{end}}
				</div>
			</div>
{{ end }}

{{ define "alerts" }}
	{{range .}}
		<div class="alert alert-{{.Type}}"><strong>{{.Label}}</strong> {{.Message}}{{if .Hint}} <code>{{.Hint}}</code>{{end}}</div>
	{{end}}
{{ end }}

{{ define "element" }}
	{{if .IsMultiForm}}
		<div class="form-group">
			<label>{{.Label}}</label>
			<div class="widget multi-form-widget {{.Class}}" data-name="{{.Name}}" data-label="{{.Label}}" {{if .NameField}}data-name-widget=".name-widget"{{end}} {{with .ItemPrefix}}data-item-prefix="{{.}}"{{end}}>
				<div class="multi-form-item">
					<button type="submit" class="multi-form-select ui mini button" name="_select" title="Select">&#9656;</button>
					{{range $item := .ItemElements}}
						{{template "element" $item}}
					{{end}}
				</div>
			</div>
			<span class="help">{{.Description}}</span>
		</div>
	{{else}}
		<div class="form-group inline {{if .Required}}required{{end}} field">
			<label {{with .ID}}for="{{.}}"{{end}}>{{.Label}}</label>
			<div class="widget {{.WidgetClass}} {{.Class}}" data-label="{{.Label}}" {{with .Pattern}}data-pattern="{{.}}"{{end}} {{with .PatternHint}}data-pattern-hint="{{.}}"{{end}} {{with .RuleSet}}data-rules="{{.}}"{{end}} {{if .IsHidden}}hidden{{end}}>
				{{if eq .WidgetClass "select-widget"}}
					<select {{with .ID}}id="{{.}}"{{end}} name="{{.Name}}" {{if .ReadOnly}}readonly{{end}}>
						{{range $opt := .ValueList}}
							<option value="{{$opt}}" {{if eq $opt $.Value}}selected{{end}}>{{$opt}}</option>
						{{end}}
					</select>
				{{else if eq .WidgetClass "checkbox-widget"}}
					<input type="checkbox" {{with .ID}}id="{{.}}"{{end}} name="{{.Name}}" {{if .Checked}}checked{{end}} {{if .ReadOnly}}readonly{{end}}>
				{{else if eq .WidgetClass "richtext-widget"}}
					<textarea {{with .ID}}id="{{.}}"{{end}} name="{{.Name}}" {{if .ReadOnly}}readonly{{end}}>{{.Value}}</textarea>
					<div class="richtext-preview"></div>
				{{else if eq .Type "textarea"}}
					<textarea {{with .ID}}id="{{.}}"{{end}} name="{{.Name}}" {{if .ReadOnly}}readonly{{end}}>{{.Value}}</textarea>
				{{else}}
					<input type="{{.InputType}}" {{with .ID}}id="{{.}}"{{end}} name="{{.Name}}" value="{{.Value}}" {{if .ReadOnly}}readonly{{end}} {{if and .ValueList .ID}}list="{{.ID}}-options"{{end}}>
					{{if and .ValueList .ID}}
						<datalist id="{{.ID}}-options">
							{{range $opt := .ValueList}}
								<option value="{{$opt}}">
							{{end}}
						</datalist>
					{{end}}
				{{end}}
			</div>
			<span class="help">{{.Description}}</span>
		</div>
	{{end}}
{{ end }}
`
