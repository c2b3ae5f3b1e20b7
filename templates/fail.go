package templates

// Fail shows an error status with a message.
var Fail = `
{{ define "content" }}
			<div class="ui container fail">
				<h1>{{ .StatusCode }}: {{ .StatusText }}</h1>
				<div class="ui negative message">
					{{ .Message }}
				</div>
				<a href="/">Back to the form</a>
			</div>
{{ end }}
`
