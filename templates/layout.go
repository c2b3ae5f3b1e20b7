package templates

// Layout is the main site template. It includes the header and footer and
// embeds the content for every other page.
var Layout = `
{{ define "layout" }}
<!DOCTYPE html>
<html>
	<head data-suburl="">
		<link rel="stylesheet" href="/assets/font-awesome-4.6.3/css/font-awesome.min.css">
		<link rel="stylesheet" href="/assets/semantic-2.3.1.min.css">
		<link rel="stylesheet" href="/assets/custom.css">
		<style>
			.split-pane { display: flex; }
			.split-pane.vertical { flex-direction: column; }
			.split-pane-first { flex-grow: 0; flex-shrink: 0; overflow: auto; }
			.split-pane-second { flex: 1 1 0; overflow: auto; }
			.split-pane-divider { flex: 0 0 5px; cursor: col-resize; background: #ddd; }
			.split-pane.vertical > .split-pane-divider { cursor: row-resize; }
			.form-group.has-error label { color: #9f3a38; }
			.multi-form-select.active { background: #2185d0; color: #fff; }
		</style>
		<title>Console</title>
	</head>
	<body>
		<div class="full height">
			<div class="following bar light">
				<div class="ui container">
					<div class="ui grid">
						<div class="column">
							<div class="ui top secondary menu">
								<a class="item" href="/">New</a>
								<a class="item" href="/log">Submissions</a>
								<a class="item" href="/logout">Sign out</a>
							</div>
						</div>
					</div>
				</div>
			</div>
			{{ template "content" . }}
		</div>
		<footer>
			<div class="ui container">
				<div class="ui center links item brand footertext">
					<a href="https://gin.g-node.org/G-Node/Info/wiki/about">About</a>
					<a href="https://gin.g-node.org/G-Node/Info/wiki/imprint">Imprint</a>
					<a href="https://gin.g-node.org/G-Node/Info/wiki/contact">Contact</a>
				</div>
			</div>
		</footer>
	</body>
</html>
{{ end }}
`
