package templates

// Login asks for the credentials of the repository server.  The optional
// error is shown above the submit button.
const Login = `
{{ define "content" }}
			<div class="user signin split-pane-free">
				<div class="ui middle very relaxed page grid">
					<div class="column">
						<form class="ui form" action="/login" method="post" autocomplete="on">
							<h3 class="ui top attached header">
								Sign in with your repository account
							</h3>
							<div class="ui attached segment">
								<div class="form-group required inline field">
									<label for="username">Username or email</label>
									<input id="username" name="username" autofocus required>
								</div>
								<div class="form-group required inline field">
									<label for="password">Password</label>
									<input id="password" name="password" type="password" autocomplete="current-password" required>
								</div>
								{{with .error}}
									<div class="ui negative message alert alert-danger">{{.}}</div>
								{{end}}
								<div class="inline field">
									<label></label>
									<button class="ui green button" type="submit">Sign in</button>
								</div>
							</div>
						</form>
					</div>
				</div>
			</div>
{{ end }}
`
