package worker

import (
	"fmt"

	"github.com/gogs/go-gogs-client"
)

// TokenName is the name of the access tokens created on behalf of users.
const TokenName = "console"

// Client is an authenticated client for the repository server.
type Client struct {
	*gogs.Client
	Server   string
	UserName string
	Token    string
}

// NewClient returns a client for the user on server authenticated with token.
func NewClient(server, username, token string) *Client {
	return &Client{
		Client:   gogs.NewClient(server, token),
		Server:   server,
		UserName: username,
		Token:    token,
	}
}

// Login authenticates with username and password on server and returns a
// client using an access token of the user.  An existing token is reused;
// otherwise a new one is created.
func Login(server, username, password string) (*Client, error) {
	anon := gogs.NewClient(server, "")
	tokens, err := anon.ListAccessTokens(username, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	var token *gogs.AccessToken
	if len(tokens) > 0 {
		token = tokens[0]
	} else {
		token, err = anon.CreateAccessToken(username, password, gogs.CreateAccessTokenOption{Name: TokenName})
		if err != nil {
			return nil, fmt.Errorf("failed to create access token: %w", err)
		}
	}
	return NewClient(server, username, token.Sha1), nil
}
