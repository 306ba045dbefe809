package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userinfoURL is Google's OpenID userinfo endpoint.
const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUser is the portion of the userinfo response we care about.
// Google returns a larger object — we only unmarshal the fields we need.
type GoogleUser struct {
	ID      string `json:"id"`      // Google's account id — stable, never changes
	Email   string `json:"email"`   // primary email for the account
	Name    string `json:"name"`    // display name (may be empty)
	Picture string `json:"picture"` // profile picture URL (may be empty)
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow.
//
// FLOW:
//  1. We redirect the user to Google's authorization endpoint with our
//     ClientID and requested scopes.
//  2. The user approves on Google; Google redirects back to CallbackURL
//     with a short-lived code.
//  3. We exchange the code for an access token (server-to-server, using
//     the ClientSecret — the token never touches the browser).
//  4. We call the userinfo endpoint to get the account profile.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
// callbackURL must exactly match an authorized redirect URI registered in
// the Google Cloud console for this client.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random nonce stored in a short-lived cookie before the
// redirect; the callback handler verifies Google echoed it back. That
// proves the callback belongs to a flow this server started (CSRF check).
//
// prompt=select_account forces the account chooser even when exactly one
// Google session is active, matching the site's sign-in behaviour.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange completes the OAuth flow: trades the authorization code for the
// Google account profile the auth service links or creates an identity from.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// bearer token to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gu.ID == "" || gu.Email == "" {
		return nil, fmt.Errorf("auth: Google returned an incomplete profile")
	}

	return &gu, nil
}
