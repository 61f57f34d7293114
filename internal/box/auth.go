package box

import (
	"context"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSource returns the OAuth2 token source for the configured credentials.
// A developer token takes precedence over client credentials.
// ctx is used for token refreshes and must outlive the returned source.
func (c Config) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	switch {
	case c.DeveloperToken != "":
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.DeveloperToken,
			TokenType:   "Bearer",
		}), nil
	case c.ClientID != "" && c.ClientSecret != "":
		cc := &clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     c.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
			EndpointParams: url.Values{
				"box_subject_type": {c.SubjectType},
				"box_subject_id":   {c.SubjectID},
			},
		}
		return cc.TokenSource(ctx), nil
	default:
		return nil, ErrNoCredentials
	}
}
