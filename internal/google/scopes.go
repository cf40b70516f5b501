package google

import gmail "google.golang.org/api/gmail/v1"

// DefaultOAuthScopes are requested on the consent screen: read-only Gmail
// access plus the basic OpenID Connect profile.
var DefaultOAuthScopes = []string{
	gmail.GmailReadonlyScope,
	"openid",
	"profile",
	"email",
}
