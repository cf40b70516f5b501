// Package google implements the Google OAuth2 authorization-code handoff.
//
// The server redirects the user to Google's consent page, exchanges the
// returned code for tokens, and hands the access token to the frontend. No
// token is stored server side.
package google
