// Package gmail fetches recent inbox messages from the Gmail API and reduces
// them to email.Record values.
//
// A Fetcher is stateless: every call receives the caller's OAuth access token
// and builds a short-lived Gmail client for it. The token is never stored.
//
// Fetching is a single listing call followed by one detail request per
// listed id, issued sequentially in listing order. A failed detail request
// drops that message from the result and is logged; it never fails the batch.
// A failed listing call fails the whole fetch.
//
// Example usage:
//
//	fetcher := gmail.NewFetcher(gmail.ClientConfig{})
//	records, err := fetcher.Fetch(ctx, accessToken, 15)
//	if err != nil {
//	    var fe *gmail.FetchError
//	    if errors.As(err, &fe) && fe.Kind == gmail.KindMissingToken {
//	        // reject the request
//	    }
//	    return err
//	}
package gmail
