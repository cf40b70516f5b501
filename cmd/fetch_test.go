package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxsort/internal/email"
)

func newGmailServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}},
		})
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/gmail/v1/users/me/messages/"):]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      id,
			"snippet": "snippet " + id,
			"payload": map[string]any{
				"headers": []map[string]string{{"name": "From", "value": id + "@example.com"}},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCmd(t *testing.T) {
	srv := newGmailServer(t)
	t.Setenv("GMAIL_ENDPOINT", srv.URL+"/")

	out, err := runCLI(t, "", "fetch", "--access-token", "tok", "--count", "2")
	require.NoError(t, err)

	var got struct {
		Emails []email.Record `json:"emails"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []email.Record{
		{ID: "m1", From: "m1@example.com", Snippet: "snippet m1"},
		{ID: "m2", From: "m2@example.com", Snippet: "snippet m2"},
	}, got.Emails)
}

func TestFetchCmd_Validation(t *testing.T) {
	_, err := runCLI(t, "", "fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--access-token is required")

	_, err = runCLI(t, "", "fetch", "--access-token", "tok", "--count", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count must be a positive integer")
}
