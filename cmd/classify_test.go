package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxsort/internal/email"
)

// newChatServer answers every chat completion with reply.
func newChatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifyCmd(t *testing.T) {
	srv := newChatServer(t, "Here you go:\n```json\n[{\"id\":\"m1\",\"from\":\"a@x.com\",\"snippet\":\"50% off\",\"category\":\"Promotions\"}]\n```")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("OPENAI_API_KEY", "")

	input := `{"emails":[{"id":"m1","from":"a@x.com","snippet":"50% off"}]}`
	out, err := runCLI(t, input, "classify", "--openai-key", "sk-test")
	require.NoError(t, err)

	var got struct {
		Classified []email.Classified `json:"classified"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Classified, 1)
	assert.Equal(t, "m1", got.Classified[0].ID)
	assert.Equal(t, "Promotions", got.Classified[0].Category)
}

func TestClassifyCmd_KeyFromEnv(t *testing.T) {
	srv := newChatServer(t, `[{"id":"m1","from":"a@x.com","snippet":"hi"}]`)
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "emails.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"m1","from":"a@x.com","snippet":"hi"}]`), 0o600))

	out, err := runCLI(t, "", "classify", "--input", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"category": "General"`)
}

func TestClassifyCmd_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := runCLI(t, `[]`, "classify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY is required")
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []email.Record
		wantErr bool
	}{
		{
			name:  "bare array",
			input: `[{"id":"m1","from":"a@x.com","snippet":"hi"}]`,
			want:  []email.Record{{ID: "m1", From: "a@x.com", Snippet: "hi"}},
		},
		{
			name:  "fetch document",
			input: "  {\"emails\":[{\"id\":\"m2\"}]}\n",
			want:  []email.Record{{ID: "m2"}},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  []email.Record{},
		},
		{name: "empty input", input: "   ", wantErr: true},
		{name: "object without emails", input: `{"messages":[]}`, wantErr: true},
		{name: "malformed", input: `[{"id":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRecords([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
