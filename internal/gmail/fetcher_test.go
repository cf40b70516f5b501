package gmail

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/teemow/inboxsort/internal/email"
)

// fakeService is an in-memory MessageService that counts calls.
type fakeService struct {
	mu sync.Mutex

	ids      []string
	listErr  error
	messages map[string]*gmail.Message
	getErrs  map[string]error
	// ignoreMax makes the listing return every id regardless of maxResults.
	ignoreMax bool

	listCalls    int
	lastMax      int64
	getCallOrder []string
}

func (f *fakeService) ListMessageIDs(_ context.Context, maxResults int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastMax = maxResults
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := f.ids
	if !f.ignoreMax && int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

func (f *fakeService) GetMessage(_ context.Context, id string) (*gmail.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCallOrder = append(f.getCallOrder, id)
	if err := f.getErrs[id]; err != nil {
		return nil, err
	}
	return f.messages[id], nil
}

func message(from, snippet string) *gmail.Message {
	msg := &gmail.Message{Snippet: snippet, Payload: &gmail.MessagePart{}}
	if from != "" {
		msg.Payload.Headers = []*gmail.MessagePartHeader{{Name: "From", Value: from}}
	}
	return msg
}

func newTestFetcher(svc *fakeService, factoryCalls *int) *Fetcher {
	return NewFetcher(ClientConfig{}, WithServiceFactory(func(context.Context, string) (MessageService, error) {
		if factoryCalls != nil {
			*factoryCalls++
		}
		return svc, nil
	}))
}

func TestFetch_Success(t *testing.T) {
	svc := &fakeService{
		ids: []string{"m1", "m2"},
		messages: map[string]*gmail.Message{
			"m1": message("a@x.com", "Meeting at 3"),
			"m2": message("", "No sender"),
		},
	}

	records, err := newTestFetcher(svc, nil).Fetch(context.Background(), "tok", 2)
	require.NoError(t, err)

	assert.Equal(t, []email.Record{
		{ID: "m1", From: "a@x.com", Snippet: "Meeting at 3"},
		{ID: "m2", From: "", Snippet: "No sender"},
	}, records)
	assert.Equal(t, 1, svc.listCalls)
	assert.Equal(t, int64(2), svc.lastMax)
	assert.Equal(t, []string{"m1", "m2"}, svc.getCallOrder)
}

func TestFetch_DefaultCount(t *testing.T) {
	tests := []struct {
		name  string
		count int64
	}{
		{name: "zero", count: 0},
		{name: "negative", count: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			records, err := newTestFetcher(svc, nil).Fetch(context.Background(), "tok", tt.count)
			require.NoError(t, err)
			assert.Equal(t, DefaultCount, svc.lastMax)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestFetch_MissingToken(t *testing.T) {
	svc := &fakeService{ids: []string{"m1"}}
	factoryCalls := 0

	records, err := newTestFetcher(svc, &factoryCalls).Fetch(context.Background(), "", 5)
	require.Error(t, err)
	assert.Nil(t, records)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindMissingToken, fe.Kind)
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.True(t, IsMissingToken(err))

	assert.Equal(t, 0, factoryCalls)
	assert.Equal(t, 0, svc.listCalls)
	assert.Empty(t, svc.getCallOrder)
}

func TestFetch_SkipsFailedDetails(t *testing.T) {
	svc := &fakeService{
		ids: []string{"m1", "m2", "m3"},
		messages: map[string]*gmail.Message{
			"m1": message("a@x.com", "one"),
			"m3": message("c@x.com", "three"),
		},
		getErrs: map[string]error{
			"m2": &googleapi.Error{Code: 404, Message: "Not Found"},
		},
	}

	records, err := newTestFetcher(svc, nil).Fetch(context.Background(), "tok", 3)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "m1", records[0].ID)
	assert.Equal(t, "m3", records[1].ID)
	assert.Equal(t, []string{"m1", "m2", "m3"}, svc.getCallOrder)
}

func TestFetch_ListFailure(t *testing.T) {
	listErr := &googleapi.Error{Code: 401, Message: "Invalid Credentials"}
	svc := &fakeService{listErr: listErr}

	records, err := newTestFetcher(svc, nil).Fetch(context.Background(), "expired", 5)
	require.Error(t, err)
	assert.Nil(t, records)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindFetchFailed, fe.Kind)
	assert.False(t, IsMissingToken(err))

	var gerr *googleapi.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 401, gerr.Code)
	assert.Empty(t, svc.getCallOrder)
}

func TestFetch_FactoryFailure(t *testing.T) {
	f := NewFetcher(ClientConfig{}, WithServiceFactory(func(context.Context, string) (MessageService, error) {
		return nil, errors.New("boom")
	}))

	_, err := f.Fetch(context.Background(), "tok", 5)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindFetchFailed, fe.Kind)
}

func TestFetch_CanceledContext(t *testing.T) {
	svc := &fakeService{
		ids:      []string{"m1"},
		messages: map[string]*gmail.Message{"m1": message("a@x.com", "one")},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(svc, nil).Fetch(ctx, "tok", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, svc.getCallOrder)
}

func TestPartition(t *testing.T) {
	failure := errors.New("gone")
	outcomes := []Outcome{
		{ID: "a", Record: email.Record{ID: "a"}},
		{ID: "b", Err: failure},
		{ID: "c", Record: email.Record{ID: "c"}},
		{ID: "d", Err: failure},
	}

	records, failures := Partition(outcomes)
	assert.Equal(t, []email.Record{{ID: "a"}, {ID: "c"}}, records)
	require.Len(t, failures, 2)
	assert.Equal(t, "b", failures[0].ID)
	assert.Equal(t, "d", failures[1].ID)

	records, failures = Partition(nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Nil(t, failures)
}

func TestFetchError_Error(t *testing.T) {
	err := &FetchError{Kind: KindFetchFailed, Err: errors.New("boom")}
	assert.Equal(t, "fetch_failed: boom", err.Error())
	assert.Equal(t, "missing_token", (&FetchError{Kind: KindMissingToken}).Error())
}

func TestFetch_TruncatesOversizedListing(t *testing.T) {
	svc := &fakeService{
		ids:       []string{"m1", "m2", "m3", "m4"},
		ignoreMax: true,
		messages: map[string]*gmail.Message{
			"m1": message("a@x.com", "one"),
			"m2": message("b@x.com", "two"),
			"m3": message("c@x.com", "three"),
			"m4": message("d@x.com", "four"),
		},
	}

	records, err := newTestFetcher(svc, nil).Fetch(context.Background(), "tok", 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "m1", records[0].ID)
	assert.Equal(t, "m2", records[1].ID)
	assert.Equal(t, []string{"m1", "m2"}, svc.getCallOrder)
}
