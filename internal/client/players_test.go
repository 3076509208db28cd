package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (r *recorder) all() []*http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*http.Request(nil), r.requests...)
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, r)
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestFetchPlayers_SendsAPIKey(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{"data":[{"id":1,"name":"Ana","country":"Brazil"}]}`)

	c := NewClient(srv.URL+"/v1/players?offset=0", "secret-key", 5*time.Second)
	players, err := c.FetchPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 1)

	all := requests.all()
	require.Len(t, all, 1, "exactly one request per fetch")
	req := all[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/v1/players", req.URL.Path)
	assert.Equal(t, "secret-key", req.URL.Query().Get("apikey"))
	assert.Equal(t, "0", req.URL.Query().Get("offset"), "query already in API_URL is kept")
}

func TestFetchPlayers_DecodesPlayers(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{
		"status": "success",
		"data": [
			{"id": "a1", "name": "Ana", "country": "Brazil", "role": "Batter"},
			{"id": 2, "name": "Hans", "country": "Germany"},
			{"id": 3, "name": "Ghost"}
		]
	}`)

	players, err := NewClient(srv.URL, "k", time.Second).FetchPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, "a1", string(players[0].ID))
	assert.Equal(t, "Brazil", players[0].Country)
	assert.Equal(t, "2", string(players[1].ID))
	assert.Equal(t, "", players[2].Country)
}

func TestFetchPlayers_SkipsBadRecords(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"data":[
		{"id":1,"name":"Ana","country":"Brazil"},
		{"id":3,"name":7,"country":"Germany"},
		{"id":4,"name":"Lea","country":["France"]},
		"not a player",
		{"id":5,"name":"Hans","country":"Germany"}
	]}`)

	players, err := NewClient(srv.URL, "k", time.Second).FetchPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Ana", players[0].Name)
	assert.Equal(t, "Hans", players[1].Name)
}

func TestFetchPlayersGroupedByCountry_BadRecordKeepsGoodGroups(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"data":[
		{"id":1,"name":"Ana","country":"Brazil"},
		{"id":3,"name":7,"country":"Germany"}
	]}`)

	groups := NewClient(srv.URL, "k", time.Second).FetchPlayersGroupedByCountry(context.Background())
	require.Len(t, groups, 1)
	require.Len(t, groups["Brazil"], 1)
	assert.Equal(t, "Ana", groups["Brazil"][0].Name)
}

func TestFetchPlayers_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"data":[]}`, ErrNetworkFailure},
		{"unauthorized", http.StatusUnauthorized, `{"reason":"bad key"}`, ErrNetworkFailure},
		{"missing data", http.StatusOK, `{"status":"failure"}`, ErrMalformedResponse},
		{"empty data", http.StatusOK, `{"data":[]}`, ErrMalformedResponse},
		{"null data", http.StatusOK, `{"data":null}`, ErrMalformedResponse},
		{"data not a list", http.StatusOK, `{"data":{"id":1}}`, ErrMalformedResponse},
		{"not json", http.StatusOK, `<html>oops</html>`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)

			_, err := NewClient(srv.URL, "k", time.Second).FetchPlayers(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchPlayers_TransportError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	srv.Close()

	_, err := NewClient(srv.URL, "k", time.Second).FetchPlayers(context.Background())
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestFetchPlayersGroupedByCountry(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"data":[
		{"id":1,"name":"Ana","country":"Brazil"},
		{"id":2,"name":"Hans","country":"Germany"},
		{"id":3,"name":"Nobody"},
		{"id":4,"name":"Bia","country":"Brazil"}
	]}`)

	groups := NewClient(srv.URL, "k", time.Second).FetchPlayersGroupedByCountry(context.Background())

	require.Len(t, groups, 2)
	require.Len(t, groups["Brazil"], 2)
	assert.Equal(t, "Ana", groups["Brazil"][0].Name)
	assert.Equal(t, "Bia", groups["Brazil"][1].Name)
	assert.Len(t, groups["Germany"], 1)
}

func TestFetchPlayersGroupedByCountry_FailuresYieldEmpty(t *testing.T) {
	for _, tc := range []struct {
		status int
		body   string
	}{
		{http.StatusBadGateway, `{}`},
		{http.StatusOK, `{"data":[]}`},
		{http.StatusOK, `{"message":"no data"}`},
	} {
		srv, _ := newTestServer(t, tc.status, tc.body)

		groups := NewClient(srv.URL, "k", time.Second).FetchPlayersGroupedByCountry(context.Background())
		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	}
}
