package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchResultsMergesBothStages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/results/group":
			w.Write([]byte(`[{"match_id":"g-1","status":"FINISHED","home_score":2,"away_score":1}]`))
		case "/v1/results/knockout":
			w.Write([]byte(`[{"match_id":"k-49","status":"SCHEDULED","home_score":null,"away_score":null}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	updates, err := client.FetchResults(context.Background())
	require.NoError(t, err)
	require.Len(t, updates, 2)

	byID := map[string]MatchUpdate{}
	for _, u := range updates {
		byID[u.ExternalID] = u
	}

	group := byID["g-1"]
	assert.Equal(t, "FINISHED", group.Status)
	require.NotNil(t, group.HomeScore)
	assert.Equal(t, 2, *group.HomeScore)

	knockout := byID["k-49"]
	assert.Equal(t, "SCHEDULED", knockout.Status)
	assert.Nil(t, knockout.HomeScore)
	assert.Nil(t, knockout.AwayScore)
}

func TestFetchResultsNoAuthHeaderWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	updates, err := client.FetchResults(context.Background())
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestFetchResultsPropagatesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/results/knockout" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.FetchResults(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchResultsRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.FetchResults(context.Background())
	require.Error(t, err)
}
