package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("secret-token", zerolog.Nop(), ClientOptions{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	var gotAuth, gotVersion string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		_, _ = w.Write([]byte(`{"id":"db-1","properties":{}}`))
	}))

	_, err := client.GetDatabase(context.Background(), "db-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, DefaultVersion, gotVersion)
}

func TestClient_QuerySendsFilterAndSort(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/databases/db-1/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"results":[],"has_more":false}`))
	}))

	req := &QueryRequest{
		Filter: CompileFilter([]FilterRule{
			{Property: "Done", Kind: TypeCheckbox, Value: "false"},
		}, FilterAnd),
		Sorts: []Sort{{Timestamp: TimestampCreated, Direction: SortDescending}},
	}
	_, err := client.QueryDatabase(context.Background(), "db-1", req)
	require.NoError(t, err)

	assert.Contains(t, body, "filter")
	sorts, ok := body["sorts"].([]any)
	require.True(t, ok)
	require.Len(t, sorts, 1)
	sort := sorts[0].(map[string]any)
	assert.Equal(t, "created_time", sort["timestamp"])
	assert.Equal(t, "descending", sort["direction"])
}

func TestClient_NotFoundDecodesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","code":"object_not_found","message":"Could not find page"}`))
	}))

	_, err := client.GetPage(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsTerminalLookup(err))
	assert.False(t, IsForbidden(err))
	assert.Contains(t, err.Error(), "Could not find page")
}

func TestClient_ForbiddenUserLookupIsTerminal(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"restricted_resource"}`))
	}))

	_, err := client.GetUser(context.Background(), "u-1")
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.True(t, IsTerminalLookup(err))
}

func TestClient_NonJSONErrorBodyStillYieldsStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))

	_, err := client.GetDatabase(context.Background(), "db-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestClient_ListUsersFollowsPagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		if r.URL.Query().Get("start_cursor") == "" {
			_, _ = w.Write([]byte(`{"results":[{"id":"u1","name":"Aki"}],"has_more":true,"next_cursor":"c2"}`))
			return
		}
		assert.Equal(t, "c2", r.URL.Query().Get("start_cursor"))
		_, _ = w.Write([]byte(`{"results":[{"id":"u2","name":"Ben"}],"has_more":false}`))
	}))

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Aki", users[0].Name)
	assert.Equal(t, "Ben", users[1].Name)
}

func TestClient_UpdatePageSendsPatchBody(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/pages/p-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":"p-1","properties":{}}`))
	}))

	_, err := client.UpdatePage(context.Background(), "p-1", &PageUpdate{
		Properties: map[string]any{"期限": DatePatch("2024-01-05")},
	})
	require.NoError(t, err)

	props := body["properties"].(map[string]any)
	date := props["期限"].(map[string]any)["date"].(map[string]any)
	assert.Equal(t, "2024-01-05", date["start"])
}
