package graph_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magenta-aps/raclients/internal/testserver"
	"github.com/magenta-aps/raclients/pkg/graph"
)

func newAuthedClient(t *testing.T, srv *testserver.Server) *http.Client {
	t.Helper()
	hc, err := srv.AuthConfig().Client(context.Background())
	require.NoError(t, err)
	return hc
}

func TestClient_URL(t *testing.T) {
	hc := &http.Client{}

	assert.Equal(t, "http://mo/graphql", graph.New("http://mo/", hc).URL())
	assert.Equal(t, "http://mo/graphql/v22", graph.New("http://mo", hc, graph.WithVersion(22)).URL())
}

func TestClient_Execute(t *testing.T) {
	srv := testserver.New(t)
	srv.SetGraphQL(func(query string, variables map[string]any) (any, []string) {
		assert.Contains(t, query, "org")
		return map[string]any{
			"org": map[string]any{"uuid": "456362c4-0ee4-4e5e-a72c-751239745e62"},
		}, nil
	})

	client := graph.New(srv.URL, newAuthedClient(t, srv))
	defer client.Close()

	var result struct {
		Org struct {
			UUID string `json:"uuid"`
		} `json:"org"`
	}
	err := client.Execute(context.Background(), `query { org { uuid } }`, nil, &result)
	require.NoError(t, err)
	assert.Equal(t, "456362c4-0ee4-4e5e-a72c-751239745e62", result.Org.UUID)
}

func TestClient_ExecuteVariables(t *testing.T) {
	srv := testserver.New(t)
	srv.SetGraphQL(func(query string, variables map[string]any) (any, []string) {
		assert.Equal(t, "Anders And", variables["name"])
		return map[string]any{"employees": map[string]any{}}, nil
	})

	client := graph.New(srv.URL, newAuthedClient(t, srv), graph.WithVersion(22))
	defer client.Close()

	err := client.Execute(context.Background(),
		`query Employees($name: String!) { employees(filter: {name: $name}) { objects { uuid } } }`,
		map[string]any{"name": "Anders And"}, nil)
	require.NoError(t, err)
}

func TestClient_Query(t *testing.T) {
	srv := testserver.New(t)
	srv.SetGraphQL(func(query string, variables map[string]any) (any, []string) {
		assert.Contains(t, query, "org")
		return map[string]any{
			"org": map[string]any{"uuid": "456362c4-0ee4-4e5e-a72c-751239745e62"},
		}, nil
	})

	client := graph.New(srv.URL, newAuthedClient(t, srv))
	defer client.Close()

	var q struct {
		Org struct {
			UUID string
		}
	}
	err := client.Query(context.Background(), &q, nil)
	require.NoError(t, err)
	assert.Equal(t, "456362c4-0ee4-4e5e-a72c-751239745e62", q.Org.UUID)
}

func TestClient_ExecuteServerErrors(t *testing.T) {
	srv := testserver.New(t)
	srv.SetGraphQL(func(query string, variables map[string]any) (any, []string) {
		return map[string]any{}, []string{"Unknown field 'nonexistent'"}
	})

	client := graph.New(srv.URL, newAuthedClient(t, srv))
	defer client.Close()

	err := client.Execute(context.Background(), `query { nonexistent }`, nil, nil)
	assert.ErrorContains(t, err, "nonexistent")
}

func TestPaginator_WalksAllPages(t *testing.T) {
	pages := map[string][]map[string]any{
		"":        {{"uuid": "a"}, {"uuid": "b"}},
		"cursor1": {{"uuid": "c"}, {"uuid": "d"}},
		"cursor2": {{"uuid": "e"}},
	}
	next := map[string]any{"": "cursor1", "cursor1": "cursor2", "cursor2": nil}

	srv := testserver.New(t)
	srv.SetGraphQL(func(query string, variables map[string]any) (any, []string) {
		cursor, _ := variables["cursor"].(string)
		return map[string]any{
			"employees": map[string]any{
				"objects":   pages[cursor],
				"page_info": map[string]any{"next_cursor": next[cursor]},
			},
		}, nil
	})

	client := graph.New(srv.URL, newAuthedClient(t, srv))
	defer client.Close()

	query := `query Employees($limit: int, $cursor: Cursor) {
		employees(limit: $limit, cursor: $cursor) {
			objects { uuid }
			page_info { next_cursor }
		}
	}`
	pager := client.Paginate(query, "employees", nil, 2)

	objs, err := pager.All(context.Background())
	require.NoError(t, err)
	require.Len(t, objs, 5)
	assert.Equal(t, "a", objs[0]["uuid"])
	assert.Equal(t, "e", objs[4]["uuid"])
	assert.False(t, pager.More())
}

func TestPaginator_MissingRootField(t *testing.T) {
	srv := testserver.New(t)
	srv.SetGraphQL(func(query string, variables map[string]any) (any, []string) {
		return map[string]any{"org_units": map[string]any{}}, nil
	})

	client := graph.New(srv.URL, newAuthedClient(t, srv))
	defer client.Close()

	pager := client.Paginate(`query { org_units { objects { uuid } } }`, "employees", nil, 10)
	_, err := pager.Next(context.Background())
	assert.ErrorContains(t, err, "employees")
	assert.False(t, pager.More())
}
