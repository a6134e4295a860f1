package graph

import (
	"context"
	"fmt"
)

// DefaultPageSize is the limit used when no explicit page size is given.
const DefaultPageSize = 100

// PageInfo mirrors the cursor envelope MO attaches to paged collections.
type PageInfo struct {
	NextCursor *string `json:"next_cursor"`
}

type page struct {
	Objects  []map[string]any `json:"objects"`
	PageInfo PageInfo         `json:"page_info"`
}

// Paginator walks a cursor-paginated MO query. The document must accept
// $limit and $cursor variables and select page_info { next_cursor } under
// the root field, following MO's pagination convention:
//
//	query Employees($limit: int, $cursor: Cursor) {
//	  employees(limit: $limit, cursor: $cursor) {
//	    objects { uuid }
//	    page_info { next_cursor }
//	  }
//	}
//
// Paginator is not safe for concurrent use.
type Paginator struct {
	client    *Client
	query     string
	root      string
	variables map[string]any
	limit     int
	cursor    *string
	done      bool
}

// Paginate prepares a paginator for the query rooted at the given field.
// Extra variables are passed through on every page.
func (c *Client) Paginate(query, root string, variables map[string]any, limit int) *Paginator {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Paginator{
		client:    c,
		query:     query,
		root:      root,
		variables: variables,
		limit:     limit,
	}
}

// More reports whether another page is available. It returns true before
// the first fetch.
func (p *Paginator) More() bool {
	return !p.done
}

// Next fetches the following page and returns its objects. The server
// signals exhaustion with a null cursor, which terminates the walk.
func (p *Paginator) Next(ctx context.Context) ([]map[string]any, error) {
	if p.done {
		return nil, nil
	}

	vars := make(map[string]any, len(p.variables)+2)
	for k, v := range p.variables {
		vars[k] = v
	}
	vars["limit"] = p.limit
	vars["cursor"] = p.cursor

	var result map[string]page
	if err := p.client.Execute(ctx, p.query, vars, &result); err != nil {
		p.done = true
		return nil, err
	}

	pg, ok := result[p.root]
	if !ok {
		p.done = true
		return nil, fmt.Errorf("paginate: response has no %q field", p.root)
	}

	p.cursor = pg.PageInfo.NextCursor
	if p.cursor == nil {
		p.done = true
	}
	return pg.Objects, nil
}

// All drains the paginator and returns every object across all pages.
func (p *Paginator) All(ctx context.Context) ([]map[string]any, error) {
	var objs []map[string]any
	for p.More() {
		pageObjs, err := p.Next(ctx)
		if err != nil {
			return objs, err
		}
		objs = append(objs, pageObjs...)
	}
	return objs, nil
}
