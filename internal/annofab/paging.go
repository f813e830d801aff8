package annofab

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
)

// PageLimit is the page size used by every list call.
const PageLimit = 200

// getAll reads every page of a list endpoint.
func getAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	q := url.Values{}
	maps.Copy(q, query)
	q.Set("limit", strconv.Itoa(PageLimit))

	var all []T
	warned := false
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		var r schema.ListResponse[T]
		if err := c.doJSON(ctx, http.MethodGet, path, q, nil, &r); err != nil {
			return nil, err
		}
		if r.OverLimit && !warned {
			warned = true
			contract.LogWarn(fmt.Sprintf("Listing %s", path),
				fmt.Errorf("result exceeds the API limit of 10000 items; narrow the query to see everything (total_count=%d)", r.TotalCount))
		}
		all = append(all, r.List...)
		if len(r.List) == 0 || len(all) >= r.TotalCount {
			return all, nil
		}
	}
}
