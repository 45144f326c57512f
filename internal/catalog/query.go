package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of products requested per page.
const DefaultPageSize = 24

// MaxPageSize is the largest limit the catalog accepts.
const MaxPageSize = 200

// Query is a single listing request. Empty text fields are left out of the
// request entirely; Skip and Limit are always sent.
type Query struct {
	Text     string
	Category string
	Supplier string
	MinPrice string
	MaxPrice string
	Sort     SortKey
	Skip     int
	Limit    int
}

type param struct {
	key   string
	value string
}

func (q Query) params() []param {
	var out []param

	add := func(key, value string) {
		if value != "" {
			out = append(out, param{key: key, value: value})
		}
	}

	add("q", strings.TrimSpace(q.Text))
	add("category", q.Category)
	add("supplier", q.Supplier)
	add("min_price", q.MinPrice)
	add("max_price", q.MaxPrice)

	if q.Sort != "" && q.Sort != SortNewest {
		add("sort", string(q.Sort))
	}

	skip := q.Skip
	if skip < 0 {
		skip = 0
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	out = append(out,
		param{key: "skip", value: strconv.Itoa(skip)},
		param{key: "limit", value: strconv.Itoa(limit)},
	)

	return out
}

// Encode renders the query string with parameters in a stable, readable order
// (q, category, supplier, min_price, max_price, sort, skip, limit).
func (q Query) Encode() string {
	var b strings.Builder

	for i, p := range q.params() {
		if i > 0 {
			b.WriteByte('&')
		}

		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}

	return b.String()
}
