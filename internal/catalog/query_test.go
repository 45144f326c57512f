package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryEncode(t *testing.T) {
	testCases := []struct {
		name     string
		query    Query
		expected string
	}{
		{
			name:     "defaults only send paging",
			query:    Query{Limit: 24},
			expected: "skip=0&limit=24",
		},
		{
			name:     "category on first page",
			query:    Query{Category: "seeds", Skip: 0, Limit: 24},
			expected: "category=seeds&skip=0&limit=24",
		},
		{
			name:     "category on second page",
			query:    Query{Category: "seeds", Skip: 24, Limit: 24},
			expected: "category=seeds&skip=24&limit=24",
		},
		{
			name:     "text is trimmed",
			query:    Query{Text: "  tomato ", Limit: 24},
			expected: "q=tomato&skip=0&limit=24",
		},
		{
			name:     "blank text is omitted",
			query:    Query{Text: "   ", Limit: 24},
			expected: "skip=0&limit=24",
		},
		{
			name:     "newest sort is the default and omitted",
			query:    Query{Sort: SortNewest, Limit: 24},
			expected: "skip=0&limit=24",
		},
		{
			name: "every dimension in fixed order",
			query: Query{
				Text:     "rose",
				Category: "seeds",
				Supplier: "Agro Ltd",
				MinPrice: "10",
				MaxPrice: "99.5",
				Sort:     SortPriceDesc,
				Skip:     48,
				Limit:    24,
			},
			expected: "q=rose&category=seeds&supplier=Agro+Ltd&min_price=10&max_price=99.5&sort=price_desc&skip=48&limit=24",
		},
		{
			name:     "malformed price passes through verbatim",
			query:    Query{MinPrice: "abc", Limit: 24},
			expected: "min_price=abc&skip=0&limit=24",
		},
		{
			name:     "missing limit falls back to page size",
			query:    Query{Skip: -5},
			expected: "skip=0&limit=24",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.query.Encode())
		})
	}
}

func TestParseSortKey(t *testing.T) {
	testCases := []struct {
		raw      string
		expected SortKey
		wantErr  bool
	}{
		{raw: "", expected: SortNewest},
		{raw: "new", expected: SortNewest},
		{raw: "PRICE_ASC", expected: SortPriceAsc},
		{raw: " price_desc ", expected: SortPriceDesc},
		{raw: "name_asc", expected: SortNameAsc},
		{raw: "popular", expected: SortNewest, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			key, err := ParseSortKey(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tc.expected, key)
		})
	}
}

func TestSortKeyLabels(t *testing.T) {
	seen := map[string]bool{}
	for _, key := range SortKeys() {
		assert.True(t, key.Valid())
		label := key.Label()
		assert.NotEmpty(t, label)
		assert.False(t, seen[label], "duplicate label %q", label)
		seen[label] = true
	}

	assert.False(t, SortKey("bogus").Valid())
}
