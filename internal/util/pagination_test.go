package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	page, limit := Normalize(0, 0)
	require.Equal(t, 1, page)
	require.Equal(t, DefaultPageSize, limit)

	page, limit = Normalize(-5, 1000)
	require.Equal(t, 1, page)
	require.Equal(t, DefaultPageSize, limit)

	page, limit = Normalize(3, 25)
	require.Equal(t, 3, page)
	require.Equal(t, 25, limit)
}

func TestPaginateInvariants(t *testing.T) {
	cases := []struct {
		total int64
		page  int
		limit int
	}{
		{0, 1, 10},
		{1, 1, 10},
		{10, 1, 10},
		{11, 1, 10},
		{11, 2, 10},
		{95, 10, 10},
		{95, 3, 25},
		{7, 4, 2},
	}

	for _, tc := range cases {
		p := Paginate(tc.page, tc.limit, tc.total)

		require.Equal(t, tc.page, p.CurrentPage)
		require.Equal(t, tc.limit, p.ItemsPerPage)
		require.Equal(t, tc.total, p.TotalItems)

		wantPages := int((tc.total + int64(tc.limit) - 1) / int64(tc.limit))
		require.Equal(t, wantPages, p.TotalPages)
		require.Equal(t, int64(tc.page)*int64(tc.limit) < tc.total, p.HasNextPage)
		require.Equal(t, tc.page > 1, p.HasPrevPage)
	}
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, Offset(1, 10))
	require.Equal(t, 10, Offset(2, 10))
	require.Equal(t, 40, Offset(3, 20))
}
