package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	opts, err := Parse(map[string]string{})
	require.NoError(t, err)
	require.Equal(t, int64(DefaultLimit), opts.Limit)
	require.Equal(t, int64(0), opts.Skip)
	require.Equal(t, []SortField{{Key: "createdAt", Desc: true}}, opts.Sort)
	require.Empty(t, opts.Filter)
}

func TestParseFilterAndPagination(t *testing.T) {
	opts, err := Parse(map[string]string{
		"status": "pending",
		"page":   "3",
		"limit":  "5",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"status": "pending"}, opts.Filter)
	require.Equal(t, int64(5), opts.Limit)
	require.Equal(t, int64(10), opts.Skip)
}

func TestParseSortAndFields(t *testing.T) {
	opts, err := Parse(map[string]string{
		"sort":   "-totalPrice,createdAt",
		"fields": "userEmail, totalPrice",
	})
	require.NoError(t, err)
	require.Equal(t, []SortField{{Key: "totalPrice", Desc: true}, {Key: "createdAt"}}, opts.Sort)
	require.Equal(t, []string{"userEmail", "totalPrice"}, opts.Fields)
}

func TestParseRejectsBadPagination(t *testing.T) {
	_, err := Parse(map[string]string{"page": "zero"})
	require.Error(t, err)

	_, err = Parse(map[string]string{"limit": "-2"})
	require.Error(t, err)

	_, err = Parse(map[string]string{"page": "0"})
	require.Error(t, err)
}
