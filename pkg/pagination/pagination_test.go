package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(1000))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, 8, LimitWithBuffer(7))
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	id, err := ParseCursor(EncodeCursor(123))
	require.NoError(t, err)
	require.Equal(t, uint64(123), id)

	id, err = ParseCursor("")
	require.NoError(t, err)
	require.Zero(t, id)

	_, err = ParseCursor("@@@")
	require.Error(t, err)
}

func TestTrim(t *testing.T) {
	t.Parallel()

	rows := []uint64{9, 8, 7}
	page := Trim(rows, 2, func(v uint64) uint64 { return v })
	require.Equal(t, []uint64{9, 8}, page.Items)
	require.Equal(t, EncodeCursor(8), page.NextCursor)

	page = Trim(rows[:2], 2, func(v uint64) uint64 { return v })
	require.Empty(t, page.NextCursor)
}
