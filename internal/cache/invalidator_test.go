package cache_test

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archiapp/ticket-reservation/internal/cache"
)

func TestClear_DeletesNamespaceKeys(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inv := cache.NewInvalidator(rdb, "cache")

	keys := []string{"cache:shows:aaa", "cache:shows:bbb"}
	mock.ExpectScan(0, "cache:shows:*", 100).SetVal(keys, 0)
	mock.ExpectDel(keys...).SetVal(2)

	n, err := inv.Clear(context.Background(), cache.NSShows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_EmptyNamespace(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inv := cache.NewInvalidator(rdb, "cache")

	mock.ExpectScan(0, "cache:statistics:*", 100).SetVal([]string{}, 0)

	n, err := inv.Clear(context.Background(), cache.NSStatistics)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearAll_SumsNamespaces(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inv := cache.NewInvalidator(rdb, "cache")

	mock.ExpectScan(0, "cache:shows:*", 100).SetVal([]string{"cache:shows:a"}, 0)
	mock.ExpectDel("cache:shows:a").SetVal(1)
	mock.ExpectScan(0, "cache:reservations:*", 100).SetVal([]string{"cache:reservations:a", "cache:reservations:b"}, 0)
	mock.ExpectDel("cache:reservations:a", "cache:reservations:b").SetVal(2)
	mock.ExpectScan(0, "cache:statistics:*", 100).SetVal([]string{}, 0)

	n, err := inv.ClearAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_NilClientIsNoop(t *testing.T) {
	inv := cache.NewInvalidator(nil, "cache")
	n, err := inv.Clear(context.Background(), cache.NSShows)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Nil receiver too.
	var nilInv *cache.Invalidator
	nilInv.InvalidateShows(context.Background())
}

func TestNamespaces(t *testing.T) {
	assert.Equal(t, []string{"shows", "reservations", "statistics"}, cache.Namespaces())
}
