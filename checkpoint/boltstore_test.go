package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "weights.db")

	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	registerAB(t, store)
	require.NoError(t, store.SetWeights(catAssets, []WeightEntry{entry(addrA, "0.6"), entry(addrB, "0.4")}, 100))
	require.NoError(t, store.SetWeights(catAssets, []WeightEntry{entry(addrA, "0.7"), entry(addrB, "0.3")}, 200))
	require.NoError(t, store.Close())

	reopened, err := OpenBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	assert.Equal(t, "0.6", weightAt(t, reopened, addrA, 150))
	assert.Equal(t, "0.7", weightAt(t, reopened, addrA, 250))

	assets, err := reopened.Assets(catAssets)
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	err = reopened.RegisterAsset(catAssets, addrA, "again")
	assert.ErrorIs(t, err, ErrDuplicateAsset)
}

func TestBoltStore_CachesOnlySupersededSnapshots(t *testing.T) {
	store := tempBoltStore(t)
	registerAB(t, store)
	require.NoError(t, store.SetWeights(catAssets, []WeightEntry{entry(addrA, "0.6"), entry(addrB, "0.4")}, 100))

	_, err := store.WeightsAt(catAssets, 150)
	require.NoError(t, err)
	assert.False(t, store.cache.Contains(snapshotKey{category: catAssets, seq: 1}), "latest checkpoint is mutable")

	// An in-place update of the latest checkpoint must be visible.
	require.NoError(t, store.SetWeights(catAssets, []WeightEntry{entry(addrA, "0.5"), entry(addrB, "0.5")}, 100))
	weights, err := store.WeightsAt(catAssets, 150)
	require.NoError(t, err)
	assert.Equal(t, "0.5", fixedpoint.Format(weights[addrA]))

	require.NoError(t, store.SetWeights(catAssets, []WeightEntry{entry(addrA, "0.1"), entry(addrB, "0.9")}, 200))
	weights, err = store.WeightsAt(catAssets, 150)
	require.NoError(t, err)
	assert.Equal(t, "0.5", fixedpoint.Format(weights[addrA]))
	assert.True(t, store.cache.Contains(snapshotKey{category: catAssets, seq: 1}))
}

func TestNewBoltStore_SharedDB(t *testing.T) {
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "shared.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewBoltStore(db)
	require.NoError(t, err)
	registerAB(t, store)

	// Close on a borrowed database is a no-op.
	require.NoError(t, store.Close())
	_, err = store.Asset(addrA)
	assert.NoError(t, err)
}
