package badger

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend(nil)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend(nil)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestBackendWithTx(t *testing.T) {
	backend, err := OpenBackend(nil)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	var got []byte
	err = backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte("k"))
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMakeChunkKey_Ordering(t *testing.T) {
	positions := []uint64{0, 1, 255, 256, 65535, 1 << 40}
	for i := 1; i < len(positions); i++ {
		prev := string(makeChunkKey(positions[i-1]))
		next := string(makeChunkKey(positions[i]))
		assert.Less(t, prev, next, "key for %d must sort before %d", positions[i-1], positions[i])
	}
}

func TestEncodeDecodeUint64(t *testing.T) {
	for _, v := range []uint64{0, 1, 1 << 63} {
		assert.Equal(t, v, decodeUint64(encodeUint64(v)))
	}
	assert.Equal(t, uint64(0), decodeUint64([]byte{1, 2}))
}
