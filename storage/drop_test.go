package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"dropmint/native/drop"
)

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func TestDropStateRoundTrip(t *testing.T) {
	db := NewMemDB()

	snap, err := LoadDropState(db)
	require.NoError(t, err)
	require.Nil(t, snap, "fresh store should have no snapshot")

	engine := drop.NewEngine(addr(0xdd), drop.SigningDomain{Name: "DropMint", Version: "1", ChainID: 1}, drop.NewRegistry())
	require.NoError(t, engine.Registry().UpdateCreatorPayouts([]drop.CreatorPayout{
		{Address: addr(0xc0), BasisPoints: 10_000},
	}))
	require.NoError(t, SaveDropState(db, engine.Snapshot()))

	snap, err = LoadDropState(db)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Payouts, 1)
}

func TestMintLedgerPersists(t *testing.T) {
	db := NewMemDB()
	ledger, err := NewMintLedger(db, 100)
	require.NoError(t, err)

	wallet := addr(0x0a)
	require.NoError(t, ledger.Record(wallet, 3))
	minted, supply, maxSupply, err := ledger.MintStats(wallet)
	require.NoError(t, err)
	require.Equal(t, uint64(3), minted)
	require.Equal(t, uint64(3), supply)
	require.Equal(t, uint64(100), maxSupply)

	// A reopened ledger restores its counters.
	reopened, err := NewMintLedger(db, 100)
	require.NoError(t, err)
	minted, supply, _, err = reopened.MintStats(wallet)
	require.NoError(t, err)
	require.Equal(t, uint64(3), minted)
	require.Equal(t, uint64(3), supply)
}

func TestOwnershipIndexPersists(t *testing.T) {
	db := NewMemDB()
	index, err := NewOwnershipIndex(db)
	require.NoError(t, err)

	token, owner := addr(0x33), addr(0x0a)
	id := big.NewInt(7)

	_, err = index.OwnerOf(token, id)
	require.Error(t, err, "unregistered token should error")

	require.NoError(t, index.SetOwner(token, id, owner))
	got, err := index.OwnerOf(token, id)
	require.NoError(t, err)
	require.Equal(t, owner, got)

	reopened, err := NewOwnershipIndex(db)
	require.NoError(t, err)
	got, err = reopened.OwnerOf(token, id)
	require.NoError(t, err)
	require.Equal(t, owner, got)
}
