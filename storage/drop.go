package storage

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"dropmint/native/drop"
)

var (
	dropStateKey  = []byte("drop/state")
	mintLedgerKey = []byte("drop/ledger")
	ownershipKey  = []byte("drop/owners")
)

// SaveDropState persists an engine snapshot.
func SaveDropState(db Database, snap *drop.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("storage: encode drop state: %w", err)
	}
	return db.Put(dropStateKey, raw)
}

// LoadDropState returns the persisted engine snapshot, or (nil, nil) when the
// store has never been written.
func LoadDropState(db Database) (*drop.Snapshot, error) {
	raw, err := db.Get(dropStateKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap := new(drop.Snapshot)
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("storage: decode drop state: %w", err)
	}
	return snap, nil
}

type mintLedgerState struct {
	Minted        map[string]uint64 `json:"minted"`
	CurrentSupply uint64            `json:"currentSupply"`
}

// MintLedger is the daemon's supply-accounting backend: it implements the
// engine's read-only LedgerReader and is advanced by the RPC layer after each
// committed mint. State is persisted on every write.
type MintLedger struct {
	mu        sync.RWMutex
	db        Database
	minted    map[[20]byte]uint64
	supply    uint64
	maxSupply uint64
}

// NewMintLedger opens the ledger, restoring any persisted counters.
func NewMintLedger(db Database, maxSupply uint64) (*MintLedger, error) {
	ledger := &MintLedger{
		db:        db,
		minted:    make(map[[20]byte]uint64),
		maxSupply: maxSupply,
	}
	raw, err := db.Get(mintLedgerKey)
	if errors.Is(err, ErrNotFound) {
		return ledger, nil
	}
	if err != nil {
		return nil, err
	}
	state := mintLedgerState{}
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("storage: decode mint ledger: %w", err)
	}
	for key, count := range state.Minted {
		addr, err := decodeAddrKey(key)
		if err != nil {
			return nil, err
		}
		ledger.minted[addr] = count
	}
	ledger.supply = state.CurrentSupply
	return ledger, nil
}

// MintStats implements drop.LedgerReader.
func (l *MintLedger) MintStats(wallet [20]byte) (uint64, uint64, uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minted[wallet], l.supply, l.maxSupply, nil
}

// Record advances the counters after a committed mint and persists them.
func (l *MintLedger) Record(wallet [20]byte, quantity uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minted[wallet] += quantity
	l.supply += quantity
	state := mintLedgerState{
		Minted:        make(map[string]uint64, len(l.minted)),
		CurrentSupply: l.supply,
	}
	for addr, count := range l.minted {
		state.Minted[encodeAddrKey(addr)] = count
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: encode mint ledger: %w", err)
	}
	return l.db.Put(mintLedgerKey, raw)
}

type ownershipState struct {
	Owners map[string]string `json:"owners"`
}

// OwnershipIndex is a companion-token ownership table for deployments where
// ownership is registered administratively rather than queried from an
// external collection. It implements drop.OwnershipReader.
type OwnershipIndex struct {
	mu     sync.RWMutex
	db     Database
	owners map[string][20]byte
}

// NewOwnershipIndex opens the index, restoring any persisted entries.
func NewOwnershipIndex(db Database) (*OwnershipIndex, error) {
	index := &OwnershipIndex{db: db, owners: make(map[string][20]byte)}
	raw, err := db.Get(ownershipKey)
	if errors.Is(err, ErrNotFound) {
		return index, nil
	}
	if err != nil {
		return nil, err
	}
	state := ownershipState{}
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("storage: decode ownership index: %w", err)
	}
	for key, raw := range state.Owners {
		owner, err := decodeAddrKey(raw)
		if err != nil {
			return nil, err
		}
		index.owners[key] = owner
	}
	return index, nil
}

func ownerEntryKey(token [20]byte, tokenID *big.Int) string {
	return encodeAddrKey(token) + "/" + tokenID.String()
}

// OwnerOf implements drop.OwnershipReader.
func (o *OwnershipIndex) OwnerOf(token [20]byte, tokenID *big.Int) ([20]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	owner, ok := o.owners[ownerEntryKey(token, tokenID)]
	if !ok {
		return [20]byte{}, fmt.Errorf("storage: no owner registered for token %s", tokenID)
	}
	return owner, nil
}

// SetOwner registers the owner of a companion token id and persists the index.
func (o *OwnershipIndex) SetOwner(token [20]byte, tokenID *big.Int, owner [20]byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.owners[ownerEntryKey(token, tokenID)] = owner
	state := ownershipState{Owners: make(map[string]string, len(o.owners))}
	for key, addr := range o.owners {
		state.Owners[key] = encodeAddrKey(addr)
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: encode ownership index: %w", err)
	}
	return o.db.Put(ownershipKey, raw)
}

func encodeAddrKey(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func decodeAddrKey(s string) ([20]byte, error) {
	var addr [20]byte
	if len(s) != 42 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return addr, fmt.Errorf("storage: invalid address key %q", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return addr, fmt.Errorf("storage: invalid address key %q", s)
	}
	copy(addr[:], raw)
	return addr, nil
}
