package events

import "math/big"

const (
	// TypeDropStageUpdated is emitted when a public drop stage is created,
	// replaced, or removed.
	TypeDropStageUpdated = "drop.stage.updated"
	// TypeDropTokenGatedStageUpdated is emitted when a token-gated stage is
	// created, replaced, or removed.
	TypeDropTokenGatedStageUpdated = "drop.stage.tokengated.updated"
	// TypeDropAllowListRootUpdated is emitted when the allow-list Merkle root
	// changes.
	TypeDropAllowListRootUpdated = "drop.allowlist.root.updated"
	// TypeDropSignerUpdated is emitted when per-signer validation bounds are
	// registered, replaced, or removed.
	TypeDropSignerUpdated = "drop.signer.updated"
	// TypeDropAllowedSetUpdated is emitted when a membership set (payers, fee
	// recipients, settlement callers, companion tokens) changes.
	TypeDropAllowedSetUpdated = "drop.allowedset.updated"
	// TypeDropCreatorPayoutsUpdated is emitted when the creator payout split
	// is replaced.
	TypeDropCreatorPayoutsUpdated = "drop.payouts.updated"
	// TypeDropMintRecorded is emitted once per committed mint.
	TypeDropMintRecorded = "drop.mint.recorded"
)

// StageSnapshot carries the observable fields of a drop stage inside update
// events. Prices are copied so subscribers cannot mutate engine state.
type StageSnapshot struct {
	StartPrice            *big.Int
	EndPrice              *big.Int
	StartTime             uint64
	EndTime               uint64
	PaymentAsset          [20]byte
	MaxPerWallet          uint64
	MaxPerWalletPerUnit   uint64
	MaxSupplyForStage     uint64
	FeeBps                uint16
	RestrictFeeRecipients bool
	StageIndex            uint32
}

// DropStageUpdated reports a public stage mutation with the previous and new
// configuration. Old is nil on first upsert, New is nil on removal.
type DropStageUpdated struct {
	Index uint32
	Old   *StageSnapshot
	New   *StageSnapshot
}

func (DropStageUpdated) EventType() string { return TypeDropStageUpdated }

// DropTokenGatedStageUpdated reports a token-gated stage mutation keyed by the
// companion token collection.
type DropTokenGatedStageUpdated struct {
	CompanionToken [20]byte
	Old            *StageSnapshot
	New            *StageSnapshot
}

func (DropTokenGatedStageUpdated) EventType() string { return TypeDropTokenGatedStageUpdated }

// DropAllowListRootUpdated reports a change of the allow-list Merkle root.
type DropAllowListRootUpdated struct {
	OldRoot [32]byte
	NewRoot [32]byte
}

func (DropAllowListRootUpdated) EventType() string { return TypeDropAllowListRootUpdated }

// SignerBoundsSnapshot carries the per-signer validation envelope inside
// signer update events.
type SignerBoundsSnapshot struct {
	PaymentAsset   [20]byte
	MinPrice       *big.Int
	MaxPerWallet   uint64
	MinStartTime   uint64
	MaxEndTime     uint64
	MaxStageSupply uint64
	MinFeeBps      uint16
	MaxFeeBps      uint16
}

// DropSignerUpdated reports a signer bounds mutation. Old is nil on first
// registration, New is nil on removal.
type DropSignerUpdated struct {
	Signer [20]byte
	Old    *SignerBoundsSnapshot
	New    *SignerBoundsSnapshot
}

func (DropSignerUpdated) EventType() string { return TypeDropSignerUpdated }

// DropAllowedSetUpdated reports a single membership change on one of the
// engine's enumerable sets.
type DropAllowedSetUpdated struct {
	Set     string
	Member  [20]byte
	Added   bool
	Removed bool
}

func (DropAllowedSetUpdated) EventType() string { return TypeDropAllowedSetUpdated }

// PayoutSnapshot is one payee entry inside a payout update event.
type PayoutSnapshot struct {
	Address     [20]byte
	BasisPoints uint16
}

// DropCreatorPayoutsUpdated reports a replacement of the creator payout split.
type DropCreatorPayoutsUpdated struct {
	Old []PayoutSnapshot
	New []PayoutSnapshot
}

func (DropCreatorPayoutsUpdated) EventType() string { return TypeDropCreatorPayoutsUpdated }

// DropMintRecorded is raised once per committed mint settlement.
type DropMintRecorded struct {
	Payer      [20]byte
	StageIndex uint32
}

func (DropMintRecorded) EventType() string { return TypeDropMintRecorded }
