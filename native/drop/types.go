package drop

import (
	"math/big"

	"dropmint/core/events"
)

// Substandard selects which authorization strategy applies to a mint intent.
type Substandard uint8

const (
	// SubstandardOpen mints from a publicly configured stage.
	SubstandardOpen Substandard = iota
	// SubstandardAllowList authorizes the mint via a Merkle membership proof.
	SubstandardAllowList
	// SubstandardTokenGated authorizes the mint via ownership of a companion
	// token collection.
	SubstandardTokenGated
	// SubstandardSigned authorizes the mint via a delegated off-chain
	// signature bounded by per-signer policy.
	SubstandardSigned
)

func (s Substandard) String() string {
	switch s {
	case SubstandardOpen:
		return "open"
	case SubstandardAllowList:
		return "allowlist"
	case SubstandardTokenGated:
		return "tokengated"
	case SubstandardSigned:
		return "signed"
	}
	return "unknown"
}

// PriceWindow describes the dutch-auction price curve of a stage. The price
// moves linearly from StartPrice at StartTime to EndPrice at EndTime.
type PriceWindow struct {
	StartPrice *big.Int `json:"startPrice"`
	EndPrice   *big.Int `json:"endPrice"`
	StartTime  uint64   `json:"startTime"`
	EndTime    uint64   `json:"endTime"`
}

// DropStage is one pricing/eligibility configuration window for minting.
// StageIndex is an analytics tag: index 0 is reserved for the public/open
// strategy and every non-public stage must carry a non-zero index.
type DropStage struct {
	Window                PriceWindow `json:"window"`
	PaymentAsset          [20]byte    `json:"paymentAsset"`
	MaxPerWallet          uint64      `json:"maxPerWallet"`
	MaxPerWalletPerUnit   uint64      `json:"maxPerWalletPerUnit"`
	MaxSupplyForStage     uint64      `json:"maxSupplyForStage"`
	FeeBps                uint16      `json:"feeBps"`
	RestrictFeeRecipients bool        `json:"restrictFeeRecipients"`
	StageIndex            uint32      `json:"stageIndex"`
}

// Clone returns a deep copy of the stage.
func (s *DropStage) Clone() *DropStage {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Window.StartPrice != nil {
		clone.Window.StartPrice = new(big.Int).Set(s.Window.StartPrice)
	}
	if s.Window.EndPrice != nil {
		clone.Window.EndPrice = new(big.Int).Set(s.Window.EndPrice)
	}
	return &clone
}

func (s *DropStage) snapshot() *events.StageSnapshot {
	if s == nil {
		return nil
	}
	return &events.StageSnapshot{
		StartPrice:            cloneBigInt(s.Window.StartPrice),
		EndPrice:              cloneBigInt(s.Window.EndPrice),
		StartTime:             s.Window.StartTime,
		EndTime:               s.Window.EndTime,
		PaymentAsset:          s.PaymentAsset,
		MaxPerWallet:          s.MaxPerWallet,
		MaxPerWalletPerUnit:   s.MaxPerWalletPerUnit,
		MaxSupplyForStage:     s.MaxSupplyForStage,
		FeeBps:                s.FeeBps,
		RestrictFeeRecipients: s.RestrictFeeRecipients,
		StageIndex:            s.StageIndex,
	}
}

// SignedMintBounds is the per-signer min/max envelope a signed stage must fit
// inside. It bounds the blast radius of a compromised off-chain signer.
type SignedMintBounds struct {
	PaymentAsset   [20]byte `json:"paymentAsset"`
	MinPrice       *big.Int `json:"minPrice"`
	MaxPerWallet   uint64   `json:"maxPerWallet"`
	MinStartTime   uint64   `json:"minStartTime"`
	MaxEndTime     uint64   `json:"maxEndTime"`
	MaxStageSupply uint64   `json:"maxStageSupply"`
	MinFeeBps      uint16   `json:"minFeeBps"`
	MaxFeeBps      uint16   `json:"maxFeeBps"`
}

// Clone returns a deep copy of the bounds.
func (b *SignedMintBounds) Clone() *SignedMintBounds {
	if b == nil {
		return nil
	}
	clone := *b
	if b.MinPrice != nil {
		clone.MinPrice = new(big.Int).Set(b.MinPrice)
	}
	return &clone
}

func (b *SignedMintBounds) snapshot() *events.SignerBoundsSnapshot {
	if b == nil {
		return nil
	}
	return &events.SignerBoundsSnapshot{
		PaymentAsset:   b.PaymentAsset,
		MinPrice:       cloneBigInt(b.MinPrice),
		MaxPerWallet:   b.MaxPerWallet,
		MinStartTime:   b.MinStartTime,
		MaxEndTime:     b.MaxEndTime,
		MaxStageSupply: b.MaxStageSupply,
		MinFeeBps:      b.MinFeeBps,
		MaxFeeBps:      b.MaxFeeBps,
	}
}

// CreatorPayout routes a share of net mint proceeds to a payee. The configured
// set must sum to exactly 10_000 basis points.
type CreatorPayout struct {
	Address     [20]byte `json:"address"`
	BasisPoints uint16   `json:"basisPoints"`
}

// ClaimItem is one entry of the minimal-received claim supplied by the
// settlement protocol. The claim must contain exactly one entry naming the
// drop's own token with a non-zero amount.
type ClaimItem struct {
	Token  [20]byte
	Amount uint64
}

// MintRequest is the engine's externally visible API: the upstream settlement
// protocol supplies the fulfiller, its minimal-received claim, and the opaque
// authorization payload.
type MintRequest struct {
	// Caller is the settlement protocol invoking the engine. When the
	// allowed-callers set is non-empty the caller must be a member.
	Caller [20]byte
	// Fulfiller pays for the mint and is the default minter when the payload
	// leaves the minter unset.
	Fulfiller [20]byte
	Claim     []ClaimItem
	Context   []byte
}

// MintIntent is the decoded authorization payload.
type MintIntent struct {
	Substandard  Substandard
	FeeRecipient [20]byte
	Minter       [20]byte

	// Open.
	StageIndex uint32

	// Allow-list and signed carry the full stage parameters inline.
	Stage *DropStage

	// Allow-list.
	Proof [][32]byte

	// Token-gated.
	CompanionToken [20]byte
	TokenIDs       []*big.Int
	TokenAmounts   []uint64

	// Signed.
	Salt      [32]byte
	Signature []byte
}

// Obligation is one payment the settlement layer must collect for a mint.
type Obligation struct {
	Recipient [20]byte
	Asset     [20]byte
	Amount    *big.Int
}

// MintOutcome is the result of a successful preview or commit.
type MintOutcome struct {
	Substandard Substandard
	StageIndex  uint32
	Minter      [20]byte
	Quantity    uint64
	UnitPrice   *big.Int
	Total       *big.Int
	Obligations []Obligation
}

// LedgerReader exposes the supply accounting the engine needs to enforce
// quantity caps. Implementations must be read-only: the engine treats the
// lookup as an untrusted re-entrant boundary and never mutates state between
// issuing the query and consuming its result.
type LedgerReader interface {
	MintStats(wallet [20]byte) (mintedByWallet, currentSupply, maxSupply uint64, err error)
}

// OwnershipReader answers companion-token ownership queries for token-gated
// stages. Read-only.
type OwnershipReader interface {
	OwnerOf(token [20]byte, tokenID *big.Int) ([20]byte, error)
}

// DelegationOracle reports whether payer is a full delegate of minter.
// Read-only.
type DelegationOracle interface {
	IsDelegate(payer, minter [20]byte) (bool, error)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func clonePayouts(payouts []CreatorPayout) []CreatorPayout {
	if len(payouts) == 0 {
		return nil
	}
	out := make([]CreatorPayout, len(payouts))
	copy(out, payouts)
	return out
}

func payoutSnapshots(payouts []CreatorPayout) []events.PayoutSnapshot {
	if len(payouts) == 0 {
		return nil
	}
	out := make([]events.PayoutSnapshot, len(payouts))
	for i, p := range payouts {
		out[i] = events.PayoutSnapshot{Address: p.Address, BasisPoints: p.BasisPoints}
	}
	return out
}

var zeroAddress [20]byte
