package drop

import (
	"fmt"

	"dropmint/core/events"
)

// Names of the enumerable membership sets, used in update events and the
// administrative API.
const (
	SetFeeRecipients = "feeRecipients"
	SetPayers        = "payers"
	SetCallers       = "callers"
)

const maxBps = 10_000

// Registry is the persistent configuration store for a drop: public stages by
// index, token-gated stages by companion token, the allow-list root, signer
// bounds, creator payouts, and the enumerable allowed sets. Mutations are
// assumed externally serialized by the caller.
type Registry struct {
	publicStages map[uint32]*DropStage
	publicIndex  *indexedSet[uint32]

	tokenGated      map[[20]byte]*DropStage
	tokenGatedIndex *indexedSet[[20]byte]

	allowListRoot [32]byte

	signers     map[[20]byte]*SignedMintBounds
	signerIndex *indexedSet[[20]byte]

	payouts []CreatorPayout

	feeRecipients *indexedSet[[20]byte]
	payers        *indexedSet[[20]byte]
	callers       *indexedSet[[20]byte]

	emitter events.Emitter
}

// NewRegistry returns an empty registry with a no-op event emitter.
func NewRegistry() *Registry {
	return &Registry{
		publicStages:    make(map[uint32]*DropStage),
		publicIndex:     newIndexedSet[uint32](),
		tokenGated:      make(map[[20]byte]*DropStage),
		tokenGatedIndex: newIndexedSet[[20]byte](),
		signers:         make(map[[20]byte]*SignedMintBounds),
		signerIndex:     newIndexedSet[[20]byte](),
		feeRecipients:   newIndexedSet[[20]byte](),
		payers:          newIndexedSet[[20]byte](),
		callers:         newIndexedSet[[20]byte](),
		emitter:         events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used to broadcast registry updates.
// Passing nil resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(event events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}

func validateStage(stage *DropStage) error {
	if stage == nil {
		return errNilStage
	}
	if stage.FeeBps > maxBps {
		return fmt.Errorf("%w: %d", ErrInvalidFeeBps, stage.FeeBps)
	}
	if stage.Window.EndTime <= stage.Window.StartTime {
		return ErrInvalidWindow
	}
	return nil
}

// UpsertPublicStage creates or replaces the public stage at the given index.
func (r *Registry) UpsertPublicStage(index uint32, stage *DropStage) error {
	if err := validateStage(stage); err != nil {
		return err
	}
	old := r.publicStages[index]
	sanitized := stage.Clone()
	r.publicStages[index] = sanitized
	r.publicIndex.Add(index)
	r.emit(events.DropStageUpdated{Index: index, Old: old.snapshot(), New: sanitized.snapshot()})
	return nil
}

// RemovePublicStage deletes the public stage at the given index.
func (r *Registry) RemovePublicStage(index uint32) error {
	old, ok := r.publicStages[index]
	if !ok {
		return fmt.Errorf("%w: public stage %d", ErrStageNotPresent, index)
	}
	delete(r.publicStages, index)
	r.publicIndex.Remove(index)
	r.emit(events.DropStageUpdated{Index: index, Old: old.snapshot(), New: nil})
	return nil
}

// PublicStage returns the public stage configured at index.
func (r *Registry) PublicStage(index uint32) (*DropStage, bool) {
	stage, ok := r.publicStages[index]
	if !ok {
		return nil, false
	}
	return stage.Clone(), true
}

// PublicStageIndexes enumerates the configured public stage indexes.
func (r *Registry) PublicStageIndexes() []uint32 { return r.publicIndex.Members() }

// UpsertTokenGatedStage creates or replaces the stage gated by the companion
// token. The stage must carry a non-zero stage index.
func (r *Registry) UpsertTokenGatedStage(companionToken [20]byte, stage *DropStage) error {
	if companionToken == zeroAddress {
		return ErrZeroAddress
	}
	if err := validateStage(stage); err != nil {
		return err
	}
	if stage.StageIndex == 0 {
		return ErrStageIndexReserved
	}
	old := r.tokenGated[companionToken]
	sanitized := stage.Clone()
	r.tokenGated[companionToken] = sanitized
	r.tokenGatedIndex.Add(companionToken)
	r.emit(events.DropTokenGatedStageUpdated{
		CompanionToken: companionToken,
		Old:            old.snapshot(),
		New:            sanitized.snapshot(),
	})
	return nil
}

// RemoveTokenGatedStage deletes the stage gated by the companion token.
func (r *Registry) RemoveTokenGatedStage(companionToken [20]byte) error {
	old, ok := r.tokenGated[companionToken]
	if !ok {
		return fmt.Errorf("%w: token-gated stage", ErrStageNotPresent)
	}
	delete(r.tokenGated, companionToken)
	r.tokenGatedIndex.Remove(companionToken)
	r.emit(events.DropTokenGatedStageUpdated{CompanionToken: companionToken, Old: old.snapshot(), New: nil})
	return nil
}

// TokenGatedStage returns the stage gated by the companion token.
func (r *Registry) TokenGatedStage(companionToken [20]byte) (*DropStage, bool) {
	stage, ok := r.tokenGated[companionToken]
	if !ok {
		return nil, false
	}
	return stage.Clone(), true
}

// TokenGatedTokens enumerates the companion tokens with a configured stage.
func (r *Registry) TokenGatedTokens() [][20]byte { return r.tokenGatedIndex.Members() }

// SetAllowListRoot replaces the Merkle root allow-list proofs verify against.
func (r *Registry) SetAllowListRoot(root [32]byte) {
	old := r.allowListRoot
	r.allowListRoot = root
	r.emit(events.DropAllowListRootUpdated{OldRoot: old, NewRoot: root})
}

// AllowListRoot returns the configured allow-list Merkle root.
func (r *Registry) AllowListRoot() [32]byte { return r.allowListRoot }

// UpsertSignerBounds registers or replaces the validation envelope for an
// off-chain signer.
func (r *Registry) UpsertSignerBounds(signer [20]byte, bounds *SignedMintBounds) error {
	if signer == zeroAddress {
		return ErrZeroAddress
	}
	if bounds == nil {
		return fmt.Errorf("%w: signer bounds required", ErrSignerNotPresent)
	}
	if bounds.MinFeeBps > bounds.MaxFeeBps {
		return fmt.Errorf("%w: min %d max %d", ErrInvalidFeeBpsRange, bounds.MinFeeBps, bounds.MaxFeeBps)
	}
	if bounds.MaxFeeBps > maxBps {
		return fmt.Errorf("%w: %d", ErrInvalidFeeBps, bounds.MaxFeeBps)
	}
	old := r.signers[signer]
	sanitized := bounds.Clone()
	r.signers[signer] = sanitized
	r.signerIndex.Add(signer)
	r.emit(events.DropSignerUpdated{Signer: signer, Old: old.snapshot(), New: sanitized.snapshot()})
	return nil
}

// RemoveSigner deletes a signer's validation bounds.
func (r *Registry) RemoveSigner(signer [20]byte) error {
	old, ok := r.signers[signer]
	if !ok {
		return ErrSignerNotPresent
	}
	delete(r.signers, signer)
	r.signerIndex.Remove(signer)
	r.emit(events.DropSignerUpdated{Signer: signer, Old: old.snapshot(), New: nil})
	return nil
}

// SignerBounds returns the validation envelope registered for a signer.
func (r *Registry) SignerBounds(signer [20]byte) (*SignedMintBounds, bool) {
	bounds, ok := r.signers[signer]
	if !ok {
		return nil, false
	}
	return bounds.Clone(), true
}

// Signers enumerates the registered signer addresses.
func (r *Registry) Signers() [][20]byte { return r.signerIndex.Members() }

// UpdateCreatorPayouts replaces the payout split. The list must be non-empty,
// name no zero addresses, and sum to exactly 10_000 basis points.
func (r *Registry) UpdateCreatorPayouts(payouts []CreatorPayout) error {
	if len(payouts) == 0 {
		return ErrPayoutsEmpty
	}
	var total uint64
	for _, p := range payouts {
		if p.Address == zeroAddress {
			return ErrZeroAddress
		}
		total += uint64(p.BasisPoints)
	}
	if total != maxBps {
		return fmt.Errorf("%w: got %d", ErrPayoutSplitInvalid, total)
	}
	old := r.payouts
	r.payouts = clonePayouts(payouts)
	r.emit(events.DropCreatorPayoutsUpdated{Old: payoutSnapshots(old), New: payoutSnapshots(r.payouts)})
	return nil
}

// CreatorPayouts returns the configured payout split.
func (r *Registry) CreatorPayouts() []CreatorPayout { return clonePayouts(r.payouts) }

func (r *Registry) allowedSet(name string) (*indexedSet[[20]byte], error) {
	switch name {
	case SetFeeRecipients:
		return r.feeRecipients, nil
	case SetPayers:
		return r.payers, nil
	case SetCallers:
		return r.callers, nil
	}
	return nil, fmt.Errorf("%w: unknown set %q", ErrMemberNotPresent, name)
}

// AddAllowed inserts an address into the named membership set.
func (r *Registry) AddAllowed(name string, member [20]byte) error {
	set, err := r.allowedSet(name)
	if err != nil {
		return err
	}
	if member == zeroAddress {
		return ErrZeroAddress
	}
	if !set.Add(member) {
		return ErrMemberPresent
	}
	r.emit(events.DropAllowedSetUpdated{Set: name, Member: member, Added: true})
	return nil
}

// RemoveAllowed deletes an address from the named membership set.
func (r *Registry) RemoveAllowed(name string, member [20]byte) error {
	set, err := r.allowedSet(name)
	if err != nil {
		return err
	}
	if !set.Remove(member) {
		return ErrMemberNotPresent
	}
	r.emit(events.DropAllowedSetUpdated{Set: name, Member: member, Removed: true})
	return nil
}

// AllowedMembers enumerates the named membership set.
func (r *Registry) AllowedMembers(name string) ([][20]byte, error) {
	set, err := r.allowedSet(name)
	if err != nil {
		return nil, err
	}
	return set.Members(), nil
}

// IsAllowed reports membership in the named set.
func (r *Registry) IsAllowed(name string, member [20]byte) bool {
	set, err := r.allowedSet(name)
	if err != nil {
		return false
	}
	return set.Contains(member)
}
