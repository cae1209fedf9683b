package drop

import (
	"fmt"
	"math/big"
	"time"

	"dropmint/core/events"
)

// Engine authorizes and settles mint requests. Every call runs the full
// validation pipeline: decode, strategy-specific authorization, pricing,
// eligibility, payout computation. Preview and commit are behaviorally
// identical except that only a commit applies the accumulated effects
// (used-digest insertion, redemption increments) and raises the mint event.
//
// The engine performs no internal locking; invocations and configuration
// mutations are serialized by the caller.
type Engine struct {
	token    [20]byte
	domain   SigningDomain
	registry *Registry

	ledger     LedgerReader
	ownership  OwnershipReader
	delegation DelegationOracle

	used        *usedDigestSet
	redemptions *RedemptionLedger

	emitter events.Emitter
	nowFn   func() uint64
}

// NewEngine creates an engine minting the given drop token, verifying signed
// authorizations against the given domain, and reading configuration from the
// registry.
func NewEngine(token [20]byte, domain SigningDomain, registry *Registry) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Engine{
		token:       token,
		domain:      domain,
		registry:    registry,
		used:        newUsedDigestSet(),
		redemptions: NewRedemptionLedger(),
		emitter:     events.NoopEmitter{},
		nowFn:       func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Registry returns the engine's configuration store.
func (e *Engine) Registry() *Registry { return e.registry }

// SetLedger configures the supply accounting source.
func (e *Engine) SetLedger(ledger LedgerReader) { e.ledger = ledger }

// SetOwnership configures the companion-token ownership source.
func (e *Engine) SetOwnership(ownership OwnershipReader) { e.ownership = ownership }

// SetDelegation configures the delegation oracle consulted for payers acting
// on behalf of a minter.
func (e *Engine) SetDelegation(oracle DelegationOracle) { e.delegation = oracle }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for stage windows. Primarily
// intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

// DigestUsed reports whether a signed-mint digest has been consumed.
func (e *Engine) DigestUsed(digest [32]byte) bool { return e.used.Used(digest) }

// Redemptions returns the token-gated redemption ledger.
func (e *Engine) Redemptions() *RedemptionLedger { return e.redemptions }

// PreviewMint runs every check a committed mint would run and returns the
// computed obligations without mutating any state.
func (e *Engine) PreviewMint(req *MintRequest) (*MintOutcome, error) {
	return e.resolve(req, false)
}

// Mint authorizes the request and, on success, atomically applies all
// persistent effects and raises the mint-recorded event.
func (e *Engine) Mint(req *MintRequest) (*MintOutcome, error) {
	return e.resolve(req, true)
}

// mintEffects accumulates the persistent mutations a strategy requires. They
// are applied only after every check has passed, so a failed invocation
// commits nothing.
type mintEffects struct {
	useDigest   *[32]byte
	redemptions []redemptionDelta
}

type redemptionDelta struct {
	token   [20]byte
	tokenID *big.Int
	amount  uint64
}

func (e *Engine) resolve(req *MintRequest, commit bool) (*MintOutcome, error) {
	if e == nil || e.registry == nil {
		return nil, errNilRegistry
	}
	if req == nil {
		return nil, ErrInvalidClaim
	}
	if e.registry.callers.Len() > 0 && !e.registry.callers.Contains(req.Caller) {
		return nil, ErrCallerNotAllowed
	}

	intent, err := DecodeMintPayload(req.Claim, req.Context, e.token, req.Fulfiller)
	if err != nil {
		return nil, err
	}
	quantity := req.Claim[0].Amount

	var (
		stage        *DropStage
		effects      mintEffects
		signerBounds *SignedMintBounds
	)
	switch intent.Substandard {
	case SubstandardOpen:
		stage, err = e.openStage(intent)
	case SubstandardAllowList:
		stage, err = e.verifyAllowList(intent)
	case SubstandardTokenGated:
		stage, err = e.verifyTokenGated(intent, quantity, &effects)
	case SubstandardSigned:
		stage, signerBounds, err = e.verifySigned(intent, &effects)
	}
	if err != nil {
		return nil, err
	}

	price, err := currentPrice(stage, e.nowFn())
	if err != nil {
		return nil, err
	}
	if signerBounds != nil {
		if err := enforceSignerBounds(signerBounds, stage, price); err != nil {
			return nil, err
		}
	}

	obligations, err := e.validate(intent, req.Fulfiller, quantity, price, stage)
	if err != nil {
		return nil, err
	}

	if commit {
		e.apply(&effects)
		e.emitter.Emit(events.DropMintRecorded{Payer: req.Fulfiller, StageIndex: stage.StageIndex})
	}

	return &MintOutcome{
		Substandard: intent.Substandard,
		StageIndex:  stage.StageIndex,
		Minter:      intent.Minter,
		Quantity:    quantity,
		UnitPrice:   price,
		Total:       new(big.Int).Mul(price, new(big.Int).SetUint64(quantity)),
		Obligations: obligations,
	}, nil
}

func (e *Engine) openStage(intent *MintIntent) (*DropStage, error) {
	stage, ok := e.registry.PublicStage(intent.StageIndex)
	if !ok {
		return nil, fmt.Errorf("%w: public stage %d", ErrStageNotPresent, intent.StageIndex)
	}
	return stage, nil
}

func (e *Engine) verifyAllowList(intent *MintIntent) (*DropStage, error) {
	stage := intent.Stage
	if stage.StageIndex == 0 {
		return nil, ErrStageIndexReserved
	}
	// Inline stages skip the registry, so they get the same structural
	// validation here.
	if err := validateStage(stage); err != nil {
		return nil, err
	}
	leaf, err := AllowListLeaf(intent.Minter, stage)
	if err != nil {
		return nil, err
	}
	if !VerifyMerkleProof(e.registry.AllowListRoot(), leaf, intent.Proof) {
		return nil, ErrInvalidProof
	}
	return stage, nil
}

func (e *Engine) verifySigned(intent *MintIntent, effects *mintEffects) (*DropStage, *SignedMintBounds, error) {
	stage := intent.Stage
	if stage.StageIndex == 0 {
		return nil, nil, ErrStageIndexReserved
	}
	if err := validateStage(stage); err != nil {
		return nil, nil, err
	}
	digest, err := SignedMintDigest(e.domain, intent.Minter, intent.FeeRecipient, stage, intent.Salt)
	if err != nil {
		return nil, nil, err
	}
	if e.used.Used(digest) {
		return nil, nil, ErrSignatureReused
	}
	signer, err := RecoverSigner(digest, intent.Signature)
	if err != nil {
		return nil, nil, err
	}
	bounds, ok := e.registry.SignerBounds(signer)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %x", ErrSignerUnknown, signer)
	}
	effects.useDigest = &digest
	return stage, bounds, nil
}

func (e *Engine) verifyTokenGated(intent *MintIntent, quantity uint64, effects *mintEffects) (*DropStage, error) {
	stage, ok := e.registry.TokenGatedStage(intent.CompanionToken)
	if !ok {
		return nil, fmt.Errorf("%w: token-gated stage", ErrStageNotPresent)
	}
	if len(intent.TokenIDs) != len(intent.TokenAmounts) {
		return nil, ErrTokenGatedLengthMismatch
	}
	if e.ownership == nil {
		return nil, fmt.Errorf("drop: ownership reader not configured")
	}
	var total uint64
	// A token id may appear more than once in a request; pending tracks the
	// amounts already claimed by earlier entries so the cap holds across the
	// whole request, not just against pre-call state.
	pending := make(map[string]uint64, len(intent.TokenIDs))
	for i, tokenID := range intent.TokenIDs {
		amount := intent.TokenAmounts[i]
		owner, err := e.ownership.OwnerOf(intent.CompanionToken, tokenID)
		if err != nil {
			return nil, fmt.Errorf("%w: token %s: %v", ErrTokenGatedNotOwner, tokenID, err)
		}
		if owner != intent.Minter {
			return nil, fmt.Errorf("%w: token %s", ErrTokenGatedNotOwner, tokenID)
		}
		key := tokenID.String()
		redeemed := e.redemptions.Redeemed(intent.CompanionToken, tokenID)
		inFlight := pending[key]
		if redeemed >= stage.MaxPerWalletPerUnit ||
			inFlight > stage.MaxPerWalletPerUnit-redeemed ||
			amount > stage.MaxPerWalletPerUnit-redeemed-inFlight {
			return nil, fmt.Errorf("%w: token %s has %d of %d redeemed",
				ErrTokenGatedCapExceeded, tokenID, redeemed+inFlight, stage.MaxPerWalletPerUnit)
		}
		pending[key] = inFlight + amount
		if amount > ^uint64(0)-total {
			return nil, fmt.Errorf("%w: token-gated total", ErrValueOverflow)
		}
		total += amount
		effects.redemptions = append(effects.redemptions, redemptionDelta{
			token:   intent.CompanionToken,
			tokenID: tokenID,
			amount:  amount,
		})
	}
	if total != quantity {
		return nil, fmt.Errorf("%w: claimed %d, authorized %d", ErrQuantityMismatch, quantity, total)
	}
	return stage, nil
}

// validate is the common path every strategy funnels through: payer
// authorization, quantity caps, fee-recipient checks, and payout computation.
func (e *Engine) validate(intent *MintIntent, payer [20]byte, quantity uint64, price *big.Int, stage *DropStage) ([]Obligation, error) {
	if err := e.checkPayer(payer, intent.Minter); err != nil {
		return nil, err
	}
	if err := e.checkQuantity(intent.Minter, quantity, stage); err != nil {
		return nil, err
	}
	if intent.FeeRecipient == zeroAddress {
		return nil, ErrFeeRecipientZero
	}
	if stage.RestrictFeeRecipients && !e.registry.feeRecipients.Contains(intent.FeeRecipient) {
		return nil, ErrFeeRecipientNotAllowed
	}
	return computeObligations(e.registry.payouts, intent.FeeRecipient, stage, quantity, price)
}

func (e *Engine) checkPayer(payer, minter [20]byte) error {
	if payer == minter {
		return nil
	}
	if e.registry.payers.Contains(payer) {
		return nil
	}
	if e.delegation != nil {
		ok, err := e.delegation.IsDelegate(payer, minter)
		if err != nil {
			return fmt.Errorf("%w: delegation lookup: %v", ErrPayerNotAllowed, err)
		}
		if ok {
			return nil
		}
	}
	return ErrPayerNotAllowed
}

func (e *Engine) checkQuantity(minter [20]byte, quantity uint64, stage *DropStage) error {
	if e.ledger == nil {
		return errNilLedger
	}
	mintedByWallet, currentSupply, maxSupply, err := e.ledger.MintStats(minter)
	if err != nil {
		return err
	}
	if mintedByWallet >= stage.MaxPerWallet || quantity > stage.MaxPerWallet-mintedByWallet {
		return fmt.Errorf("%w: %d minted, cap %d, requested %d",
			ErrWalletCapExceeded, mintedByWallet, stage.MaxPerWallet, quantity)
	}
	if currentSupply >= maxSupply || quantity > maxSupply-currentSupply {
		return fmt.Errorf("%w: supply %d, max %d, requested %d",
			ErrMaxSupplyExceeded, currentSupply, maxSupply, quantity)
	}
	if currentSupply >= stage.MaxSupplyForStage || quantity > stage.MaxSupplyForStage-currentSupply {
		return fmt.Errorf("%w: supply %d, stage cap %d, requested %d",
			ErrStageSupplyExceeded, currentSupply, stage.MaxSupplyForStage, quantity)
	}
	return nil
}

// apply lands the staged effects. The used-digest insertion comes first so a
// re-entering settlement call with the same signature is blocked before any
// other effect is observable.
func (e *Engine) apply(effects *mintEffects) {
	if effects.useDigest != nil {
		e.used.MarkUsed(*effects.useDigest)
	}
	for _, delta := range effects.redemptions {
		e.redemptions.Record(delta.token, delta.tokenID, delta.amount)
	}
}
