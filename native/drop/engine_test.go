package drop

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"dropmint/core/events"
)

const testNow = uint64(1000)

type mockLedger struct {
	minted        map[[20]byte]uint64
	currentSupply uint64
	maxSupply     uint64
}

func newMockLedger() *mockLedger {
	return &mockLedger{minted: make(map[[20]byte]uint64), maxSupply: 10_000}
}

func (m *mockLedger) MintStats(wallet [20]byte) (uint64, uint64, uint64, error) {
	return m.minted[wallet], m.currentSupply, m.maxSupply, nil
}

type ownerKey struct {
	token [20]byte
	id    string
}

type mockOwnership struct {
	owners map[ownerKey][20]byte
}

func newMockOwnership() *mockOwnership {
	return &mockOwnership{owners: make(map[ownerKey][20]byte)}
}

func (m *mockOwnership) set(token [20]byte, id *big.Int, owner [20]byte) {
	m.owners[ownerKey{token: token, id: id.String()}] = owner
}

func (m *mockOwnership) OwnerOf(token [20]byte, id *big.Int) ([20]byte, error) {
	owner, ok := m.owners[ownerKey{token: token, id: id.String()}]
	if !ok {
		return [20]byte{}, errors.New("unknown token")
	}
	return owner, nil
}

type mockDelegation struct {
	grants map[[40]byte]bool
}

func delegationKey(payer, minter [20]byte) [40]byte {
	var key [40]byte
	copy(key[:20], payer[:])
	copy(key[20:], minter[:])
	return key
}

func newMockDelegation() *mockDelegation {
	return &mockDelegation{grants: make(map[[40]byte]bool)}
}

func (m *mockDelegation) grant(payer, minter [20]byte) {
	m.grants[delegationKey(payer, minter)] = true
}

func (m *mockDelegation) IsDelegate(payer, minter [20]byte) (bool, error) {
	return m.grants[delegationKey(payer, minter)], nil
}

type testHarness struct {
	engine     *Engine
	ledger     *mockLedger
	ownership  *mockOwnership
	delegation *mockDelegation
	emitter    *captureEmitter
	payee      [20]byte
	signingKey *ecdsa.PrivateKey
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		ledger:     newMockLedger(),
		ownership:  newMockOwnership(),
		delegation: newMockDelegation(),
		emitter:    &captureEmitter{},
		payee:      testAddr(0xc0),
	}
	h.engine = NewEngine(testDropToken, testDomain, NewRegistry())
	h.engine.SetLedger(h.ledger)
	h.engine.SetOwnership(h.ownership)
	h.engine.SetDelegation(h.delegation)
	h.engine.SetEmitter(h.emitter)
	h.engine.SetNowFunc(func() uint64 { return testNow })
	if err := h.engine.Registry().UpdateCreatorPayouts([]CreatorPayout{{Address: h.payee, BasisPoints: 10_000}}); err != nil {
		t.Fatal(err)
	}
	return h
}

// activeStage returns a stage whose window covers testNow.
func activeStage() *DropStage {
	stage := auctionStage(1, 1, testNow-500, testNow+500)
	stage.MaxPerWallet = 6
	stage.MaxSupplyForStage = 1000
	stage.FeeBps = 500
	stage.StageIndex = 0
	return stage
}

func openRequest(fulfiller [20]byte, quantity uint64, stageIndex uint32, feeRecipient [20]byte) *MintRequest {
	return &MintRequest{
		Fulfiller: fulfiller,
		Claim:     []ClaimItem{{Token: testDropToken, Amount: quantity}},
		Context:   EncodeOpenPayload(feeRecipient, fulfiller, stageIndex),
	}
}

func TestOpenMintHappyPath(t *testing.T) {
	h := newTestHarness(t)
	if err := h.engine.Registry().UpsertPublicStage(0, activeStage()); err != nil {
		t.Fatal(err)
	}
	minter := testAddr(0x0a)

	outcome, err := h.engine.Mint(openRequest(minter, 3, 0, testAddr(0xfe)))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Quantity != 3 || outcome.UnitPrice.Int64() != 1 || outcome.Total.Int64() != 3 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	// fee = floor(3 * 500/10000) = 0, so the single payee takes everything.
	if len(outcome.Obligations) != 1 || outcome.Obligations[0].Recipient != h.payee || outcome.Obligations[0].Amount.Int64() != 3 {
		t.Fatalf("unexpected obligations %+v", outcome.Obligations)
	}

	recorded, ok := h.emitter.last().(events.DropMintRecorded)
	if !ok {
		t.Fatalf("expected DropMintRecorded, got %T", h.emitter.last())
	}
	if recorded.Payer != minter || recorded.StageIndex != 0 {
		t.Fatalf("unexpected mint event %+v", recorded)
	}
}

func TestOpenMintStageMissing(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.engine.Mint(openRequest(testAddr(0x0a), 1, 9, testAddr(0xfe)))
	if !errors.Is(err, ErrStageNotPresent) {
		t.Fatalf("expected ErrStageNotPresent, got %v", err)
	}
}

func TestOpenMintInactiveStage(t *testing.T) {
	h := newTestHarness(t)
	stale := activeStage()
	stale.Window.StartTime = testNow + 100
	stale.Window.EndTime = testNow + 200
	if err := h.engine.Registry().UpsertPublicStage(0, stale); err != nil {
		t.Fatal(err)
	}
	_, err := h.engine.Mint(openRequest(testAddr(0x0a), 1, 0, testAddr(0xfe)))
	if !errors.Is(err, ErrStageNotActive) {
		t.Fatalf("expected ErrStageNotActive, got %v", err)
	}
}

func TestWalletCapEnforced(t *testing.T) {
	h := newTestHarness(t)
	if err := h.engine.Registry().UpsertPublicStage(0, activeStage()); err != nil {
		t.Fatal(err)
	}
	minter := testAddr(0x0a)
	h.ledger.minted[minter] = 3

	// Cap is 6: 3 more is fine, 4 more is not.
	if _, err := h.engine.Mint(openRequest(minter, 4, 0, testAddr(0xfe))); !errors.Is(err, ErrWalletCapExceeded) {
		t.Fatalf("expected ErrWalletCapExceeded, got %v", err)
	}
	if _, err := h.engine.Mint(openRequest(minter, 3, 0, testAddr(0xfe))); err != nil {
		t.Fatalf("mint within cap failed: %v", err)
	}

	h.ledger.minted[minter] = 6
	if _, err := h.engine.Mint(openRequest(minter, 1, 0, testAddr(0xfe))); !errors.Is(err, ErrWalletCapExceeded) {
		t.Fatalf("expected ErrWalletCapExceeded at full cap, got %v", err)
	}
}

func TestSupplyCapsDistinct(t *testing.T) {
	h := newTestHarness(t)
	stage := activeStage()
	stage.MaxPerWallet = 10_000
	stage.MaxSupplyForStage = 100
	if err := h.engine.Registry().UpsertPublicStage(0, stage); err != nil {
		t.Fatal(err)
	}
	minter := testAddr(0x0a)

	h.ledger.currentSupply = 9_999
	h.ledger.maxSupply = 10_000
	if _, err := h.engine.Mint(openRequest(minter, 2, 0, testAddr(0xfe))); !errors.Is(err, ErrMaxSupplyExceeded) {
		t.Fatalf("expected ErrMaxSupplyExceeded, got %v", err)
	}

	h.ledger.currentSupply = 99
	if _, err := h.engine.Mint(openRequest(minter, 2, 0, testAddr(0xfe))); !errors.Is(err, ErrStageSupplyExceeded) {
		t.Fatalf("expected ErrStageSupplyExceeded, got %v", err)
	}
}

func TestFeeRecipientChecks(t *testing.T) {
	h := newTestHarness(t)
	stage := activeStage()
	stage.RestrictFeeRecipients = true
	if err := h.engine.Registry().UpsertPublicStage(0, stage); err != nil {
		t.Fatal(err)
	}
	minter := testAddr(0x0a)

	if _, err := h.engine.Mint(openRequest(minter, 1, 0, zeroAddress)); !errors.Is(err, ErrFeeRecipientZero) {
		t.Fatalf("expected ErrFeeRecipientZero, got %v", err)
	}
	if _, err := h.engine.Mint(openRequest(minter, 1, 0, testAddr(0xfe))); !errors.Is(err, ErrFeeRecipientNotAllowed) {
		t.Fatalf("expected ErrFeeRecipientNotAllowed, got %v", err)
	}
	if err := h.engine.Registry().AddAllowed(SetFeeRecipients, testAddr(0xfe)); err != nil {
		t.Fatal(err)
	}
	if _, err := h.engine.Mint(openRequest(minter, 1, 0, testAddr(0xfe))); err != nil {
		t.Fatalf("allowed fee recipient rejected: %v", err)
	}
}

func TestPayerAuthorization(t *testing.T) {
	h := newTestHarness(t)
	if err := h.engine.Registry().UpsertPublicStage(0, activeStage()); err != nil {
		t.Fatal(err)
	}
	minter := testAddr(0x0a)
	payer := testAddr(0x0b)

	// Fulfiller pays for a mint addressed to someone else.
	req := &MintRequest{
		Fulfiller: payer,
		Claim:     []ClaimItem{{Token: testDropToken, Amount: 1}},
		Context:   EncodeOpenPayload(testAddr(0xfe), minter, 0),
	}
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrPayerNotAllowed) {
		t.Fatalf("expected ErrPayerNotAllowed, got %v", err)
	}

	// Registered allowed payers pass.
	if err := h.engine.Registry().AddAllowed(SetPayers, payer); err != nil {
		t.Fatal(err)
	}
	if _, err := h.engine.Mint(req); err != nil {
		t.Fatalf("allowed payer rejected: %v", err)
	}
	if err := h.engine.Registry().RemoveAllowed(SetPayers, payer); err != nil {
		t.Fatal(err)
	}

	// Delegates of the minter pass.
	h.delegation.grant(payer, minter)
	if _, err := h.engine.Mint(req); err != nil {
		t.Fatalf("delegated payer rejected: %v", err)
	}
}

func TestCallerAllowList(t *testing.T) {
	h := newTestHarness(t)
	if err := h.engine.Registry().UpsertPublicStage(0, activeStage()); err != nil {
		t.Fatal(err)
	}
	settlement := testAddr(0x5e)
	if err := h.engine.Registry().AddAllowed(SetCallers, settlement); err != nil {
		t.Fatal(err)
	}

	req := openRequest(testAddr(0x0a), 1, 0, testAddr(0xfe))
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrCallerNotAllowed) {
		t.Fatalf("expected ErrCallerNotAllowed, got %v", err)
	}
	req.Caller = settlement
	if _, err := h.engine.Mint(req); err != nil {
		t.Fatalf("allowed caller rejected: %v", err)
	}
}

func allowListStage() *DropStage {
	stage := activeStage()
	stage.StageIndex = 2
	return stage
}

func TestAllowListMint(t *testing.T) {
	h := newTestHarness(t)
	stage := allowListStage()
	minterA, minterB := testAddr(0x0a), testAddr(0x0b)

	leafA, err := AllowListLeaf(minterA, stage)
	if err != nil {
		t.Fatal(err)
	}
	leafOther, err := AllowListLeaf(testAddr(0x07), stage)
	if err != nil {
		t.Fatal(err)
	}
	tree := NewMerkleTree([][32]byte{leafA, leafOther})
	h.engine.Registry().SetAllowListRoot(tree.Root())

	payload, err := EncodeAllowListPayload(testAddr(0xfe), minterA, stage, tree.Proof(0))
	if err != nil {
		t.Fatal(err)
	}
	req := &MintRequest{
		Fulfiller: minterA,
		Claim:     []ClaimItem{{Token: testDropToken, Amount: 2}},
		Context:   payload,
	}
	outcome, err := h.engine.Mint(req)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.StageIndex != 2 || outcome.Quantity != 2 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	// The same proof with a substituted minter must fail.
	payload, err = EncodeAllowListPayload(testAddr(0xfe), minterB, stage, tree.Proof(0))
	if err != nil {
		t.Fatal(err)
	}
	req = &MintRequest{
		Fulfiller: minterB,
		Claim:     []ClaimItem{{Token: testDropToken, Amount: 1}},
		Context:   payload,
	}
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("expected ErrInvalidProof, got %v", err)
	}
}

func TestAllowListRejectsReservedIndex(t *testing.T) {
	h := newTestHarness(t)
	stage := allowListStage()
	stage.StageIndex = 0
	payload, err := EncodeAllowListPayload(testAddr(0xfe), testAddr(0x0a), stage, nil)
	if err != nil {
		t.Fatal(err)
	}
	req := &MintRequest{
		Fulfiller: testAddr(0x0a),
		Claim:     []ClaimItem{{Token: testDropToken, Amount: 1}},
		Context:   payload,
	}
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrStageIndexReserved) {
		t.Fatalf("expected ErrStageIndexReserved, got %v", err)
	}
}

func signedStage() *DropStage {
	stage := activeStage()
	stage.StageIndex = 3
	stage.RestrictFeeRecipients = true
	return stage
}

func signedHarness(t *testing.T) (*testHarness, *DropStage, [20]byte) {
	t.Helper()
	h := newTestHarness(t)
	stage := signedStage()
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	var signer [20]byte
	copy(signer[:], ethcrypto.PubkeyToAddress(key.PublicKey).Bytes())
	bounds := &SignedMintBounds{
		PaymentAsset:   stage.PaymentAsset,
		MinPrice:       big.NewInt(1),
		MaxPerWallet:   100,
		MaxEndTime:     testNow + 10_000,
		MaxStageSupply: 10_000,
		MaxFeeBps:      1_000,
	}
	if err := h.engine.Registry().UpsertSignerBounds(signer, bounds); err != nil {
		t.Fatal(err)
	}
	if err := h.engine.Registry().AddAllowed(SetFeeRecipients, testAddr(0xfe)); err != nil {
		t.Fatal(err)
	}
	h.signingKey = key
	return h, stage, signer
}

func (h *testHarness) signedRequest(t *testing.T, stage *DropStage, minter [20]byte, quantity uint64, salt [32]byte) *MintRequest {
	t.Helper()
	feeRecipient := testAddr(0xfe)
	sig, err := SignMintAuthorization(testDomain, minter, feeRecipient, stage, salt, h.signingKey)
	if err != nil {
		t.Fatal(err)
	}
	payload, err := EncodeSignedPayload(feeRecipient, minter, stage, salt, sig)
	if err != nil {
		t.Fatal(err)
	}
	return &MintRequest{
		Fulfiller: minter,
		Claim:     []ClaimItem{{Token: testDropToken, Amount: quantity}},
		Context:   payload,
	}
}

func TestSignedMintAndReplay(t *testing.T) {
	h, stage, _ := signedHarness(t)
	minter := testAddr(0x0a)
	salt := [32]byte{0x01}

	req := h.signedRequest(t, stage, minter, 1, salt)
	if _, err := h.engine.Mint(req); err != nil {
		t.Fatalf("signed mint failed: %v", err)
	}

	// The identical signature is replay-blocked.
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrSignatureReused) {
		t.Fatalf("expected ErrSignatureReused, got %v", err)
	}

	// A fresh salt for the same minter succeeds.
	req = h.signedRequest(t, stage, minter, 1, [32]byte{0x02})
	if _, err := h.engine.Mint(req); err != nil {
		t.Fatalf("fresh salt rejected: %v", err)
	}
}

func TestSignedMintPreviewDoesNotConsumeDigest(t *testing.T) {
	h, stage, _ := signedHarness(t)
	minter := testAddr(0x0a)
	req := h.signedRequest(t, stage, minter, 1, [32]byte{0x01})

	if _, err := h.engine.PreviewMint(req); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if _, err := h.engine.Mint(req); err != nil {
		t.Fatalf("commit after preview failed: %v", err)
	}
}

func TestSignedMintUnknownSigner(t *testing.T) {
	h, stage, signer := signedHarness(t)
	if err := h.engine.Registry().RemoveSigner(signer); err != nil {
		t.Fatal(err)
	}
	req := h.signedRequest(t, stage, testAddr(0x0a), 1, [32]byte{0x01})
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrSignerUnknown) {
		t.Fatalf("expected ErrSignerUnknown, got %v", err)
	}
}

func TestSignedMintBoundsEnforced(t *testing.T) {
	h, stage, _ := signedHarness(t)
	loose := stage.Clone()
	loose.RestrictFeeRecipients = false
	req := h.signedRequest(t, loose, testAddr(0x0a), 1, [32]byte{0x01})
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrSignedFeeRecipientsUnrestricted) {
		t.Fatalf("expected ErrSignedFeeRecipientsUnrestricted, got %v", err)
	}
}

func tokenGatedHarness(t *testing.T) (*testHarness, [20]byte) {
	t.Helper()
	h := newTestHarness(t)
	companion := testAddr(0x33)
	stage := activeStage()
	stage.StageIndex = 4
	stage.MaxPerWallet = 100
	stage.MaxPerWalletPerUnit = 5
	if err := h.engine.Registry().UpsertTokenGatedStage(companion, stage); err != nil {
		t.Fatal(err)
	}
	return h, companion
}

func (h *testHarness) tokenGatedRequest(t *testing.T, companion, minter [20]byte, ids []*big.Int, amounts []uint64, quantity uint64) *MintRequest {
	t.Helper()
	payload, err := EncodeTokenGatedPayload(testAddr(0xfe), minter, companion, ids, amounts)
	if err != nil {
		t.Fatal(err)
	}
	return &MintRequest{
		Fulfiller: minter,
		Claim:     []ClaimItem{{Token: testDropToken, Amount: quantity}},
		Context:   payload,
	}
}

func TestTokenGatedMintScenario(t *testing.T) {
	h, companion := tokenGatedHarness(t)
	minter := testAddr(0x0a)
	tokenID := big.NewInt(7)
	h.ownership.set(companion, tokenID, minter)

	// Requesting 6 against a per-token cap of 5 fails.
	req := h.tokenGatedRequest(t, companion, minter, []*big.Int{tokenID}, []uint64{6}, 6)
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrTokenGatedCapExceeded) {
		t.Fatalf("expected ErrTokenGatedCapExceeded, got %v", err)
	}

	// Requesting 5 succeeds and exhausts the token.
	req = h.tokenGatedRequest(t, companion, minter, []*big.Int{tokenID}, []uint64{5}, 5)
	outcome, err := h.engine.Mint(req)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Quantity != 5 || outcome.StageIndex != 4 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if got := h.engine.Redemptions().Redeemed(companion, tokenID); got != 5 {
		t.Fatalf("expected 5 redeemed, got %d", got)
	}

	// One more against the same token fails.
	req = h.tokenGatedRequest(t, companion, minter, []*big.Int{tokenID}, []uint64{1}, 1)
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrTokenGatedCapExceeded) {
		t.Fatalf("expected ErrTokenGatedCapExceeded after exhaustion, got %v", err)
	}
}

func TestTokenGatedOwnershipAndQuantity(t *testing.T) {
	h, companion := tokenGatedHarness(t)
	minter := testAddr(0x0a)
	tokenID := big.NewInt(7)
	h.ownership.set(companion, tokenID, testAddr(0x0b))

	req := h.tokenGatedRequest(t, companion, minter, []*big.Int{tokenID}, []uint64{1}, 1)
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrTokenGatedNotOwner) {
		t.Fatalf("expected ErrTokenGatedNotOwner, got %v", err)
	}

	h.ownership.set(companion, tokenID, minter)
	// Claimed quantity and authorized amounts must agree.
	req = h.tokenGatedRequest(t, companion, minter, []*big.Int{tokenID}, []uint64{2}, 3)
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrQuantityMismatch) {
		t.Fatalf("expected ErrQuantityMismatch, got %v", err)
	}
}

func TestTokenGatedPreviewDoesNotRedeem(t *testing.T) {
	h, companion := tokenGatedHarness(t)
	minter := testAddr(0x0a)
	tokenID := big.NewInt(7)
	h.ownership.set(companion, tokenID, minter)

	req := h.tokenGatedRequest(t, companion, minter, []*big.Int{tokenID}, []uint64{5}, 5)
	if _, err := h.engine.PreviewMint(req); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if got := h.engine.Redemptions().Redeemed(companion, tokenID); got != 0 {
		t.Fatalf("preview mutated the redemption ledger: %d", got)
	}
	for _, event := range h.emitter.events {
		if _, ok := event.(events.DropMintRecorded); ok {
			t.Fatalf("preview raised a mint event")
		}
	}
}

func TestFailedMintCommitsNothing(t *testing.T) {
	h, companion := tokenGatedHarness(t)
	minter := testAddr(0x0a)
	owned, unowned := big.NewInt(7), big.NewInt(8)
	h.ownership.set(companion, owned, minter)

	// The first entry is valid; the second fails ownership. Nothing may land.
	req := h.tokenGatedRequest(t, companion, minter,
		[]*big.Int{owned, unowned}, []uint64{2, 1}, 3)
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrTokenGatedNotOwner) {
		t.Fatalf("expected ErrTokenGatedNotOwner, got %v", err)
	}
	if got := h.engine.Redemptions().Redeemed(companion, owned); got != 0 {
		t.Fatalf("failed mint partially committed: %d redeemed", got)
	}
}

func TestTokenGatedDuplicateIDsShareCap(t *testing.T) {
	h, companion := tokenGatedHarness(t)
	minter := testAddr(0x0a)
	tokenID := big.NewInt(7)
	h.ownership.set(companion, tokenID, minter)

	// Two entries for the same token share its budget: 3+3 exceeds the cap
	// of 5 even though each entry fits on its own.
	req := h.tokenGatedRequest(t, companion, minter,
		[]*big.Int{tokenID, tokenID}, []uint64{3, 3}, 6)
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrTokenGatedCapExceeded) {
		t.Fatalf("expected ErrTokenGatedCapExceeded, got %v", err)
	}
	if got := h.engine.Redemptions().Redeemed(companion, tokenID); got != 0 {
		t.Fatalf("rejected mint must not redeem, got %d", got)
	}

	// 3+2 lands exactly on the cap.
	req = h.tokenGatedRequest(t, companion, minter,
		[]*big.Int{tokenID, tokenID}, []uint64{3, 2}, 5)
	if _, err := h.engine.Mint(req); err != nil {
		t.Fatal(err)
	}
	if got := h.engine.Redemptions().Redeemed(companion, tokenID); got != 5 {
		t.Fatalf("expected 5 redeemed, got %d", got)
	}
}

func TestAllowListRejectsZeroDurationWindow(t *testing.T) {
	h := newTestHarness(t)
	stage := allowListStage()
	stage.Window.StartPrice = big.NewInt(2)
	stage.Window.EndPrice = big.NewInt(1)
	stage.Window.StartTime = testNow
	stage.Window.EndTime = testNow

	minter := testAddr(0x0a)
	leaf, err := AllowListLeaf(minter, stage)
	if err != nil {
		t.Fatal(err)
	}
	tree := NewMerkleTree([][32]byte{leaf})
	h.engine.Registry().SetAllowListRoot(tree.Root())
	payload, err := EncodeAllowListPayload(testAddr(0xfe), minter, stage, tree.Proof(0))
	if err != nil {
		t.Fatal(err)
	}
	req := &MintRequest{
		Fulfiller: minter,
		Claim:     []ClaimItem{{Token: testDropToken, Amount: 1}},
		Context:   payload,
	}
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestSignedRejectsZeroDurationWindow(t *testing.T) {
	h, stage, _ := signedHarness(t)
	stage.Window.StartPrice = big.NewInt(2)
	stage.Window.EndPrice = big.NewInt(1)
	stage.Window.StartTime = testNow
	stage.Window.EndTime = testNow

	req := h.signedRequest(t, stage, testAddr(0x0a), 1, [32]byte{0x05})
	if _, err := h.engine.Mint(req); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}
