package drop

import "errors"

// Decode failures. All are terminal: the payload never reaches a verifier.
var (
	// ErrInvalidClaim indicates the minimal-received claim did not contain
	// exactly one entry for the drop token with a non-zero amount.
	ErrInvalidClaim = errors.New("drop: invalid mint claim")
	// ErrUnsupportedVersion indicates the payload version tag is not the
	// supported constant.
	ErrUnsupportedVersion = errors.New("drop: unsupported payload version")
	// ErrUnsupportedSubstandard indicates the substandard tag is outside the
	// known strategy set.
	ErrUnsupportedSubstandard = errors.New("drop: unsupported substandard")
	// ErrPayloadTruncated indicates the payload is shorter than the decoded
	// substandard requires.
	ErrPayloadTruncated = errors.New("drop: payload truncated")
	// ErrValueOverflow indicates a 32-byte payload word does not fit the
	// engine's numeric range.
	ErrValueOverflow = errors.New("drop: payload value overflow")
)

// Configuration failures.
var (
	// ErrInvalidFeeBps indicates a fee above 10_000 basis points.
	ErrInvalidFeeBps = errors.New("drop: fee bps exceeds 10000")
	// ErrInvalidFeeBpsRange indicates signer bounds with min fee above max fee.
	ErrInvalidFeeBpsRange = errors.New("drop: signer fee bps range inverted")
	// ErrStageIndexReserved indicates a non-public stage carrying the reserved
	// index zero.
	ErrStageIndexReserved = errors.New("drop: stage index 0 is reserved for the public stage")
	// ErrInvalidWindow indicates a stage whose end time does not follow its
	// start time.
	ErrInvalidWindow = errors.New("drop: stage end time must follow start time")
	// ErrStageNotPresent indicates a lookup or removal of a stage that was
	// never configured.
	ErrStageNotPresent = errors.New("drop: stage not present")
	// ErrSignerNotPresent indicates removal of an unregistered signer.
	ErrSignerNotPresent = errors.New("drop: signer not present")
	// ErrZeroAddress indicates the zero address where a real address is
	// required.
	ErrZeroAddress = errors.New("drop: zero address")
	// ErrMemberPresent indicates an add of an address already in the set.
	ErrMemberPresent = errors.New("drop: member already present")
	// ErrMemberNotPresent indicates a removal of an address not in the set.
	ErrMemberNotPresent = errors.New("drop: member not present")
	// ErrPayoutsEmpty indicates a payout update with no payees, or a priced
	// mint attempted with no payout configuration.
	ErrPayoutsEmpty = errors.New("drop: no creator payouts configured")
	// ErrPayoutSplitInvalid indicates payout shares that do not sum to
	// exactly 10_000 basis points.
	ErrPayoutSplitInvalid = errors.New("drop: payout shares must sum to 10000 bps")
)

// Authorization failures.
var (
	// ErrInvalidProof indicates a Merkle proof that does not bind the minter
	// and stage parameters to the configured allow-list root.
	ErrInvalidProof = errors.New("drop: invalid allow-list proof")
	// ErrInvalidSignature indicates an unrecoverable or malformed signature.
	ErrInvalidSignature = errors.New("drop: invalid signature")
	// ErrSignatureReused indicates a signed-mint digest already consumed by a
	// committed mint.
	ErrSignatureReused = errors.New("drop: signature already used")
	// ErrSignerUnknown indicates the recovered signer has no registered
	// validation bounds.
	ErrSignerUnknown = errors.New("drop: signer not registered")

	// ErrSignedPaymentAssetMismatch indicates the signed stage's payment asset
	// differs from the signer's bound asset.
	ErrSignedPaymentAssetMismatch = errors.New("drop: signed stage payment asset outside signer bounds")
	// ErrSignedPriceBelowMin indicates the current stage price is below the
	// signer's minimum.
	ErrSignedPriceBelowMin = errors.New("drop: signed stage price below signer minimum")
	// ErrSignedWalletCapTooHigh indicates a wallet cap above the signer's
	// maximum.
	ErrSignedWalletCapTooHigh = errors.New("drop: signed stage wallet cap above signer maximum")
	// ErrSignedStartTooEarly indicates a stage start before the signer's
	// minimum start time.
	ErrSignedStartTooEarly = errors.New("drop: signed stage starts before signer minimum")
	// ErrSignedEndTooLate indicates a stage end after the signer's maximum end
	// time.
	ErrSignedEndTooLate = errors.New("drop: signed stage ends after signer maximum")
	// ErrSignedStageSupplyTooHigh indicates a stage supply cap above the
	// signer's maximum.
	ErrSignedStageSupplyTooHigh = errors.New("drop: signed stage supply above signer maximum")
	// ErrSignedFeeBpsOutOfBounds indicates a fee outside the signer's
	// [min,max] envelope.
	ErrSignedFeeBpsOutOfBounds = errors.New("drop: signed stage fee bps outside signer bounds")
	// ErrSignedFeeRecipientsUnrestricted indicates a signed stage that waives
	// the fee-recipient restriction, which signed mints may not do.
	ErrSignedFeeRecipientsUnrestricted = errors.New("drop: signed stage must restrict fee recipients")

	// ErrTokenGatedLengthMismatch indicates token id and amount lists of
	// different lengths.
	ErrTokenGatedLengthMismatch = errors.New("drop: token id and amount lists differ in length")
	// ErrTokenGatedNotOwner indicates the minter does not own the claimed
	// companion token.
	ErrTokenGatedNotOwner = errors.New("drop: minter does not own companion token")
	// ErrTokenGatedCapExceeded indicates a companion token redeemed past the
	// stage's per-token cap.
	ErrTokenGatedCapExceeded = errors.New("drop: companion token redemption cap exceeded")
	// ErrQuantityMismatch indicates the token-gated amounts do not sum to the
	// claimed mint quantity.
	ErrQuantityMismatch = errors.New("drop: claimed quantity does not match authorized quantity")
)

// Eligibility failures.
var (
	// ErrStageNotActive indicates the current time is outside the stage's
	// price window.
	ErrStageNotActive = errors.New("drop: stage not active")
	// ErrCallerNotAllowed indicates an upstream settlement caller outside the
	// allowed set.
	ErrCallerNotAllowed = errors.New("drop: settlement caller not allowed")
	// ErrPayerNotAllowed indicates a payer that is neither the minter, an
	// allowed payer, nor a registered delegate of the minter.
	ErrPayerNotAllowed = errors.New("drop: payer not allowed")
	// ErrWalletCapExceeded indicates the mint would push the wallet past the
	// stage's per-wallet cap.
	ErrWalletCapExceeded = errors.New("drop: wallet mint cap exceeded")
	// ErrMaxSupplyExceeded indicates the mint would push total supply past
	// the ledger's global maximum.
	ErrMaxSupplyExceeded = errors.New("drop: max supply exceeded")
	// ErrStageSupplyExceeded indicates the mint would push total supply past
	// the stage's own cap.
	ErrStageSupplyExceeded = errors.New("drop: stage supply cap exceeded")
	// ErrFeeRecipientZero indicates a zero fee recipient.
	ErrFeeRecipientZero = errors.New("drop: fee recipient must not be the zero address")
	// ErrFeeRecipientNotAllowed indicates a fee recipient outside the allowed
	// set while the stage restricts recipients.
	ErrFeeRecipientNotAllowed = errors.New("drop: fee recipient not allowed")
)

var (
	errNilStage    = errors.New("drop: stage required")
	errNilLedger   = errors.New("drop: ledger reader not configured")
	errNilRegistry = errors.New("drop: registry not configured")
)
