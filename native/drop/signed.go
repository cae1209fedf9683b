package drop

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SigningDomain is the EIP-712 style domain a signed mint authorization is
// bound to. Signatures issued for another chain or verifying contract never
// verify here.
type SigningDomain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract [20]byte
}

var (
	domainTypeHash = ethcrypto.Keccak256(
		[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	signedMintTypeHash = ethcrypto.Keccak256(
		[]byte("SignedMint(address minter,address feeRecipient,bytes32 stageParamsHash,bytes32 salt)"))
)

func leftPad32(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func (d SigningDomain) separator() [32]byte {
	var sep [32]byte
	chainID := make([]byte, 8)
	binary.BigEndian.PutUint64(chainID, d.ChainID)
	copy(sep[:], ethcrypto.Keccak256(
		domainTypeHash,
		ethcrypto.Keccak256([]byte(d.Name)),
		ethcrypto.Keccak256([]byte(d.Version)),
		leftPad32(chainID),
		leftPad32(d.VerifyingContract[:]),
	))
	return sep
}

// SignedMintDigest computes the structured digest a delegated signer commits
// to: the minter, the fee recipient, the hash of the granted stage
// parameters, and a salt for uniqueness.
func SignedMintDigest(domain SigningDomain, minter, feeRecipient [20]byte, stage *DropStage, salt [32]byte) ([32]byte, error) {
	var digest [32]byte
	params, err := EncodeStageParams(stage)
	if err != nil {
		return digest, err
	}
	structHash := ethcrypto.Keccak256(
		signedMintTypeHash,
		leftPad32(minter[:]),
		leftPad32(feeRecipient[:]),
		ethcrypto.Keccak256(params),
		salt[:],
	)
	sep := domain.separator()
	copy(digest[:], ethcrypto.Keccak256([]byte{0x19, 0x01}, sep[:], structHash))
	return digest, nil
}

// RecoverSigner returns the address that produced the 65-byte signature over
// the digest. Both legacy (27/28) and canonical (0/1) recovery ids are
// accepted.
func RecoverSigner(digest [32]byte, signature []byte) ([20]byte, error) {
	var signer [20]byte
	if len(signature) != signatureLen {
		return signer, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, signatureLen, len(signature))
	}
	sig := append([]byte(nil), signature...)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return signer, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[64])
	}
	pub, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return signer, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	copy(signer[:], ethcrypto.PubkeyToAddress(*pub).Bytes())
	return signer, nil
}

// SignMintAuthorization produces the signature a registered off-chain signer
// would attach to a signed mint payload. It exists for ops tooling and tests.
func SignMintAuthorization(domain SigningDomain, minter, feeRecipient [20]byte, stage *DropStage, salt [32]byte, key *ecdsa.PrivateKey) ([]byte, error) {
	digest, err := SignedMintDigest(domain, minter, feeRecipient, stage, salt)
	if err != nil {
		return nil, err
	}
	return ethcrypto.Sign(digest[:], key)
}

// enforceSignerBounds checks a signed stage against the signer's registered
// envelope. Each violated field fails with its own reason.
func enforceSignerBounds(bounds *SignedMintBounds, stage *DropStage, price *big.Int) error {
	if stage.PaymentAsset != bounds.PaymentAsset {
		return ErrSignedPaymentAssetMismatch
	}
	if bounds.MinPrice != nil && price.Cmp(bounds.MinPrice) < 0 {
		return fmt.Errorf("%w: price %s below %s", ErrSignedPriceBelowMin, price, bounds.MinPrice)
	}
	if stage.MaxPerWallet > bounds.MaxPerWallet {
		return fmt.Errorf("%w: %d above %d", ErrSignedWalletCapTooHigh, stage.MaxPerWallet, bounds.MaxPerWallet)
	}
	if stage.Window.StartTime < bounds.MinStartTime {
		return fmt.Errorf("%w: %d before %d", ErrSignedStartTooEarly, stage.Window.StartTime, bounds.MinStartTime)
	}
	if stage.Window.EndTime > bounds.MaxEndTime {
		return fmt.Errorf("%w: %d after %d", ErrSignedEndTooLate, stage.Window.EndTime, bounds.MaxEndTime)
	}
	if stage.MaxSupplyForStage > bounds.MaxStageSupply {
		return fmt.Errorf("%w: %d above %d", ErrSignedStageSupplyTooHigh, stage.MaxSupplyForStage, bounds.MaxStageSupply)
	}
	if stage.FeeBps < bounds.MinFeeBps || stage.FeeBps > bounds.MaxFeeBps {
		return fmt.Errorf("%w: %d outside [%d,%d]", ErrSignedFeeBpsOutOfBounds, stage.FeeBps, bounds.MinFeeBps, bounds.MaxFeeBps)
	}
	if !stage.RestrictFeeRecipients {
		return ErrSignedFeeRecipientsUnrestricted
	}
	return nil
}
