package drop

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Payload framing constants. Every payload starts with the version tag, the
// substandard tag, the fee recipient, and the minter, followed by a
// substandard-specific tail.
const (
	payloadVersion = 0x00

	payloadPrefixLen = 1 + 1 + 20 + 20
	stageParamsLen   = 32 + 32 + 8 + 8 + 20 + 8 + 8 + 8 + 2 + 1 + 4
	proofNodeLen     = 32
	saltLen          = 32
	signatureLen     = 65
)

func appendWord(buf []byte, v *big.Int) ([]byte, error) {
	if v == nil {
		v = big.NewInt(0)
	}
	word, overflow := uint256.FromBig(v)
	if overflow || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrValueOverflow, v)
	}
	b := word.Bytes32()
	return append(buf, b[:]...), nil
}

// EncodeStageParams serializes a stage into the canonical big-endian block
// carried by allow-list and signed payloads. The same encoding feeds the
// allow-list Merkle leaf and the signed-mint digest, so off-chain tooling and
// the engine always hash identical bytes.
func EncodeStageParams(stage *DropStage) ([]byte, error) {
	if stage == nil {
		return nil, errNilStage
	}
	buf := make([]byte, 0, stageParamsLen)
	var err error
	if buf, err = appendWord(buf, stage.Window.StartPrice); err != nil {
		return nil, err
	}
	if buf, err = appendWord(buf, stage.Window.EndPrice); err != nil {
		return nil, err
	}
	buf = binary.BigEndian.AppendUint64(buf, stage.Window.StartTime)
	buf = binary.BigEndian.AppendUint64(buf, stage.Window.EndTime)
	buf = append(buf, stage.PaymentAsset[:]...)
	buf = binary.BigEndian.AppendUint64(buf, stage.MaxPerWallet)
	buf = binary.BigEndian.AppendUint64(buf, stage.MaxPerWalletPerUnit)
	buf = binary.BigEndian.AppendUint64(buf, stage.MaxSupplyForStage)
	buf = binary.BigEndian.AppendUint16(buf, stage.FeeBps)
	if stage.RestrictFeeRecipients {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.BigEndian.AppendUint32(buf, stage.StageIndex)
	return buf, nil
}

func encodePrefix(substandard Substandard, feeRecipient, minter [20]byte) []byte {
	buf := make([]byte, 0, payloadPrefixLen)
	buf = append(buf, payloadVersion, byte(substandard))
	buf = append(buf, feeRecipient[:]...)
	buf = append(buf, minter[:]...)
	return buf
}

// EncodeOpenPayload builds a substandard-0 payload minting from the public
// stage at the given index.
func EncodeOpenPayload(feeRecipient, minter [20]byte, stageIndex uint32) []byte {
	buf := encodePrefix(SubstandardOpen, feeRecipient, minter)
	return binary.BigEndian.AppendUint32(buf, stageIndex)
}

// EncodeAllowListPayload builds a substandard-1 payload carrying the full
// stage parameters and a Merkle proof.
func EncodeAllowListPayload(feeRecipient, minter [20]byte, stage *DropStage, proof [][32]byte) ([]byte, error) {
	params, err := EncodeStageParams(stage)
	if err != nil {
		return nil, err
	}
	buf := encodePrefix(SubstandardAllowList, feeRecipient, minter)
	buf = append(buf, params...)
	for _, node := range proof {
		buf = append(buf, node[:]...)
	}
	return buf, nil
}

// EncodeTokenGatedPayload builds a substandard-2 payload claiming redemptions
// against companion token ids.
func EncodeTokenGatedPayload(feeRecipient, minter, companionToken [20]byte, tokenIDs []*big.Int, amounts []uint64) ([]byte, error) {
	if len(tokenIDs) != len(amounts) {
		return nil, ErrTokenGatedLengthMismatch
	}
	buf := encodePrefix(SubstandardTokenGated, feeRecipient, minter)
	buf = append(buf, companionToken[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(tokenIDs)))
	var err error
	for _, id := range tokenIDs {
		if buf, err = appendWord(buf, id); err != nil {
			return nil, err
		}
	}
	for _, amount := range amounts {
		if buf, err = appendWord(buf, new(big.Int).SetUint64(amount)); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// EncodeSignedPayload builds a substandard-3 payload carrying the full stage
// parameters, the salt, and the 65-byte authorization signature.
func EncodeSignedPayload(feeRecipient, minter [20]byte, stage *DropStage, salt [32]byte, signature []byte) ([]byte, error) {
	if len(signature) != signatureLen {
		return nil, fmt.Errorf("%w: signature must be %d bytes", ErrInvalidSignature, signatureLen)
	}
	params, err := EncodeStageParams(stage)
	if err != nil {
		return nil, err
	}
	buf := encodePrefix(SubstandardSigned, feeRecipient, minter)
	buf = append(buf, params...)
	buf = append(buf, salt[:]...)
	buf = append(buf, signature...)
	return buf, nil
}
