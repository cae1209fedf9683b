package drop

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// payloadReader consumes big-endian fields off a mint payload, reporting
// truncation with the byte position that fell short.
type payloadReader struct {
	buf []byte
	off int
}

func (r *payloadReader) take(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrPayloadTruncated, n, r.off, len(r.buf)-r.off)
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *payloadReader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *payloadReader) address() ([20]byte, error) {
	var addr [20]byte
	b, err := r.take(20)
	if err != nil {
		return addr, err
	}
	copy(addr[:], b)
	return addr, nil
}

func (r *payloadReader) uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *payloadReader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *payloadReader) uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *payloadReader) word() (*uint256.Int, error) {
	b, err := r.take(32)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

func (r *payloadReader) hash() ([32]byte, error) {
	var h [32]byte
	b, err := r.take(32)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (r *payloadReader) remaining() int { return len(r.buf) - r.off }

// DecodeMintPayload validates the minimal-received claim and parses the opaque
// authorization payload into a tagged mint intent. The minter defaults to the
// fulfiller when the payload leaves it zero.
func DecodeMintPayload(claim []ClaimItem, payload []byte, dropToken, fulfiller [20]byte) (*MintIntent, error) {
	if len(claim) != 1 || claim[0].Token != dropToken || claim[0].Amount == 0 {
		return nil, ErrInvalidClaim
	}
	r := &payloadReader{buf: payload}
	version, err := r.byte()
	if err != nil {
		return nil, err
	}
	if version != payloadVersion {
		return nil, fmt.Errorf("%w: %#02x", ErrUnsupportedVersion, version)
	}
	tag, err := r.byte()
	if err != nil {
		return nil, err
	}
	if tag > byte(SubstandardSigned) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSubstandard, tag)
	}
	intent := &MintIntent{Substandard: Substandard(tag)}
	if intent.FeeRecipient, err = r.address(); err != nil {
		return nil, err
	}
	if intent.Minter, err = r.address(); err != nil {
		return nil, err
	}
	if intent.Minter == zeroAddress {
		intent.Minter = fulfiller
	}

	switch intent.Substandard {
	case SubstandardOpen:
		if intent.StageIndex, err = r.uint32(); err != nil {
			return nil, err
		}
	case SubstandardAllowList:
		if intent.Stage, err = decodeStageParams(r); err != nil {
			return nil, err
		}
		if rem := r.remaining(); rem%proofNodeLen != 0 {
			return nil, fmt.Errorf("%w: proof bytes not a multiple of %d", ErrPayloadTruncated, proofNodeLen)
		}
		for r.remaining() > 0 {
			node, err := r.hash()
			if err != nil {
				return nil, err
			}
			intent.Proof = append(intent.Proof, node)
		}
	case SubstandardTokenGated:
		if intent.CompanionToken, err = r.address(); err != nil {
			return nil, err
		}
		count, err := r.uint32()
		if err != nil {
			return nil, err
		}
		// Each entry is a 32-byte id plus a 32-byte amount; check the declared
		// count against the bytes actually present before sizing anything.
		if need := int64(count) * 64; need != int64(r.remaining()) {
			return nil, fmt.Errorf("%w: token-gated body needs %d bytes, have %d",
				ErrPayloadTruncated, need, r.remaining())
		}
		intent.TokenIDs = make([]*big.Int, 0, count)
		intent.TokenAmounts = make([]uint64, 0, count)
		for i := uint32(0); i < count; i++ {
			id, err := r.word()
			if err != nil {
				return nil, err
			}
			intent.TokenIDs = append(intent.TokenIDs, id.ToBig())
		}
		for i := uint32(0); i < count; i++ {
			amount, err := r.word()
			if err != nil {
				return nil, err
			}
			if !amount.IsUint64() {
				return nil, fmt.Errorf("%w: token-gated amount", ErrValueOverflow)
			}
			intent.TokenAmounts = append(intent.TokenAmounts, amount.Uint64())
		}
	case SubstandardSigned:
		if intent.Stage, err = decodeStageParams(r); err != nil {
			return nil, err
		}
		if intent.Salt, err = r.hash(); err != nil {
			return nil, err
		}
		sig, err := r.take(signatureLen)
		if err != nil {
			return nil, err
		}
		intent.Signature = append([]byte(nil), sig...)
	}
	return intent, nil
}

func decodeStageParams(r *payloadReader) (*DropStage, error) {
	stage := &DropStage{}
	startPrice, err := r.word()
	if err != nil {
		return nil, err
	}
	endPrice, err := r.word()
	if err != nil {
		return nil, err
	}
	stage.Window.StartPrice = startPrice.ToBig()
	stage.Window.EndPrice = endPrice.ToBig()
	if stage.Window.StartTime, err = r.uint64(); err != nil {
		return nil, err
	}
	if stage.Window.EndTime, err = r.uint64(); err != nil {
		return nil, err
	}
	if stage.PaymentAsset, err = r.address(); err != nil {
		return nil, err
	}
	if stage.MaxPerWallet, err = r.uint64(); err != nil {
		return nil, err
	}
	if stage.MaxPerWalletPerUnit, err = r.uint64(); err != nil {
		return nil, err
	}
	if stage.MaxSupplyForStage, err = r.uint64(); err != nil {
		return nil, err
	}
	if stage.FeeBps, err = r.uint16(); err != nil {
		return nil, err
	}
	restrict, err := r.byte()
	if err != nil {
		return nil, err
	}
	stage.RestrictFeeRecipients = restrict != 0
	if stage.StageIndex, err = r.uint32(); err != nil {
		return nil, err
	}
	return stage, nil
}
