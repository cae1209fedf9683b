package drop

import (
	"fmt"
	"math/big"
)

var bpsDenominator = big.NewInt(maxBps)

// computeObligations splits the proceeds of a mint into the payments the
// settlement layer must collect: the fee share to the fee recipient and the
// remainder to the configured creator payees by basis points.
//
// The fee and every payee share round down; the few smallest units of integer
// dust this leaves behind are never reallocated.
func computeObligations(payouts []CreatorPayout, feeRecipient [20]byte, stage *DropStage, quantity uint64, price *big.Int) ([]Obligation, error) {
	if price == nil || price.Sign() == 0 {
		return nil, nil
	}
	if stage.FeeBps > maxBps {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFeeBps, stage.FeeBps)
	}
	if len(payouts) == 0 {
		return nil, ErrPayoutsEmpty
	}

	total := new(big.Int).Mul(price, new(big.Int).SetUint64(quantity))
	fee := new(big.Int).Mul(total, big.NewInt(int64(stage.FeeBps)))
	fee.Quo(fee, bpsDenominator)
	net := new(big.Int).Sub(total, fee)

	obligations := make([]Obligation, 0, len(payouts)+1)
	if fee.Sign() > 0 {
		obligations = append(obligations, Obligation{
			Recipient: feeRecipient,
			Asset:     stage.PaymentAsset,
			Amount:    fee,
		})
	}
	for _, payee := range payouts {
		share := new(big.Int).Mul(net, big.NewInt(int64(payee.BasisPoints)))
		share.Quo(share, bpsDenominator)
		if share.Sign() == 0 {
			continue
		}
		obligations = append(obligations, Obligation{
			Recipient: payee.Address,
			Asset:     stage.PaymentAsset,
			Amount:    share,
		})
	}
	return obligations, nil
}
