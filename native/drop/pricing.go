package drop

import (
	"fmt"
	"math/big"
)

// currentPrice computes the dutch-auction unit price of a stage at the given
// time. The stage is active over the inclusive window [StartTime, EndTime];
// outside it the stage prices at nothing and the mint fails.
//
// Between distinct endpoints the price interpolates linearly and rounds up:
// the result is owed to the protocol and creators, so rounding never
// under-charges.
func currentPrice(stage *DropStage, now uint64) (*big.Int, error) {
	if stage == nil {
		return nil, errNilStage
	}
	start, end := stage.Window.StartTime, stage.Window.EndTime
	if now < start || now > end {
		return nil, fmt.Errorf("%w: window [%d,%d], now %d", ErrStageNotActive, start, end, now)
	}
	startPrice := cloneBigInt(stage.Window.StartPrice)
	endPrice := cloneBigInt(stage.Window.EndPrice)
	if startPrice.Cmp(endPrice) == 0 {
		return startPrice, nil
	}
	duration := new(big.Int).SetUint64(end - start)
	elapsed := new(big.Int).SetUint64(now - start)
	remaining := new(big.Int).Sub(duration, elapsed)

	num := new(big.Int).Mul(startPrice, remaining)
	num.Add(num, new(big.Int).Mul(endPrice, elapsed))
	price, rem := new(big.Int).QuoRem(num, duration, new(big.Int))
	if rem.Sign() != 0 {
		price.Add(price, big.NewInt(1))
	}
	return price, nil
}
