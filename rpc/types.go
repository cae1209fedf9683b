package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"dropmint/native/drop"
)

func parseAddress(field, raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != 20 {
		return addr, fmt.Errorf("%s must be a 20-byte hex address", field)
	}
	copy(addr[:], decoded)
	return addr, nil
}

func parseHash(field, raw string) ([32]byte, error) {
	var hash [32]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != 32 {
		return hash, fmt.Errorf("%s must be a 32-byte hex value", field)
	}
	copy(hash[:], decoded)
	return hash, nil
}

func parseBytes(field, raw string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex encoded", field)
	}
	return decoded, nil
}

func parseBigInt(field, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("%s must be a non-negative decimal string", field)
	}
	return value, nil
}

func formatAddress(addr [20]byte) string { return "0x" + hex.EncodeToString(addr[:]) }

func formatHash(hash [32]byte) string { return "0x" + hex.EncodeToString(hash[:]) }

// StageParams is the wire form of a drop stage.
type StageParams struct {
	StartPrice            string `json:"startPrice"`
	EndPrice              string `json:"endPrice"`
	StartTime             uint64 `json:"startTime"`
	EndTime               uint64 `json:"endTime"`
	PaymentAsset          string `json:"paymentAsset"`
	MaxPerWallet          uint64 `json:"maxPerWallet"`
	MaxPerWalletPerUnit   uint64 `json:"maxPerWalletPerUnit"`
	MaxSupplyForStage     uint64 `json:"maxSupplyForStage"`
	FeeBps                uint16 `json:"feeBps"`
	RestrictFeeRecipients bool   `json:"restrictFeeRecipients"`
	StageIndex            uint32 `json:"stageIndex"`
}

func (p *StageParams) toStage() (*drop.DropStage, error) {
	startPrice, err := parseBigInt("startPrice", p.StartPrice)
	if err != nil {
		return nil, err
	}
	endPrice, err := parseBigInt("endPrice", p.EndPrice)
	if err != nil {
		return nil, err
	}
	asset, err := parseAddress("paymentAsset", p.PaymentAsset)
	if err != nil {
		return nil, err
	}
	return &drop.DropStage{
		Window: drop.PriceWindow{
			StartPrice: startPrice,
			EndPrice:   endPrice,
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
		},
		PaymentAsset:          asset,
		MaxPerWallet:          p.MaxPerWallet,
		MaxPerWalletPerUnit:   p.MaxPerWalletPerUnit,
		MaxSupplyForStage:     p.MaxSupplyForStage,
		FeeBps:                p.FeeBps,
		RestrictFeeRecipients: p.RestrictFeeRecipients,
		StageIndex:            p.StageIndex,
	}, nil
}

func stageParams(stage *drop.DropStage) *StageParams {
	if stage == nil {
		return nil
	}
	params := &StageParams{
		StartPrice:            "0",
		EndPrice:              "0",
		StartTime:             stage.Window.StartTime,
		EndTime:               stage.Window.EndTime,
		PaymentAsset:          formatAddress(stage.PaymentAsset),
		MaxPerWallet:          stage.MaxPerWallet,
		MaxPerWalletPerUnit:   stage.MaxPerWalletPerUnit,
		MaxSupplyForStage:     stage.MaxSupplyForStage,
		FeeBps:                stage.FeeBps,
		RestrictFeeRecipients: stage.RestrictFeeRecipients,
		StageIndex:            stage.StageIndex,
	}
	if stage.Window.StartPrice != nil {
		params.StartPrice = stage.Window.StartPrice.String()
	}
	if stage.Window.EndPrice != nil {
		params.EndPrice = stage.Window.EndPrice.String()
	}
	return params
}

// SignerBoundsParams is the wire form of a signer policy envelope.
type SignerBoundsParams struct {
	PaymentAsset   string `json:"paymentAsset"`
	MinPrice       string `json:"minPrice"`
	MaxPerWallet   uint64 `json:"maxPerWallet"`
	MinStartTime   uint64 `json:"minStartTime"`
	MaxEndTime     uint64 `json:"maxEndTime"`
	MaxStageSupply uint64 `json:"maxStageSupply"`
	MinFeeBps      uint16 `json:"minFeeBps"`
	MaxFeeBps      uint16 `json:"maxFeeBps"`
}

func (p *SignerBoundsParams) toBounds() (*drop.SignedMintBounds, error) {
	asset, err := parseAddress("paymentAsset", p.PaymentAsset)
	if err != nil {
		return nil, err
	}
	minPrice, err := parseBigInt("minPrice", p.MinPrice)
	if err != nil {
		return nil, err
	}
	return &drop.SignedMintBounds{
		PaymentAsset:   asset,
		MinPrice:       minPrice,
		MaxPerWallet:   p.MaxPerWallet,
		MinStartTime:   p.MinStartTime,
		MaxEndTime:     p.MaxEndTime,
		MaxStageSupply: p.MaxStageSupply,
		MinFeeBps:      p.MinFeeBps,
		MaxFeeBps:      p.MaxFeeBps,
	}, nil
}

// PayoutParam is one creator payout share on the wire.
type PayoutParam struct {
	Address     string `json:"address"`
	BasisPoints uint16 `json:"basisPoints"`
}

// ClaimParam is one minimal-received claim entry on the wire.
type ClaimParam struct {
	Token  string `json:"token"`
	Amount uint64 `json:"amount"`
}

// MintParams carries a preview or commit request.
type MintParams struct {
	Caller    string       `json:"caller"`
	Fulfiller string       `json:"fulfiller"`
	Claim     []ClaimParam `json:"claim"`
	Payload   string       `json:"payload"`
}

func (p *MintParams) toRequest() (*drop.MintRequest, error) {
	fulfiller, err := parseAddress("fulfiller", p.Fulfiller)
	if err != nil {
		return nil, err
	}
	req := &drop.MintRequest{Fulfiller: fulfiller}
	if strings.TrimSpace(p.Caller) != "" {
		if req.Caller, err = parseAddress("caller", p.Caller); err != nil {
			return nil, err
		}
	} else {
		req.Caller = fulfiller
	}
	for i, item := range p.Claim {
		token, err := parseAddress(fmt.Sprintf("claim[%d].token", i), item.Token)
		if err != nil {
			return nil, err
		}
		req.Claim = append(req.Claim, drop.ClaimItem{Token: token, Amount: item.Amount})
	}
	if req.Context, err = parseBytes("payload", p.Payload); err != nil {
		return nil, err
	}
	return req, nil
}

// ObligationResult is one settlement transfer in a mint result.
type ObligationResult struct {
	Recipient string `json:"recipient"`
	Asset     string `json:"asset"`
	Amount    string `json:"amount"`
}

// MintResult is the wire form of a resolved mint.
type MintResult struct {
	Substandard string             `json:"substandard"`
	StageIndex  uint32             `json:"stageIndex"`
	Minter      string             `json:"minter"`
	Quantity    uint64             `json:"quantity"`
	UnitPrice   string             `json:"unitPrice"`
	Total       string             `json:"total"`
	Obligations []ObligationResult `json:"obligations"`
}

func mintResult(outcome *drop.MintOutcome) *MintResult {
	result := &MintResult{
		Substandard: outcome.Substandard.String(),
		StageIndex:  outcome.StageIndex,
		Minter:      formatAddress(outcome.Minter),
		Quantity:    outcome.Quantity,
		UnitPrice:   "0",
		Total:       "0",
	}
	if outcome.UnitPrice != nil {
		result.UnitPrice = outcome.UnitPrice.String()
	}
	if outcome.Total != nil {
		result.Total = outcome.Total.String()
	}
	for _, obligation := range outcome.Obligations {
		amount := "0"
		if obligation.Amount != nil {
			amount = obligation.Amount.String()
		}
		result.Obligations = append(result.Obligations, ObligationResult{
			Recipient: formatAddress(obligation.Recipient),
			Asset:     formatAddress(obligation.Asset),
			Amount:    amount,
		})
	}
	return result
}

func singleObjectParam(params []json.RawMessage, out interface{}) error {
	if len(params) != 1 {
		return fmt.Errorf("expected a single parameter object")
	}
	if err := json.Unmarshal(params[0], out); err != nil {
		return fmt.Errorf("invalid parameter object: %s", err)
	}
	return nil
}
