package rpc

import (
	"net/http"
	"sort"
)

type getStageParams struct {
	StageIndex     uint32 `json:"stageIndex"`
	CompanionToken string `json:"companionToken"`
}

// handleGetStage returns a public stage by index, or a token-gated stage when
// companionToken is set.
func (s *Server) handleGetStage(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &getStageParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if params.CompanionToken != "" {
		token, err := parseAddress("companionToken", params.CompanionToken)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		stage, ok := s.engine.Registry().TokenGatedStage(token)
		if !ok {
			writeError(w, http.StatusOK, req.ID, codeServerError, "stage not present", nil)
			return
		}
		writeResult(w, req.ID, stageParams(stage))
		return
	}

	stage, ok := s.engine.Registry().PublicStage(params.StageIndex)
	if !ok {
		writeError(w, http.StatusOK, req.ID, codeServerError, "stage not present", nil)
		return
	}
	writeResult(w, req.ID, stageParams(stage))
}

type stageListResult struct {
	Public     []*StageParams          `json:"public"`
	TokenGated map[string]*StageParams `json:"tokenGated"`
}

func (s *Server) handleListStages(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registry := s.engine.Registry()
	result := &stageListResult{TokenGated: map[string]*StageParams{}}

	indexes := registry.PublicStageIndexes()
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })
	for _, index := range indexes {
		if stage, ok := registry.PublicStage(index); ok {
			result.Public = append(result.Public, stageParams(stage))
		}
	}
	for _, token := range registry.TokenGatedTokens() {
		if stage, ok := registry.TokenGatedStage(token); ok {
			result.TokenGated[formatAddress(token)] = stageParams(stage)
		}
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleGetAllowListRoot(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.mu.Lock()
	root := s.engine.Registry().AllowListRoot()
	s.mu.Unlock()
	writeResult(w, req.ID, map[string]string{"root": formatHash(root)})
}

type signerResult struct {
	Signer string              `json:"signer"`
	Bounds *SignerBoundsParams `json:"bounds"`
}

func (s *Server) handleListSigners(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registry := s.engine.Registry()
	results := make([]signerResult, 0)
	for _, signer := range registry.Signers() {
		bounds, ok := registry.SignerBounds(signer)
		if !ok {
			continue
		}
		minPrice := "0"
		if bounds.MinPrice != nil {
			minPrice = bounds.MinPrice.String()
		}
		results = append(results, signerResult{
			Signer: formatAddress(signer),
			Bounds: &SignerBoundsParams{
				PaymentAsset:   formatAddress(bounds.PaymentAsset),
				MinPrice:       minPrice,
				MaxPerWallet:   bounds.MaxPerWallet,
				MinStartTime:   bounds.MinStartTime,
				MaxEndTime:     bounds.MaxEndTime,
				MaxStageSupply: bounds.MaxStageSupply,
				MinFeeBps:      bounds.MinFeeBps,
				MaxFeeBps:      bounds.MaxFeeBps,
			},
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Signer < results[j].Signer })
	writeResult(w, req.ID, results)
}

func (s *Server) handleGetCreatorPayouts(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.mu.Lock()
	payouts := s.engine.Registry().CreatorPayouts()
	s.mu.Unlock()

	results := make([]PayoutParam, 0, len(payouts))
	for _, payout := range payouts {
		results = append(results, PayoutParam{
			Address:     formatAddress(payout.Address),
			BasisPoints: payout.BasisPoints,
		})
	}
	writeResult(w, req.ID, results)
}

type listAllowedParams struct {
	Set string `json:"set"`
}

func (s *Server) handleListAllowed(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &listAllowedParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}

	s.mu.Lock()
	members, err := s.engine.Registry().AllowedMembers(params.Set)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}

	encoded := make([]string, 0, len(members))
	for _, member := range members {
		encoded = append(encoded, formatAddress(member))
	}
	sort.Strings(encoded)
	writeResult(w, req.ID, encoded)
}
