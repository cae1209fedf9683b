package rpc

import (
	"fmt"
	"net/http"

	"dropmint/native/drop"
	"dropmint/observability/metrics"
)

type statusResult struct {
	Status string `json:"status"`
}

var okResult = &statusResult{Status: "ok"}

// mutate runs fn under the server lock and persists the engine snapshot when
// it succeeds.
func (s *Server) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	return s.persistLocked()
}

type setPublicStageParams struct {
	StageIndex uint32       `json:"stageIndex"`
	Stage      *StageParams `json:"stage"`
}

func (s *Server) handleSetPublicStage(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &setPublicStageParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if params.Stage == nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "stage required", nil)
		return
	}
	stage, err := params.Stage.toStage()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		return s.engine.Registry().UpsertPublicStage(params.StageIndex, stage)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("public")
	writeResult(w, req.ID, okResult)
}

type removePublicStageParams struct {
	StageIndex uint32 `json:"stageIndex"`
}

func (s *Server) handleRemovePublicStage(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &removePublicStageParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		return s.engine.Registry().RemovePublicStage(params.StageIndex)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("public")
	writeResult(w, req.ID, okResult)
}

type setTokenGatedStageParams struct {
	CompanionToken string       `json:"companionToken"`
	Stage          *StageParams `json:"stage"`
}

func (s *Server) handleSetTokenGatedStage(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &setTokenGatedStageParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	token, err := parseAddress("companionToken", params.CompanionToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if params.Stage == nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "stage required", nil)
		return
	}
	stage, err := params.Stage.toStage()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		return s.engine.Registry().UpsertTokenGatedStage(token, stage)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("tokengated")
	writeResult(w, req.ID, okResult)
}

type removeTokenGatedStageParams struct {
	CompanionToken string `json:"companionToken"`
}

func (s *Server) handleRemoveTokenGatedStage(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &removeTokenGatedStageParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	token, err := parseAddress("companionToken", params.CompanionToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		return s.engine.Registry().RemoveTokenGatedStage(token)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("tokengated")
	writeResult(w, req.ID, okResult)
}

type setAllowListRootParams struct {
	Root string `json:"root"`
}

func (s *Server) handleSetAllowListRoot(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &setAllowListRootParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	root, err := parseHash("root", params.Root)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		s.engine.Registry().SetAllowListRoot(root)
		return nil
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("allowlist")
	writeResult(w, req.ID, okResult)
}

type setSignerBoundsParams struct {
	Signer string              `json:"signer"`
	Bounds *SignerBoundsParams `json:"bounds"`
}

func (s *Server) handleSetSignerBounds(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &setSignerBoundsParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	signer, err := parseAddress("signer", params.Signer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if params.Bounds == nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "bounds required", nil)
		return
	}
	bounds, err := params.Bounds.toBounds()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		return s.engine.Registry().UpsertSignerBounds(signer, bounds)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("signer")
	writeResult(w, req.ID, okResult)
}

type removeSignerParams struct {
	Signer string `json:"signer"`
}

func (s *Server) handleRemoveSigner(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &removeSignerParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	signer, err := parseAddress("signer", params.Signer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		return s.engine.Registry().RemoveSigner(signer)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("signer")
	writeResult(w, req.ID, okResult)
}

type updateCreatorPayoutsParams struct {
	Payouts []PayoutParam `json:"payouts"`
}

func (s *Server) handleUpdateCreatorPayouts(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &updateCreatorPayoutsParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	payouts := make([]drop.CreatorPayout, 0, len(params.Payouts))
	for i, payout := range params.Payouts {
		addr, err := parseAddress(fmt.Sprintf("payouts[%d].address", i), payout.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		payouts = append(payouts, drop.CreatorPayout{Address: addr, BasisPoints: payout.BasisPoints})
	}
	if err := s.mutate(func() error {
		return s.engine.Registry().UpdateCreatorPayouts(payouts)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("payouts")
	writeResult(w, req.ID, okResult)
}

type updateAllowedSetParams struct {
	Set     string `json:"set"`
	Member  string `json:"member"`
	Allowed bool   `json:"allowed"`
}

func (s *Server) handleUpdateAllowedSet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &updateAllowedSetParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	member, err := parseAddress("member", params.Member)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.mutate(func() error {
		if params.Allowed {
			return s.engine.Registry().AddAllowed(params.Set, member)
		}
		return s.engine.Registry().RemoveAllowed(params.Set, member)
	}); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	metrics.Drop().ObserveStageUpdate("allowed_set")
	writeResult(w, req.ID, okResult)
}

type setOwnerParams struct {
	CompanionToken string `json:"companionToken"`
	TokenID        string `json:"tokenId"`
	Owner          string `json:"owner"`
}

// handleSetOwner registers companion-token ownership in the administrative
// ownership index.
func (s *Server) handleSetOwner(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := &setOwnerParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if s.owners == nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, "ownership index not configured", nil)
		return
	}
	token, err := parseAddress("companionToken", params.CompanionToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	owner, err := parseAddress("owner", params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	tokenID, err := parseBigInt("tokenId", params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.owners.SetOwner(token, tokenID, owner); err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, okResult)
}
