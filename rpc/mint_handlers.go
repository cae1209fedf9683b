package rpc

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"dropmint/observability/metrics"
)

var tracer = otel.Tracer("dropmint/rpc")

func (s *Server) handlePreviewMint(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	params := &MintParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	mintReq, err := params.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}

	_, span := tracer.Start(r.Context(), "drop.previewMint")
	defer span.End()

	s.mu.Lock()
	outcome, err := s.engine.PreviewMint(mintReq)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusOK, req.ID, mintErrorCode(err), err.Error(), nil)
		return
	}
	metrics.Drop().ObservePreview()
	writeResult(w, req.ID, mintResult(outcome))
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	params := &MintParams{}
	if err := singleObjectParam(req.Params, params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	mintReq, err := params.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}

	_, span := tracer.Start(r.Context(), "drop.mint")
	defer span.End()

	s.mu.Lock()
	outcome, err := s.engine.Mint(mintReq)
	if err != nil {
		s.mu.Unlock()
		observeRejection(err)
		writeError(w, http.StatusOK, req.ID, mintErrorCode(err), err.Error(), nil)
		return
	}
	if s.ledger != nil {
		if recordErr := s.ledger.Record(outcome.Minter, outcome.Quantity); recordErr != nil {
			slog.Error("failed to record mint", "error", recordErr)
		}
	}
	if persistErr := s.persistLocked(); persistErr != nil {
		slog.Error("failed to persist drop state", "error", persistErr)
	}
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("drop.substandard", outcome.Substandard.String()),
		attribute.Int64("drop.quantity", int64(outcome.Quantity)),
	)
	metrics.Drop().ObserveMintSettled(outcome.Substandard.String(), outcome.StageIndex, outcome.Quantity)
	writeResult(w, req.ID, mintResult(outcome))
}
