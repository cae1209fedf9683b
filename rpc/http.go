package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"dropmint/native/drop"
	"dropmint/observability/metrics"
	"dropmint/storage"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeMintRejected   = -32030
)

// Server exposes the drop engine over JSON-RPC. A single mutex serializes all
// engine access: previews, commits, and admin mutations.
type Server struct {
	mu        sync.Mutex
	engine    *drop.Engine
	ledger    *storage.MintLedger
	owners    *storage.OwnershipIndex
	db        storage.Database
	authToken string
}

// NewServer wires the RPC surface. The admin auth token is read from the
// DROPMINT_RPC_TOKEN environment variable; admin methods are rejected until it
// is configured.
func NewServer(engine *drop.Engine, ledger *storage.MintLedger, owners *storage.OwnershipIndex, db storage.Database) *Server {
	return &Server{
		engine:    engine,
		ledger:    ledger,
		owners:    owners,
		db:        db,
		authToken: strings.TrimSpace(os.Getenv("DROPMINT_RPC_TOKEN")),
	}
}

// Start serves JSON-RPC on addr until the listener fails.
func (s *Server) Start(addr string) error {
	slog.Info("starting JSON-RPC server", "addr", addr)
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	switch req.Method {
	case "drop_previewMint":
		s.handlePreviewMint(w, r, req)
	case "drop_mint":
		s.handleMint(w, r, req)
	case "drop_getStage":
		s.handleGetStage(w, r, req)
	case "drop_listStages":
		s.handleListStages(w, r, req)
	case "drop_getAllowListRoot":
		s.handleGetAllowListRoot(w, r, req)
	case "drop_listSigners":
		s.handleListSigners(w, r, req)
	case "drop_getCreatorPayouts":
		s.handleGetCreatorPayouts(w, r, req)
	case "drop_listAllowed":
		s.handleListAllowed(w, r, req)
	case "drop_setPublicStage":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleSetPublicStage(w, r, req)
	case "drop_removePublicStage":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleRemovePublicStage(w, r, req)
	case "drop_setTokenGatedStage":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleSetTokenGatedStage(w, r, req)
	case "drop_removeTokenGatedStage":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleRemoveTokenGatedStage(w, r, req)
	case "drop_setAllowListRoot":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleSetAllowListRoot(w, r, req)
	case "drop_setSignerBounds":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleSetSignerBounds(w, r, req)
	case "drop_removeSigner":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleRemoveSigner(w, r, req)
	case "drop_updateCreatorPayouts":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleUpdateCreatorPayouts(w, r, req)
	case "drop_updateAllowedSet":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleUpdateAllowedSet(w, r, req)
	case "drop_setOwner":
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleSetOwner(w, r, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
	}
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

// persistLocked writes the engine snapshot. Callers must hold s.mu.
func (s *Server) persistLocked() error {
	if s.db == nil {
		return nil
	}
	return storage.SaveDropState(s.db, s.engine.Snapshot())
}

var decodeErrors = []error{
	drop.ErrInvalidClaim,
	drop.ErrUnsupportedVersion,
	drop.ErrUnsupportedSubstandard,
	drop.ErrPayloadTruncated,
	drop.ErrValueOverflow,
}

func mintErrorCode(err error) int {
	for _, sentinel := range decodeErrors {
		if errors.Is(err, sentinel) {
			return codeInvalidParams
		}
	}
	return codeMintRejected
}

var rejectionReasons = []struct {
	err    error
	reason string
}{
	{drop.ErrStageNotPresent, "stage_not_present"},
	{drop.ErrStageNotActive, "stage_not_active"},
	{drop.ErrWalletCapExceeded, "wallet_cap"},
	{drop.ErrMaxSupplyExceeded, "max_supply"},
	{drop.ErrStageSupplyExceeded, "stage_supply"},
	{drop.ErrInvalidProof, "invalid_proof"},
	{drop.ErrInvalidSignature, "invalid_signature"},
	{drop.ErrSignatureReused, "signature_reused"},
	{drop.ErrSignerUnknown, "signer_unknown"},
	{drop.ErrCallerNotAllowed, "caller_not_allowed"},
	{drop.ErrPayerNotAllowed, "payer_not_allowed"},
	{drop.ErrFeeRecipientZero, "fee_recipient"},
	{drop.ErrFeeRecipientNotAllowed, "fee_recipient"},
	{drop.ErrTokenGatedNotOwner, "token_not_owned"},
	{drop.ErrTokenGatedCapExceeded, "token_redemption_cap"},
	{drop.ErrQuantityMismatch, "quantity_mismatch"},
}

func rejectionReason(err error) string {
	for _, entry := range rejectionReasons {
		if errors.Is(err, entry.err) {
			return entry.reason
		}
	}
	return "other"
}

func observeRejection(err error) {
	metrics.Drop().ObserveMintRejected(rejectionReason(err))
}
