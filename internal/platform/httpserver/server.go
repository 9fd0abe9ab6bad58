package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	votingledger "parkpulse/contexts/governance/voting-ledger"
	ledgererrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
	ledgerhttp "parkpulse/contexts/governance/voting-ledger/transport/http"
	"parkpulse/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "parkpulse/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	ledger   votingledger.Module
	adminKey string
	metrics  *metrics.Metrics
}

func New(
	ledger votingledger.Module,
	logger *slog.Logger,
	addr string,
	adminKey string,
	ledgerMetrics *metrics.Metrics,
	registry *prometheus.Registry,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		ledger:   ledger,
		adminKey: adminKey,
		metrics:  ledgerMetrics,
	}
	s.registerRoutes(registry)
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes(registry *prometheus.Registry) {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if registry != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/proposals", s.handleListActiveProposals)
	s.mux.HandleFunc("GET /api/proposals/closed", s.handleListClosedProposals)
	s.mux.HandleFunc("GET /api/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /api/create-proposal", s.handleCreateProposal)
	s.mux.HandleFunc("POST /api/proposals/{proposal_id}/vote", s.handleCastVote)
	s.mux.HandleFunc("GET /api/proposals/{proposal_id}/votes/{address}", s.handleUserVote)
	s.mux.HandleFunc("GET /api/ledger-info", s.handleLedgerInfo)

	s.mux.HandleFunc("POST /api/proposals/{proposal_id}/resolve", s.handleResolveProposal)
	s.mux.HandleFunc("POST /api/proposals/{proposal_id}/force-close", s.handleForceCloseProposal)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListActiveProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListActiveProposalsHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListClosedProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListClosedProposalsHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Creator) == "" {
		req.Creator = strings.TrimSpace(r.Header.Get("X-Voter-Address"))
	}

	resp, err := s.ledger.Handler.CreateProposalHandler(r.Context(), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ProposalsCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	voter := strings.TrimSpace(r.Header.Get("X-Voter-Address"))
	if voter == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_voter", "X-Voter-Address header is required")
		return
	}

	var req ledgerhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.CastVoteHandler(r.Context(), proposalID, voter, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if s.metrics != nil {
		choice := "no"
		if resp.Data.Choice {
			choice = "yes"
		}
		s.metrics.VotesCast.WithLabelValues(choice).Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserVote(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	address := strings.TrimSpace(r.PathValue("address"))
	if address == "" {
		writeLedgerError(w, http.StatusBadRequest, "invalid_address", "voter address is required")
		return
	}
	resp, err := s.ledger.Handler.UserVoteHandler(r.Context(), proposalID, address)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedgerInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.LedgerInfoHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveProposal(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeAdmin(w, r) {
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.ResolveProposalHandler(r.Context(), s.ledger.Capability, proposalID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ProposalsResolved.WithLabelValues(resp.Data.Status).Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleForceCloseProposal(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeAdmin(w, r) {
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.ForceCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.ForceCloseProposalHandler(r.Context(), s.ledger.Capability, proposalID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ProposalsResolved.WithLabelValues(resp.Data.Status).Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

// authorizeAdmin gates resolution routes on the configured API key. The
// capability handle itself never leaves the process; the key only selects
// whether the request is allowed to use it.
func (s *Server) authorizeAdmin(w http.ResponseWriter, r *http.Request) bool {
	provided := strings.TrimSpace(r.Header.Get("X-Admin-Key"))
	if s.adminKey == "" || provided != s.adminKey {
		s.logger.Warn("admin request rejected",
			"event", "http_admin_rejected",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"path", r.URL.Path,
			"client_ip", resolveClientIP(r),
		)
		writeLedgerError(w, http.StatusUnauthorized, "unauthorized", "valid X-Admin-Key header is required")
		return false
	}
	return true
}

func parseProposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("proposal_id")
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be a positive integer")
		return 0, false
	}
	return proposalID, true
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidInput):
		writeLedgerError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, ledgererrors.ErrProposalNotFound):
		writeLedgerError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrAlreadyVoted):
		writeLedgerError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, ledgererrors.ErrProposalNotActive):
		writeLedgerError(w, http.StatusConflict, "proposal_not_active", err.Error())
	case errors.Is(err, ledgererrors.ErrVotingClosed):
		writeLedgerError(w, http.StatusConflict, "voting_closed", err.Error())
	case errors.Is(err, ledgererrors.ErrVotingOpen):
		writeLedgerError(w, http.StatusConflict, "voting_open", err.Error())
	case errors.Is(err, ledgererrors.ErrUnauthorized):
		writeLedgerError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
