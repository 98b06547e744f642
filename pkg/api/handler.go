// Package api exposes the token and NFT lists over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

// DefaultRequestTimeout bounds a single list request, including every page
// walked by the paginator.
const DefaultRequestTimeout = 60 * time.Second

// ListService builds the published lists.
type ListService interface {
	TokenList(ctx context.Context, q tokenlist.Query) (*tokenlist.TokenList, error)
	NFTList(ctx context.Context, q tokenlist.Query) (*tokenlist.NFTList, error)
	Reviewers(ctx context.Context) ([]tokenlist.ReviewerInfo, error)
	NFTListReviewers(ctx context.Context) ([]tokenlist.ReviewerInfo, error)
}

// Handler serves the list API.
type Handler struct {
	service ListService
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHandler creates an API handler. A zero timeout uses DefaultRequestTimeout.
func NewHandler(service ListService, timeout time.Duration, logger zerolog.Logger) *Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Handler{service: service, timeout: timeout, logger: logger}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/token-list", h.tokenList)
	mux.HandleFunc("GET /api/token-list/{reviewer}", h.tokenList)
	mux.HandleFunc("GET /api/nft-list", h.nftList)
	mux.HandleFunc("GET /api/nft-list/{reviewer}", h.nftList)
	mux.HandleFunc("GET /api/reviewers", h.reviewers)
	mux.HandleFunc("GET /api/reviewers-for-nftlist", h.nftListReviewers)
	mux.HandleFunc("/api/", notFound)
}

// Routes returns the API routes wrapped in the API middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return Middleware(h.logger)(mux)
}

func (h *Handler) tokenList(w http.ResponseWriter, r *http.Request) {
	q, perr := parseQuery(r, tokenlist.CategoryToken, r.PathValue("reviewer"))
	if perr != nil {
		writeError(w, r, perr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.service.TokenList(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (h *Handler) nftList(w http.ResponseWriter, r *http.Request) {
	q, perr := parseQuery(r, tokenlist.CategoryNFT, r.PathValue("reviewer"))
	if perr != nil {
		writeError(w, r, perr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.service.NFTList(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (h *Handler) reviewers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviewers, err := h.service.Reviewers(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, reviewers)
}

func (h *Handler) nftListReviewers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviewers, err := h.service.NFTListReviewers(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, reviewers)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeErrorMessage(w, r, http.StatusNotFound, "Endpoint Not Found")
}
