package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/settings"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

const maxEventsPage = 500

// API is the read side of the lifecycle controller.
type API interface {
	SubscriptionsToUser(ctx context.Context, owner address.Address) (subscriptions.Subscription, error)
	GetUsersAllowed(ctx context.Context, owner address.Address) ([]address.Address, error)
	BalanceOf(ctx context.Context, holder address.Address, id uint64) (uint64, error)
	URI(ctx context.Context, id uint64) (string, error)
	ResolvedURI(ctx context.Context, id uint64) (string, error)
	Events(ctx context.Context, after int64, limit int) ([]events.Event, error)
	Settings(ctx context.Context) (settings.Settings, error)
	Catalog() classes.Catalog
}

type handlers struct {
	api API
	log *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type subscriptionResponse struct {
	Owner          address.Address `json:"owner"`
	ClassID        uint64          `json:"subscriptionClassId"`
	SeatLimit      int             `json:"seatLimit"`
	ExpirationDate int64           `json:"expirationDate"`
	Expired        bool            `json:"expired"`
}

type classResponse struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	SeatLimit int      `json:"seatLimit"`
	Durations []uint64 `json:"durations"`
}

type statusResponse struct {
	Owner   address.Address `json:"owner"`
	Paused  bool            `json:"paused"`
	URI     string          `json:"uri"`
	Classes []classResponse `json:"classes"`
}

type metadataResponse struct {
	ID       uint64 `json:"id"`
	URI      string `json:"uri"`
	Resolved string `json:"resolved"`
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	s, err := h.api.Settings(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	resp := statusResponse{Owner: s.Owner, Paused: s.Paused, URI: s.URI, Classes: []classResponse{}}
	for _, c := range h.api.Catalog().List() {
		resp.Classes = append(resp.Classes, classResponse{ID: c.ID, Name: c.Name, SeatLimit: c.SeatLimit, Durations: c.Durations})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) subscription(w http.ResponseWriter, r *http.Request) {
	owner, err := address.Parse(r.PathValue("owner"))
	if err != nil {
		h.fail(w, err)
		return
	}
	sub, err := h.api.SubscriptionsToUser(r.Context(), owner)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse{
		Owner:          owner,
		ClassID:        sub.ClassID,
		SeatLimit:      sub.SeatLimit,
		ExpirationDate: sub.ExpiresAt,
		Expired:        sub.Expired(time.Now()),
	})
}

func (h *handlers) users(w http.ResponseWriter, r *http.Request) {
	owner, err := address.Parse(r.PathValue("owner"))
	if err != nil {
		h.fail(w, err)
		return
	}
	users, err := h.api.GetUsersAllowed(r.Context(), owner)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handlers) balance(w http.ResponseWriter, r *http.Request) {
	owner, err := address.Parse(r.PathValue("owner"))
	if err != nil {
		h.fail(w, err)
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		h.fail(w, domainErr.ErrInvalidClass)
		return
	}
	bal, err := h.api.BalanceOf(r.Context(), owner, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance": bal})
}

func (h *handlers) metadata(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		h.fail(w, domainErr.ErrInvalidClass)
		return
	}
	uri, err := h.api.URI(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	resolved, err := h.api.ResolvedURI(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metadataResponse{ID: id, URI: uri, Resolved: resolved})
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var after int64
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "InvalidCursor", Kind: string(domainErr.KindValidation)})
			return
		}
		after = n
	}
	limit := 100
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "InvalidLimit", Kind: string(domainErr.KindValidation)})
			return
		}
		limit = min(n, maxEventsPage)
	}
	evs, err := h.api.Events(r.Context(), after, limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	kind, ok := domainErr.KindOf(err)
	if !ok {
		h.log.Error("http request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal", Kind: "internal"})
		return
	}
	writeJSON(w, statusFor(kind), errorResponse{Error: domainErr.Reason(err), Kind: string(kind)})
}

func statusFor(kind domainErr.Kind) int {
	switch kind {
	case domainErr.KindValidation:
		return http.StatusBadRequest
	case domainErr.KindStateConflict:
		return http.StatusConflict
	case domainErr.KindAuthorization:
		return http.StatusForbidden
	case domainErr.KindAvailability:
		return http.StatusServiceUnavailable
	case domainErr.KindTransfer:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON[T any](w http.ResponseWriter, status int, v T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
