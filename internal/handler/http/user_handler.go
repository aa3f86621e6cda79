package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/user-directory/internal/user"
)

type CurrentUserResult struct {
	UserInfo *user.Profile `json:"user_info"`
}

func (h *UserHandler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Count(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to count users via service")
		respondError(w, http.StatusOK, msgInternal)
		return
	}
	respondSuccess(w, msgCount, count)
}

// parseOffset treats a missing, malformed or negative start_after as 0.
func parseOffset(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (h *UserHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respondError(w, http.StatusForbidden, msgInvalidToken)
		return
	}

	summaries, err := h.service.Dashboard(r.Context(), id.UserID, parseOffset(r.URL.Query().Get("start_after")))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("user_id", id.UserID).Msg("Failed to load dashboard via service")
		respondError(w, http.StatusOK, msgInternal)
		return
	}

	respondSuccess(w, msgUserData, summaries)
}

func (h *UserHandler) handleCheckToken(w http.ResponseWriter, r *http.Request) {
	if _, ok := identityFrom(r); !ok {
		respondError(w, http.StatusForbidden, msgInvalidToken)
		return
	}
	respondSuccess(w, msgTokenValid, nil)
}

func (h *UserHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respondError(w, http.StatusForbidden, msgInvalidToken)
		return
	}

	profile, err := h.service.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusOK, msgUserNotFound)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("user_id", id.UserID).Msg("Failed to get current user via service")
		respondError(w, http.StatusOK, msgInternal)
		return
	}

	respondSuccess(w, msgCurrentUser, CurrentUserResult{UserInfo: profile})
}
