package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/bookings"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxAdminPageSize = 100

// GetUserHandler returns the caller's session.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Success auth.SessionView `json:"success"`
		}{
			Success: s.sessionView(ClaimsFromContext(r.Context())),
		})
	}
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

// UpdateEmailHandler changes the stored email of the session user and
// reissues the session with the new address.
func (s *Server) UpdateEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())

		var req updateEmailRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}

		user, err := s.users.UpdateEmail(r.Context(), claims.ID, req.Email)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		updated, err := s.lifecycle.OnTokenUpdate(*claims, auth.ClaimsPatch{Email: &user.Email})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := s.issueSession(w, r, updated); err != nil {
			log.Err(err).Msg("failed to reissue session")
			writeError(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
			return
		}

		log.Info().Str("user_id", user.ID).Msg("email changed")
		writeJSON(w, http.StatusOK, successResponse{Success: "Email changed"})
	}
}

// CreateBookingHandler books an activity for the session user.
func (s *Server) CreateBookingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())

		var params bookings.CreateParams
		if err := decodeJSON(w, r, &params); err != nil {
			writeServiceError(w, r, err)
			return
		}

		booking, err := s.bookings.Create(r.Context(), claims.ID, params)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		s.metrics.RecordBookingCreated(booking.Activity)
		writeJSON(w, http.StatusCreated, booking)
	}
}

// ListBookingsHandler returns the session user's bookings, earliest first.
func (s *Server) ListBookingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.bookings.ListForUser(r.Context(), ClaimsFromContext(r.Context()).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if list == nil {
			list = []*bookings.Booking{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// DirectoryHandler lists the email and name of every user.
func (s *Server) DirectoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.users.Directory(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// AdminUsersHandler lists users for administrators. Supports ?offset= and ?limit=.
func (s *Server) AdminUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, err := queryInt(r, "offset", 0)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		limit, err := queryInt(r, "limit", maxAdminPageSize)
		if err != nil || limit <= 0 || limit > maxAdminPageSize {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxAdminPageSize))
			return
		}

		list, err := s.users.List(r.Context(), offset, limit)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
