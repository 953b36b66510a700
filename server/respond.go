package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a domain error onto a status and a safe message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, apperrors.ErrInternal.Error()
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		status, message = http.StatusBadRequest, apperrors.ErrInvalidRequest.Error()
	case apperrors.Is(err, apperrors.ErrAlreadyExists):
		status, message = http.StatusConflict, apperrors.ErrAlreadyExists.Error()
	case apperrors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, apperrors.ErrNotFound.Error()
	case apperrors.Is(err, apperrors.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error()
	case apperrors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, apperrors.ErrForbidden.Error()
	}
	if public, ok := apperrors.PublicMessage(err); ok {
		message = public
	}
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, message)
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeBody(w, r, v, true)
}

// decodeJSONLenient reads a single JSON object into v, ignoring unknown fields.
func decodeJSONLenient(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeBody(w, r, v, false)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, strict bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Public(apperrors.ErrInvalidRequest, "request body is required")
		}
		return apperrors.Public(apperrors.ErrInvalidRequest, "invalid request body: %s", err.Error())
	}
	return nil
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// credentialsForm is the credentials sign-in body, JSON or form encoded.
type credentialsForm struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl"`
}

func readCredentials(w http.ResponseWriter, r *http.Request) (credentialsForm, error) {
	if isFormRequest(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return credentialsForm{}, fmt.Errorf("[readCredentials] %w", err)
		}
		return credentialsForm{
			Email:       r.PostForm.Get("email"),
			Password:    r.PostForm.Get("password"),
			CallbackURL: r.PostForm.Get("callbackUrl"),
		}, nil
	}

	var form credentialsForm
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&form); err != nil {
		return credentialsForm{}, fmt.Errorf("[readCredentials] %w", err)
	}
	return form, nil
}
