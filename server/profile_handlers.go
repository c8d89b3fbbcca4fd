package server

import (
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
	"github.com/botwire/go-wa-gateway/profiles"
)

type createProfileRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	EnterpriseID string `json:"enterpriseId"`
}

// CreateProfileHandler registers a new profile in the directory.
func (s *Server) CreateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProfileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		if _, err := s.profiles.GetByEmail(req.Email); err == nil {
			writeError(w, http.StatusConflict, "profile with this email already exists")
			return
		}

		passwordHash, err := profiles.HashPassword(req.Password)
		if err != nil {
			s.log.Err(err).Msg("Failed to hash profile password")
			writeError(w, http.StatusInternalServerError, "failed to create profile")
			return
		}

		profile := &profiles.Profile{
			ID:           uuid.New().String(),
			Email:        req.Email,
			Name:         req.Name,
			EnterpriseID: req.EnterpriseID,
			PasswordHash: passwordHash,
			Available:    true,
		}
		if err := s.profiles.Upsert(profile); err != nil {
			s.log.Err(err).Msg("Failed to store profile")
			writeError(w, http.StatusInternalServerError, "failed to create profile")
			return
		}
		writeJSON(w, http.StatusCreated, profile)
	}
}

func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := r.PathValue("profileID")
		profile, err := s.profiles.Get(profileID)
		if apperrors.Is(err, apperrors.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		if err != nil {
			s.log.Err(err).Str("profile_id", profileID).Msg("Failed to fetch profile")
			writeError(w, http.StatusInternalServerError, "failed to fetch profile")
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// DeleteProfileHandler removes a profile, its live session and its stored
// credentials.
func (s *Server) DeleteProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := r.PathValue("profileID")
		if _, err := s.profiles.Get(profileID); err != nil {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		if err := s.profiles.Delete(profileID); err != nil {
			s.log.Err(err).Str("profile_id", profileID).Msg("Failed to delete profile")
			writeError(w, http.StatusInternalServerError, "failed to delete profile")
			return
		}
		s.sessions.Remove(profileID)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}
