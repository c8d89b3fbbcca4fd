package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
)

const destinationSuffix = "@s.whatsapp.net"

// StatusHandler reports the connection state for a profile. It never fails
// for a known profile; unknown profiles are rejected before the session
// registry is touched.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := r.URL.Query().Get("profileId")
		if profileID == "" {
			writeError(w, http.StatusBadRequest, "profileId is required")
			return
		}

		sess, err := s.sessions.Session(profileID)
		if err != nil {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeJSON(w, http.StatusOK, sess.Status())
	}
}

// QRHandler returns the current pairing code for a profile. With force=true
// the session is reset first, discarding credentials and counters.
func (s *Server) QRHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := r.URL.Query().Get("profileId")
		if profileID == "" {
			writeError(w, http.StatusBadRequest, "profileId is required")
			return
		}

		sess, err := s.sessions.Session(profileID)
		if err != nil {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}

		if r.URL.Query().Get("force") == "true" {
			if err := sess.ForceReset(r.Context()); err != nil {
				s.log.Err(err).Str("profile_id", profileID).Msg("Forced reset failed")
				writeError(w, http.StatusInternalServerError, "failed to reset session")
				return
			}
		}

		qr, err := sess.CurrentQR(r.Context())
		if apperrors.Is(err, apperrors.ErrQRUnavailable) {
			writeError(w, http.StatusNotFound, "QR unavailable: generation limit reached")
			return
		}
		if err != nil {
			s.log.Err(err).Str("profile_id", profileID).Msg("Failed to obtain pairing code")
			writeError(w, http.StatusInternalServerError, "failed to obtain QR code")
			return
		}
		if qr == "" {
			writeError(w, http.StatusNotFound, "QR not available")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"qr": qr})
	}
}

type sendRequest struct {
	ProfileID string `json:"profileId"`
	Number    string `json:"number"`
	Message   string `json:"message"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendHandler forwards a text message over a connected session.
func (s *Server) SendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProfileID == "" || req.Number == "" || req.Message == "" {
			writeError(w, http.StatusBadRequest, "profileId, number and message are required")
			return
		}

		sess, err := s.sessions.Session(req.ProfileID)
		if err != nil {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}

		err = sess.Send(r.Context(), formatDestination(req.Number), req.Message)
		switch {
		case apperrors.Is(err, apperrors.ErrNotConnected):
			writeJSON(w, http.StatusConflict, sendResponse{Success: false, Error: "session not connected"})
		case err != nil:
			s.log.Err(err).Str("profile_id", req.ProfileID).Msg("Failed to send message")
			writeJSON(w, http.StatusBadGateway, sendResponse{Success: false, Error: "failed to send message"})
		default:
			writeJSON(w, http.StatusOK, sendResponse{Success: true, Message: "message sent"})
		}
	}
}

type resetRequest struct {
	ProfileID string `json:"profileId"`
}

// ResetHandler initiates a forced reset and acknowledges before the reset
// completes. Teardown, credential deletion and the fresh dial run in the
// background; a concurrent reset for the same profile piggybacks on the
// in-flight one.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProfileID == "" {
			writeError(w, http.StatusBadRequest, "profileId is required")
			return
		}

		sess, err := s.sessions.Session(req.ProfileID)
		if err != nil {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}

		// Detached from the request context: the reset keeps going after
		// the acknowledgment is written.
		go func() {
			if err := sess.ForceReset(context.Background()); err != nil {
				s.log.Err(err).Str("profile_id", req.ProfileID).Msg("Forced reset failed")
			}
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "reset initiated"})
	}
}

type assignFlowRequest struct {
	ProfileID string `json:"profileId"`
	FlowID    string `json:"flowId"`
}

// AssignFlowHandler attaches a flow to the profile's chatbot, bounded by
// the configured per-profile flow limit.
func (s *Server) AssignFlowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignFlowRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProfileID == "" || req.FlowID == "" {
			writeError(w, http.StatusBadRequest, "profileId and flowId are required")
			return
		}

		err := s.sessions.AssignFlow(req.ProfileID, req.FlowID)
		switch {
		case apperrors.Is(err, apperrors.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "profile not found")
		case apperrors.Is(err, apperrors.ErrFlowNotFound):
			writeError(w, http.StatusNotFound, "flow not found")
		case apperrors.Is(err, apperrors.ErrCapacityExceeded):
			writeError(w, http.StatusConflict, "profile already has the maximum number of flows assigned")
		case err != nil:
			s.log.Err(err).Str("profile_id", req.ProfileID).Msg("Failed to assign flow")
			writeError(w, http.StatusInternalServerError, "failed to assign flow")
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "flow assigned"})
		}
	}
}

// formatDestination normalizes a phone number into a transport address:
// anything not already carrying the transport suffix is reduced to its
// digits and suffixed.
func formatDestination(number string) string {
	if strings.Contains(number, destinationSuffix) {
		return number
	}
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String() + destinationSuffix
}
