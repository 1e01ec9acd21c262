package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/questup-api/internal/api/shared"
	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/platform/logger"
)

// CredentialHandler lets a signed-in user select the Gemini API key used for
// their generation calls. Keys live in memory only and are never echoed back.
type CredentialHandler struct {
	keys     *credential.SessionKeyStore
	fallback credential.Provider
	logger   *slog.Logger
}

// NewCredentialHandler creates a CredentialHandler. fallback is the
// server-wide credential, if any; it only affects the reported status.
func NewCredentialHandler(
	keys *credential.SessionKeyStore,
	fallback credential.Provider,
	logger *slog.Logger,
) *CredentialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialHandler{
		keys:     keys,
		fallback: fallback,
		logger:   logger.With(slog.String("component", "credential_handler")),
	}
}

// Select handles PUT /api/credentials.
func (h *CredentialHandler) Select(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req SelectCredentialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.keys.Select(userID.String(), req.APIKey); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("credential selected")
	shared.RespondWithJSON(w, r, http.StatusOK, CredentialStatusResponse{Selected: true})
}

// Clear handles DELETE /api/credentials.
func (h *CredentialHandler) Clear(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	h.keys.Clear(userID.String())
	log.Info("credential cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Status handles GET /api/credentials. A configured server-wide key counts
// as selected.
func (h *CredentialHandler) Status(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	selected := h.keys.Has(userID.String())
	if !selected && h.fallback != nil {
		if cred, err := h.fallback.Resolve(r.Context()); err == nil && cred != "" {
			selected = true
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CredentialStatusResponse{Selected: selected})
}
