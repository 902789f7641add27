package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kataras/golog"

	"qompath/internal/llm"
	"qompath/internal/service"
)

// GenerateHandler handles document generation and the draft buffer
type GenerateHandler struct {
	svc *service.GenerationService
}

// NewGenerateHandler creates a new generation handler
func NewGenerateHandler(svc *service.GenerationService) *GenerateHandler {
	return &GenerateHandler{svc: svc}
}

// GenerateRequest carries the user's free-text prompt
type GenerateRequest struct {
	UserPrompt string `json:"userPrompt"`
}

// GenerateResponse is either {json} or {error, rawContent?}
type GenerateResponse struct {
	JSON       string `json:"json,omitempty"`
	DraftID    string `json:"draftId,omitempty"`
	Error      string `json:"error,omitempty"`
	RawContent string `json:"rawContent,omitempty"`
}

// Generate drafts a document from a prompt. The live graph is not changed.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, GenerateResponse{Error: "Invalid request body"}, http.StatusBadRequest)
		return
	}

	draft, err := h.svc.Generate(r.Context(), req.UserPrompt)
	if err == nil {
		writeJSON(w, GenerateResponse{JSON: draft.Text, DraftID: draft.ID}, http.StatusOK)
		return
	}

	var (
		invalid  *service.InvalidDocumentError
		upstream *llm.UpstreamError
	)
	switch {
	case errors.Is(err, service.ErrEmptyPrompt):
		writeJSON(w, GenerateResponse{Error: "User prompt is required"}, http.StatusBadRequest)
	case errors.Is(err, llm.ErrMissingCredential):
		writeJSON(w, GenerateResponse{Error: "API key not configured"}, http.StatusInternalServerError)
	case errors.As(err, &invalid):
		writeJSON(w, GenerateResponse{
			Error:      "Generated content was not a valid document.",
			DraftID:    invalid.DraftID,
			RawContent: invalid.Raw,
		}, http.StatusInternalServerError)
	case errors.As(err, &upstream):
		status := upstream.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSON(w, GenerateResponse{Error: upstream.Message}, status)
	case errors.Is(err, llm.ErrEmptyCompletion):
		writeJSON(w, GenerateResponse{Error: "Failed to generate content"}, http.StatusInternalServerError)
	default:
		golog.Errorf("handler: generation failed: %v", err)
		writeJSON(w, GenerateResponse{Error: "Internal Server Error"}, http.StatusInternalServerError)
	}
}

// GetLatestDraft returns the most recently settled draft
func (h *GenerateHandler) GetLatestDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.LatestDraft(r.Context())
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, draft, http.StatusOK)
}

// ListDrafts returns recorded drafts, newest first
func (h *GenerateHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.svc.ListDrafts(r.Context(), 0)
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, drafts, http.StatusOK)
}

// GetDraft returns one draft
func (h *GenerateHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.GetDraft(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, draft, http.StatusOK)
}

// ApplyDraft replaces the live graph with a ready draft
func (h *GenerateHandler) ApplyDraft(w http.ResponseWriter, r *http.Request) {
	change, err := h.svc.ApplyDraft(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, change, http.StatusOK)
}

func (h *GenerateHandler) writeDraftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDraftNotFound):
		writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrDraftNotApplicable):
		writeError(w, "Draft cannot be applied", err.Error(), http.StatusConflict)
	default:
		golog.Errorf("handler: draft request failed: %v", err)
		writeError(w, "Draft request failed", err.Error(), http.StatusInternalServerError)
	}
}
