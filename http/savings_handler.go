package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"savings-calculator/domain"
	"savings-calculator/service"
)

type SavingsHandler struct {
	service *service.SessionService
}

func NewSavingsHandler(service *service.SessionService) *SavingsHandler {
	return &SavingsHandler{service: service}
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	ID      string              `json:"id"`
	Variant domain.Variant      `json:"variant"`
	Target  domain.Field        `json:"target,omitempty"`
	Plan    service.PlanView    `json:"plan"`
	Fields  []domain.FieldRange `json:"fields"`
}

type FieldsResponse struct {
	Variant domain.Variant      `json:"variant"`
	Fields  []domain.FieldRange `json:"fields"`
}

type CreateSessionRequest struct {
	Variant       string `json:"variant"`
	Target        string `json:"target"`
	AutoCalculate *bool  `json:"auto_calculate"`
}

// EditRequest carries a raw control change. Text is used when Value is
// absent, as typed into the number field.
type EditRequest struct {
	Field  string        `json:"field"`
	Value  *float64      `json:"value"`
	Text   string        `json:"text"`
	Source domain.Source `json:"source"`
}

type SetRequest struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
	Held  string  `json:"held"`
}

type RecomputeRequest struct {
	Target string `json:"target"`
}

type AutoCalculateRequest struct {
	Enabled bool `json:"enabled"`
}

// Fields returns the control configuration of a variant (default: the
// service's default variant).
func (h *SavingsHandler) Fields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	variant := h.service.DefaultPolicy().Variant
	if raw := r.URL.Query().Get("variant"); raw != "" {
		v, err := domain.ParseVariant(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		variant = v
	}

	writeJSON(w, http.StatusOK, FieldsResponse{
		Variant: variant,
		Fields:  domain.RangesFor(variant).Ordered(),
	})
}

func (h *SavingsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	session, err := h.service.Create(r.Context(), service.CreateOptions{
		Variant:       input.Variant,
		Target:        input.Target,
		AutoCalculate: input.AutoCalculate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(session))
}

// Session serves GET and DELETE on one session.
func (h *SavingsHandler) Session(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		session, err := h.service.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(session))
	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SavingsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var input EditRequest
	if !decodePost(w, r, &input) {
		return
	}
	field, err := domain.ParseField(input.Field)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	value := service.CoerceInput(input.Text)
	if input.Value != nil {
		value = *input.Value
	}
	source, err := domain.ParseSource(string(input.Source))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.service.Edit(r.Context(), r.PathValue("id"), field, value, source)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *SavingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var input SetRequest
	if !decodePost(w, r, &input) {
		return
	}
	field, err := domain.ParseField(input.Field)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	held, err := domain.ParseField(input.Held)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.service.Set(r.Context(), r.PathValue("id"), field, input.Value, held)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *SavingsHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	var input RecomputeRequest
	if !decodePost(w, r, &input) {
		return
	}
	target, err := domain.ParseField(input.Target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.service.Recompute(r.Context(), r.PathValue("id"), target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *SavingsHandler) AutoCalculate(w http.ResponseWriter, r *http.Request) {
	var input AutoCalculateRequest
	if !decodePost(w, r, &input) {
		return
	}

	session, err := h.service.SetAutoCalculate(r.Context(), r.PathValue("id"), input.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *SavingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.service.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func newSessionResponse(session domain.Session) SessionResponse {
	return SessionResponse{
		ID:      session.ID,
		Variant: session.Policy.Variant,
		Target:  session.Policy.Target,
		Plan:    service.NewPlanView(session.Plan, session.Policy),
		Fields:  domain.RangesFor(session.Policy.Variant).Ordered(),
	}
}

func decodePost(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrOutputField),
		errors.Is(err, domain.ErrAutoCalculateFixed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidField),
		errors.Is(err, domain.ErrInvalidHeld),
		errors.Is(err, domain.ErrInvalidVariant),
		errors.Is(err, domain.ErrInvalidSource),
		errors.Is(err, domain.ErrInvalidPolicy):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("savings request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeJSON encodes into a buffer first so a failed encode can still send 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Msg("error writing response")
	}
}
