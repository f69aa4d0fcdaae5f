package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"docask/internal/domain"
	"docask/internal/service"
)

// AskRequest is the body of a question request.
type AskRequest struct {
	Question string `json:"question" validate:"required"`
	TopK     int    `json:"top_k" validate:"gte=0,lte=50"`
}

// AskResponse carries the answer and the chunks that backed it.
type AskResponse struct {
	Answer       string          `json:"answer"`
	Sources      []domain.Source `json:"sources"`
	RelevantDocs []string        `json:"relevant_docs,omitempty"`
}

// AskHandler answers questions through the synthesizer pipeline.
type AskHandler struct {
	synthesizer *service.Synthesizer
	validate    *validator.Validate
	timeout     time.Duration
	logger      arbor.ILogger
}

// NewAskHandler creates an ask handler.
func NewAskHandler(synthesizer *service.Synthesizer, timeout time.Duration, logger arbor.ILogger) *AskHandler {
	return &AskHandler{
		synthesizer: synthesizer,
		validate:    validator.New(),
		timeout:     timeout,
		logger:      logger,
	}
}

// HandleAsk handles POST /ask requests.
func (h *AskHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	started := time.Now()
	answer := h.synthesizer.Answer(ctx, req.Question, req.TopK)

	h.logger.Info().
		Int("sources", len(answer.Sources)).
		Dur("duration", time.Since(started)).
		Msg("Question answered")

	WriteJSON(w, http.StatusOK, AskResponse{
		Answer:       answer.Answer,
		Sources:      answer.Sources,
		RelevantDocs: relevantDocs(answer.Sources),
	})
}

// relevantDocs deduplicates source filenames, preserving rank order.
func relevantDocs(sources []domain.Source) []string {
	seen := make(map[string]struct{}, len(sources))
	var docs []string
	for _, s := range sources {
		if _, ok := seen[s.Source]; ok {
			continue
		}
		seen[s.Source] = struct{}{}
		docs = append(docs, s.Source)
	}
	return docs
}
