package http

import (
	"net/http"
	"time"

	"tally/internal/core"
)

type transactionRequest struct {
	Kind       core.Kind  `json:"kind"`
	Amount     core.Money `json:"amount_cents"`
	AmountText string     `json:"amount,omitempty"`
	CategoryID string     `json:"category_id"`
	Note       string     `json:"note"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type changeRequest struct {
	Amount     core.Money `json:"amount_cents"`
	AmountText string     `json:"amount,omitempty"`
	CategoryID string     `json:"category_id"`
	Note       string     `json:"note"`
}

// resolveAmount picks between the two accepted amount encodings: the integer
// cent count under "amount_cents", or a decimal string under "amount"
// ("12.34" and "12,34" both work). The decimal form wins when present.
func resolveAmount(cents core.Money, text string) (core.Money, bool) {
	if text == "" {
		return cents, true
	}
	v, err := core.ParseDecimalToCents(text)
	if err != nil {
		return core.Money{}, false
	}
	return core.Money{Cents: v}, true
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	amount, ok := resolveAmount(req.Amount, req.AmountText)
	if !ok {
		badRequest(w, "amount must be a positive decimal")
		return
	}

	draft := core.Draft{
		OwnerID:    s.ownerID,
		Kind:       req.Kind,
		Amount:     amount,
		CategoryID: req.CategoryID,
		Note:       req.Note,
		OccurredAt: req.OccurredAt,
	}

	id, err := s.transactions.Create(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAnalytics()
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/transactions/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	kind, ok := parseKind(r)
	if !ok {
		badRequest(w, "kind must be expense or income")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req changeRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		amount, ok := resolveAmount(req.Amount, req.AmountText)
		if !ok {
			badRequest(w, "amount must be a positive decimal")
			return
		}
		change := core.Change{
			Amount:     amount,
			CategoryID: req.CategoryID,
			Note:       req.Note,
		}
		if err := s.transactions.Update(r.Context(), s.ownerID, id, kind, change); err != nil {
			writeError(w, r, err)
			return
		}
	case http.MethodDelete:
		if err := s.transactions.Delete(r.Context(), s.ownerID, id, kind); err != nil {
			writeError(w, r, err)
			return
		}
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		return
	}

	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	categoryID := r.URL.Query().Get("category_id")
	if categoryID == "" {
		badRequest(w, "category_id is required")
		return
	}

	notes, err := s.transactions.SuggestNotes(r.Context(), s.ownerID, categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"suggestions": notes})
}
