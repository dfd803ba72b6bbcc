package ticket_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-park-access/internal/identity"
	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
	"ms-park-access/internal/tickets/db"
	ticketsredis "ms-park-access/internal/tickets/redis"
	tickets "ms-park-access/internal/tickets/service"
)

type Handler struct {
	TicketService *tickets.TicketService
	Guard         *ticketsredis.ScanGuard
	Logger        *logger.Logger
}

func NewHandler(service *tickets.TicketService, guard *ticketsredis.ScanGuard, log *logger.Logger) *Handler {
	return &Handler{
		TicketService: service,
		Guard:         guard,
		Logger:        log,
	}
}

// Routes wires the ticket endpoints onto a fresh router. The gateway
// dispatches both the /tickets and /validate prefixes here.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/tickets", func(r chi.Router) {
		r.Post("/", h.IssueTicket)
		r.Get("/", h.ListTickets)
		r.Get("/holder/{holderID}", h.ListTicketsByHolder)
		r.Get("/{ticketID}", h.GetTicket)
	})
	r.Post("/validate/{ticketID}", h.ValidateTicket)
	return r
}

// IssueTicket handles POST /tickets.
func (h *Handler) IssueTicket(w http.ResponseWriter, r *http.Request) {
	var req models.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("IssueTicket: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.IssueTicket(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("IssueTicket: issuance failed for holder %s: %v", req.HolderID, err))
		switch {
		case errors.Is(err, tickets.ErrInvalidRequest):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, identity.ErrUnknownHolder):
			http.Error(w, "Holder not found (verified via gateway)", http.StatusNotFound)
		case errors.Is(err, identity.ErrVerificationUnavailable):
			http.Error(w, "Could not verify holder via gateway", http.StatusConflict)
		case errors.Is(err, tickets.ErrIssuanceConflict):
			http.Error(w, "Ticket id conflict, please retry", http.StatusConflict)
		default:
			http.Error(w, "Failed to create ticket", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ticket); err != nil {
		h.Logger.Error("API", fmt.Sprintf("IssueTicket: failed to encode response: %v", err))
	}
}

// ValidateTicket handles POST /validate/{ticketID}, the turnstile call.
func (h *Handler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	if h.Guard != nil && !h.Guard.FirstScan(r.Context(), ticketID) {
		result := &models.ValidationResult{
			Allowed: false,
			Reason:  "duplicate scan",
		}
		// Denials still carry the holder for downstream audit.
		if ticket, err := h.TicketService.GetTicket(r.Context(), ticketID); err == nil {
			result.HolderID = ticket.HolderID
		}
		h.writeValidation(w, http.StatusForbidden, result)
		return
	}

	result, err := h.TicketService.ValidateTicket(r.Context(), ticketID, time.Now())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeValidation(w, http.StatusNotFound, &models.ValidationResult{
				Allowed: false,
				Reason:  "ticket not found",
			})
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ValidateTicket: validation failed for %s: %v", ticketID, err))
		http.Error(w, "Failed to validate ticket", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !result.Allowed {
		status = http.StatusForbidden
	}
	h.writeValidation(w, status, result)
}

// GetTicket handles GET /tickets/{ticketID}.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	ticket, err := h.TicketService.GetTicket(r.Context(), ticketID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Ticket not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetTicket: lookup failed for %s: %v", ticketID, err))
		http.Error(w, "Failed to fetch ticket", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, ticket)
}

// ListTickets handles GET /tickets.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	all, err := h.TicketService.ListTickets(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTickets: %v", err))
		http.Error(w, "Failed to fetch tickets", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, all)
}

// ListTicketsByHolder handles GET /tickets/holder/{holderID}. Holders without
// tickets get an empty list.
func (h *Handler) ListTicketsByHolder(w http.ResponseWriter, r *http.Request) {
	holderID := chi.URLParam(r, "holderID")

	result, err := h.TicketService.GetTicketsByHolder(r.Context(), holderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTicketsByHolder: %v", err))
		http.Error(w, "Failed to fetch tickets", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode response: %v", err))
	}
}

func (h *Handler) writeValidation(w http.ResponseWriter, status int, result *models.ValidationResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode validation response: %v", err))
	}
}
