package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"scadenze/internal/core"
)

type billRequest struct {
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	DueDate         string `json:"due_date"`
	Frequency       string `json:"notification_frequency"`
	ReminderEnabled bool   `json:"reminder_enabled"`
}

// handleBills serves the bill collection: list, create, clear.
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		bills, err := s.bills.List(r.Context(), profile.ID)
		if err != nil {
			slog.ErrorContext(r.Context(), "Bill list failed", "user_id", profile.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not list bills")
			return
		}
		writeJSON(w, http.StatusOK, toBillPayloads(bills))

	case http.MethodPost:
		var req billRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		bill, errMsg := billFromRequest(req)
		if errMsg != "" {
			writeError(w, http.StatusUnprocessableEntity, errMsg)
			return
		}

		created, err := s.bills.Add(r.Context(), profile.ID, bill)
		if err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Bill create failed", "user_id", profile.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not create bill")
			return
		}

		s.invalidateProjections(profile.ID)
		writeJSON(w, http.StatusCreated, toBillPayload(*created))

	case http.MethodDelete:
		if err := s.bills.ClearAll(r.Context(), profile.ID); err != nil {
			slog.ErrorContext(r.Context(), "Bill clear failed", "user_id", profile.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not clear bills")
			return
		}
		s.invalidateProjections(profile.ID)
		writeJSON(w, http.StatusOK, nil)

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleBillByID serves a single bill: partial update and delete.
func (s *Server) handleBillByID(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/bills/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "bill not found")
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var req billPatchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		patch, errMsg := patchFromRequest(req)
		if errMsg != "" {
			writeError(w, http.StatusUnprocessableEntity, errMsg)
			return
		}

		updated, err := s.bills.Update(r.Context(), profile.ID, id, patch)
		if err != nil {
			if errors.Is(err, core.ErrBillNotFound) {
				writeError(w, http.StatusNotFound, "bill not found")
				return
			}
			if isValidationError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Bill update failed", "user_id", profile.ID, "bill_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "could not update bill")
			return
		}

		s.invalidateProjections(profile.ID)
		writeJSON(w, http.StatusOK, toBillPayload(*updated))

	case http.MethodDelete:
		if err := s.bills.Delete(r.Context(), profile.ID, id); err != nil {
			if errors.Is(err, core.ErrBillNotFound) {
				writeError(w, http.StatusNotFound, "bill not found")
				return
			}
			slog.ErrorContext(r.Context(), "Bill delete failed", "user_id", profile.ID, "bill_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "could not delete bill")
			return
		}

		s.invalidateProjections(profile.ID)
		writeJSON(w, http.StatusOK, nil)

	default:
		w.Header().Set("Allow", "PUT, PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// billPatchRequest uses pointers so absent fields stay untouched.
type billPatchRequest struct {
	Name            *string `json:"name"`
	Amount          *string `json:"amount"`
	DueDate         *string `json:"due_date"`
	Frequency       *string `json:"notification_frequency"`
	ReminderEnabled *bool   `json:"reminder_enabled"`
}

func billFromRequest(req billRequest) (core.Bill, string) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Bill{}, "invalid amount"
	}
	dueDate, err := core.ParseDate(req.DueDate)
	if err != nil {
		return core.Bill{}, "invalid due date, expected yyyy-mm-dd"
	}

	return core.Bill{
		Name:            sanitizeInput(req.Name),
		Amount:          amount,
		DueDate:         dueDate,
		Frequency:       core.NotificationFrequency(req.Frequency),
		ReminderEnabled: req.ReminderEnabled,
	}, ""
}

func patchFromRequest(req billPatchRequest) (core.BillPatch, string) {
	var patch core.BillPatch

	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		patch.Name = &name
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return core.BillPatch{}, "invalid amount"
		}
		patch.Amount = &amount
	}
	if req.DueDate != nil {
		dueDate, err := core.ParseDate(*req.DueDate)
		if err != nil {
			return core.BillPatch{}, "invalid due date, expected yyyy-mm-dd"
		}
		patch.DueDate = &dueDate
	}
	if req.Frequency != nil {
		freq := core.NotificationFrequency(*req.Frequency)
		patch.Frequency = &freq
	}
	patch.ReminderEnabled = req.ReminderEnabled

	return patch, ""
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDueDate) ||
		errors.Is(err, core.ErrInvalidFrequency)
}
