package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scadenze/internal/core"
)

// apiResponse is the envelope every JSON endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON sends a success envelope with the given payload.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

// writeError sends a failure envelope with a client-safe message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

// decodeJSON parses a request body into dst, capping the body size.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// billPayload is the wire form of a bill. Amounts travel as decimal
// strings, dates as yyyy-mm-dd.
type billPayload struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	DueDate         string `json:"due_date"`
	Frequency       string `json:"notification_frequency"`
	ReminderEnabled bool   `json:"reminder_enabled"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toBillPayload(b core.Bill) billPayload {
	return billPayload{
		ID:              b.ID,
		Name:            b.Name,
		Amount:          core.FormatAmount(b.Amount),
		DueDate:         b.DueDate.Key(),
		Frequency:       string(b.Frequency),
		ReminderEnabled: b.ReminderEnabled,
		CreatedAt:       b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toBillPayloads(bills []core.Bill) []billPayload {
	out := make([]billPayload, len(bills))
	for i, b := range bills {
		out[i] = toBillPayload(b)
	}
	return out
}

// profilePayload is the wire form of a user profile.
type profilePayload struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	IsPremium      bool   `json:"is_premium"`
	AvailableMoney string `json:"available_money"`
}

func toProfilePayload(p core.Profile) profilePayload {
	return profilePayload{
		ID:             p.ID,
		Email:          p.Email,
		IsPremium:      p.IsPremium,
		AvailableMoney: core.FormatAmount(p.AvailableMoney),
	}
}

// projectionPayload is the wire form of a cash-flow projection. Zone
// dates are null when the walk never reached them.
type projectionPayload struct {
	TotalBills          string             `json:"total_bills"`
	RemainingMoney      string             `json:"remaining_money"`
	SafeZoneEndDate     *string            `json:"safe_zone_end_date"`
	DangerZoneStartDate *string            `json:"danger_zone_start_date"`
	DailyDeductions     []deductionPayload `json:"daily_deductions"`
}

type deductionPayload struct {
	Date             string        `json:"date"`
	Bills            []billPayload `json:"bills"`
	TotalAmount      string        `json:"total_amount"`
	RemainingBalance string        `json:"remaining_balance"`
}

func toProjectionPayload(result core.ProjectionResult) projectionPayload {
	out := projectionPayload{
		TotalBills:      core.FormatAmount(result.TotalBills),
		RemainingMoney:  core.FormatAmount(result.RemainingMoney),
		DailyDeductions: make([]deductionPayload, len(result.DailyDeductions)),
	}
	if result.SafeZoneEndDate != nil {
		key := result.SafeZoneEndDate.Key()
		out.SafeZoneEndDate = &key
	}
	if result.DangerZoneStartDate != nil {
		key := result.DangerZoneStartDate.Key()
		out.DangerZoneStartDate = &key
	}
	for i, d := range result.DailyDeductions {
		out.DailyDeductions[i] = deductionPayload{
			Date:             d.Date.Key(),
			Bills:            toBillPayloads(d.Bills),
			TotalAmount:      core.FormatAmount(d.TotalAmount),
			RemainingBalance: core.FormatAmount(d.RemainingBalance),
		}
	}
	return out
}
