package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func dollars(cents int) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// writeError maps ledger failures to status codes and the exact storefront
// copy per failure kind. Callers must not collapse these into one generic
// message; the UI tells "expired" apart from "already sold".
func writeError(w http.ResponseWriter, err error) {
	var insufficient *ledger.InsufficientBalanceError
	var invalid *ledger.ValidationError
	var dup *ledger.DuplicateItemError

	switch {
	case errors.Is(err, ledger.ErrOfferingNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Offering not found"})
	case errors.Is(err, ledger.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
	case errors.Is(err, ledger.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
	case errors.Is(err, ledger.ErrOfferingExpired):
		writeJSON(w, http.StatusGone, map[string]string{"error": "This deal has expired"})
	case errors.Is(err, ledger.ErrOfferingUnavailable):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "This item is no longer available"})
	case errors.Is(err, ledger.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "This item was just taken, please refresh"})
	case errors.Is(err, ledger.ErrAlreadyPickedUp):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Order has already been picked up"})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": fmt.Sprintf("Insufficient Dining Dollars. Balance: $%s", dollars(insufficient.BalanceCents)),
		})
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, map[string]string{"error": dup.Error()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalid.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
