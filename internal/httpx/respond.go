package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/catalog"
	"kedairuang-be/internal/order"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{
		"status":  "error",
		"message": message,
	})
}

type capacityFault struct {
	UnitID    string `json:"unit_id"`
	Reason    string `json:"reason"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

// writeDomainError maps service errors to HTTP responses. Capacity
// rejections get 422 with one entry per failed item so a client can show
// exactly which lines to fix.
func writeDomainError(w http.ResponseWriter, err error) {
	var capErr *capacity.Error
	if errors.As(err, &capErr) {
		faults := make([]capacityFault, 0, len(capErr.Faults))
		for _, f := range capErr.Faults {
			faults = append(faults, capacityFault{
				UnitID:    f.UnitID.String(),
				Reason:    string(f.Reason),
				Requested: f.Requested,
				Available: f.Available,
			})
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": capErr.Error(),
			"faults":  faults,
		})
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, catalog.ErrUnitNotFound),
		errors.Is(err, capacity.ErrUnitNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrNotManualMethod):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, capacity.ErrMissingTimeRange),
		errors.Is(err, capacity.ErrInvalidTimeRange),
		errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidKind):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
