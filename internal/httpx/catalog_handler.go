package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/catalog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalog catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

func (h *CatalogHandler) RegisterPublic(r chi.Router) {
	r.Get("/units", h.listUnits)
	r.Get("/units/{id}", h.getUnit)
}

func (h *CatalogHandler) RegisterOperator(r chi.Router) {
	r.Post("/units", h.createUnit)
	r.Delete("/units/{id}", h.retireUnit)
}

func (h *CatalogHandler) listUnits(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		k := capacity.UnitKind(kind)
		opts.Kind = &k
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		opts.Offset = offset
	}

	units, err := h.catalog.ListUnits(r.Context(), opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if units == nil {
		units = []catalog.SellableUnit{}
	}

	writeJSON(w, http.StatusOK, units)
}

func (h *CatalogHandler) getUnit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	u, err := h.catalog.GetUnit(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *CatalogHandler) createUnit(w http.ResponseWriter, r *http.Request) {
	var input catalog.NewUnit
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.catalog.CreateUnit(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

func (h *CatalogHandler) retireUnit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	if err := h.catalog.RetireUnit(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
