package handlers

import (
	"net/http"

	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/minetrack/apiserver/types"
)

// FinanceHandler provides HTTP handlers for finance records.
type FinanceHandler struct {
	financeService *services.FinanceService
	log            logging.Logger
}

func NewFinanceHandler(financeService *services.FinanceService, log logging.Logger) *FinanceHandler {
	return &FinanceHandler{financeService: financeService, log: log}
}

func (h *FinanceHandler) routes() routeGroup {
	return routeGroup{
		prefix: "/finance",
		tag:    "finance",
		routes: []route{
			{method: http.MethodGet, pattern: "/", summary: "List finance records", roles: financeReaders, status: http.StatusOK, handler: h.List},
			{method: http.MethodPost, pattern: "/", summary: "Create a finance record", roles: financeWriters, status: http.StatusCreated, handler: h.Create},
			{method: http.MethodGet, pattern: "/{id}", summary: "Get a finance record", roles: financeReaders, status: http.StatusOK, handler: h.Get},
			{method: http.MethodPut, pattern: "/{id}", summary: "Replace a finance record", roles: financeWriters, status: http.StatusOK, handler: h.Update},
			{method: http.MethodDelete, pattern: "/{id}", summary: "Delete a finance record", roles: financeWriters, status: http.StatusNoContent, handler: h.Delete},
		},
	}
}

func (h *FinanceHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.financeService.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "finance record")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *FinanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.financeService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "finance record")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *FinanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.Finance
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.financeService.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err, "finance record")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *FinanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req types.Finance
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.financeService.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, r, h.log, err, "finance record")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *FinanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.financeService.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err, "finance record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
