package handlers

import (
	"net/http"

	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/minetrack/apiserver/types"
)

// EquipmentHandler provides HTTP handlers for equipment snapshots.
type EquipmentHandler struct {
	equipmentService *services.EquipmentService
	log              logging.Logger
}

func NewEquipmentHandler(equipmentService *services.EquipmentService, log logging.Logger) *EquipmentHandler {
	return &EquipmentHandler{equipmentService: equipmentService, log: log}
}

func (h *EquipmentHandler) routes() routeGroup {
	return routeGroup{
		prefix: "/equipment",
		tag:    "equipment",
		routes: []route{
			{method: http.MethodGet, pattern: "/", summary: "List equipment", roles: equipmentReaders, status: http.StatusOK, handler: h.List},
			{method: http.MethodPost, pattern: "/", summary: "Create equipment", roles: equipmentWriters, status: http.StatusCreated, handler: h.Create},
			{method: http.MethodGet, pattern: "/{id}", summary: "Get equipment", roles: equipmentReaders, status: http.StatusOK, handler: h.Get},
			{method: http.MethodPut, pattern: "/{id}", summary: "Replace equipment", roles: equipmentWriters, status: http.StatusOK, handler: h.Update},
			{method: http.MethodDelete, pattern: "/{id}", summary: "Delete equipment", roles: equipmentWriters, status: http.StatusNoContent, handler: h.Delete},
		},
	}
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.equipmentService.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "equipment")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.equipmentService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "equipment")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.Equipment
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.equipmentService.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err, "equipment")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req types.Equipment
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.equipmentService.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, r, h.log, err, "equipment")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.equipmentService.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err, "equipment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
