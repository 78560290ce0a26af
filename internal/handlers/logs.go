package handlers

import (
	"net/http"

	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/services"
)

// DataLogHandler provides HTTP handlers for the audit log.
type DataLogHandler struct {
	dataLogService *services.DataLogService
	log            logging.Logger
}

func NewDataLogHandler(dataLogService *services.DataLogService, log logging.Logger) *DataLogHandler {
	return &DataLogHandler{dataLogService: dataLogService, log: log}
}

func (h *DataLogHandler) routes() routeGroup {
	return routeGroup{
		prefix: "/logs",
		tag:    "logs",
		routes: []route{
			{method: http.MethodGet, pattern: "/", summary: "List log entries, newest first", roles: logReaders, status: http.StatusOK, handler: h.List},
			{method: http.MethodPost, pattern: "/", summary: "Record an action", status: http.StatusCreated, handler: h.Create},
			{method: http.MethodDelete, pattern: "/", summary: "Delete every log entry", roles: logPurgers, status: http.StatusNoContent, handler: h.DeleteAll},
			{method: http.MethodDelete, pattern: "/{id}", summary: "Delete a log entry", roles: logPurgers, status: http.StatusNoContent, handler: h.Delete},
		},
	}
}

func (h *DataLogHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.dataLogService.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "log entry")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *DataLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.DataLogEntry
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.dataLogService.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, r, h.log, err, "log entry")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *DataLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.dataLogService.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err, "log entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DataLogHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.dataLogService.DeleteAll(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "log entry")
		return
	}
	h.log.Info(r.Context(), "audit log purged", "deleted", n)
	w.WriteHeader(http.StatusNoContent)
}
