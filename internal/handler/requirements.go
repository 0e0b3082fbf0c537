package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/homeeasy/internal/intake"
	"github.com/dukerupert/homeeasy/internal/model"
	"github.com/dukerupert/homeeasy/internal/store"
	"github.com/dukerupert/homeeasy/internal/websocket"
)

type RequirementHandler struct {
	store     *store.RequirementStore
	validator intake.Validator
	logger    *slog.Logger
	broadcaster
}

func NewRequirementHandler(rs *store.RequirementStore, v intake.Validator, hub websocket.Broadcaster, logger *slog.Logger) *RequirementHandler {
	return &RequirementHandler{store: rs, validator: v, logger: logger, broadcaster: broadcaster{hub}}
}

// clientRaw reads the body and pins client_id to the {id} path segment.
func clientRaw(w http.ResponseWriter, r *http.Request) (intake.Raw, int64, bool) {
	clientID, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return nil, 0, false
	}
	raw, err := readRaw(w, r)
	if err != nil {
		badRequest(w, err)
		return nil, 0, false
	}
	raw["client_id"] = strconv.FormatInt(clientID, 10)
	return raw, clientID, true
}

// Submit validates and stores a requirement for the client in the path.
// Resubmitting the client's current requirement stores nothing and answers
// 200 with the current record id; a new record answers 201.
func (h *RequirementHandler) Submit(w http.ResponseWriter, r *http.Request) {
	raw, clientID, ok := clientRaw(w, r)
	if !ok {
		return
	}
	req, err := h.validator.Requirement(raw)
	if err != nil {
		respondErr(w, h.logger, "submit requirement", err)
		return
	}
	id, created, err := h.store.Save(r.Context(), req)
	if err != nil {
		respondErr(w, h.logger, "submit requirement", err)
		return
	}
	body := map[string]int64{"id": id, "client_id": clientID}
	if !created {
		writeJSON(w, http.StatusOK, body)
		return
	}
	h.broadcast(websocket.RequirementCreated, id, clientID)
	writeJSON(w, http.StatusCreated, body)
}

// Validate is a dry run: it reports what Submit would store without
// touching the database.
func (h *RequirementHandler) Validate(w http.ResponseWriter, r *http.Request) {
	raw, err := readRaw(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	req, err := h.validator.Requirement(raw)
	if err != nil {
		respondErr(w, h.logger, "validate requirement", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "requirement": req})
}

func (h *RequirementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	req, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get requirement", err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "requirement not found")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ListByClient returns the client's requirement history, newest first.
func (h *RequirementHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := h.store.ListByClient(r.Context(), clientID)
	if err != nil {
		respondErr(w, h.logger, "list requirements", err)
		return
	}
	if list == nil {
		list = []model.Requirement{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RequirementHandler) Current(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	req, err := h.store.Current(r.Context(), clientID)
	if err != nil {
		respondErr(w, h.logger, "current requirement", err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "client has no requirements")
		return
	}
	writeJSON(w, http.StatusOK, req)
}
