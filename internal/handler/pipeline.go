package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homeeasy/internal/intake"
	"github.com/dukerupert/homeeasy/internal/model"
	"github.com/dukerupert/homeeasy/internal/store"
	"github.com/dukerupert/homeeasy/internal/websocket"
)

// PipelineHandler serves the steps after intake: tours, dead leads and
// closed-deal revenue.
type PipelineHandler struct {
	schedules *store.ScheduleStore
	dead      *store.DeadStore
	revenue   *store.RevenueStore
	validator intake.Validator
	logger    *slog.Logger
	broadcaster
}

func NewPipelineHandler(ss *store.ScheduleStore, ds *store.DeadStore, rs *store.RevenueStore, v intake.Validator, hub websocket.Broadcaster, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		schedules:   ss,
		dead:        ds,
		revenue:     rs,
		validator:   v,
		logger:      logger,
		broadcaster: broadcaster{hub},
	}
}

func (h *PipelineHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	raw, clientID, ok := clientRaw(w, r)
	if !ok {
		return
	}
	sched, err := h.validator.Schedule(raw)
	if err != nil {
		respondErr(w, h.logger, "create schedule", err)
		return
	}
	id, err := h.schedules.Save(r.Context(), sched)
	if err != nil {
		respondErr(w, h.logger, "create schedule", err)
		return
	}
	sched.ID = id
	h.broadcast(websocket.ScheduleCreated, id, clientID)
	writeJSON(w, http.StatusCreated, sched)
}

func (h *PipelineHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := h.schedules.ListByClient(r.Context(), clientID)
	if err != nil {
		respondErr(w, h.logger, "list schedules", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkDead records why the client left the pipeline and moves them to the
// dead stage.
func (h *PipelineHandler) MarkDead(w http.ResponseWriter, r *http.Request) {
	raw, clientID, ok := clientRaw(w, r)
	if !ok {
		return
	}
	d, err := intake.ValidateDeadMark(raw)
	if err != nil {
		respondErr(w, h.logger, "mark dead", err)
		return
	}
	mark, err := h.dead.Mark(r.Context(), d)
	if err != nil {
		respondErr(w, h.logger, "mark dead", err)
		return
	}
	h.broadcast(websocket.ClientDead, mark.ID, clientID)
	writeJSON(w, http.StatusCreated, mark)
}

func (h *PipelineHandler) ListDead(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	marks, err := h.dead.ListByClient(r.Context(), clientID)
	if err != nil {
		respondErr(w, h.logger, "list dead marks", err)
		return
	}
	if marks == nil {
		marks = []model.DeadMark{}
	}
	writeJSON(w, http.StatusOK, marks)
}

func (h *PipelineHandler) CreateRevenue(w http.ResponseWriter, r *http.Request) {
	raw, err := readRaw(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	entry, err := intake.ValidateRevenue(raw)
	if err != nil {
		respondErr(w, h.logger, "create revenue", err)
		return
	}
	id, err := h.revenue.Save(r.Context(), entry)
	if err != nil {
		respondErr(w, h.logger, "create revenue", err)
		return
	}
	entry.ID = id
	h.broadcast(websocket.RevenueCreated, id, entry.ClientID)
	writeJSON(w, http.StatusCreated, entry)
}

func (h *PipelineHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	entry, err := h.revenue.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get revenue", err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "revenue entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *PipelineHandler) ListRevenue(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := h.revenue.ListByClient(r.Context(), clientID)
	if err != nil {
		respondErr(w, h.logger, "list revenue", err)
		return
	}
	if list == nil {
		list = []model.RevenueEntry{}
	}
	writeJSON(w, http.StatusOK, list)
}
