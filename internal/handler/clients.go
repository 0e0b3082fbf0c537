package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/homeeasy/internal/auth"
	"github.com/dukerupert/homeeasy/internal/intake"
	"github.com/dukerupert/homeeasy/internal/roster"
	"github.com/dukerupert/homeeasy/internal/store"
	"github.com/dukerupert/homeeasy/internal/websocket"
)

type ClientHandler struct {
	clients *store.ClientStore
	roster  *roster.Service
	logger  *slog.Logger
	now     func() time.Time
	broadcaster
}

func NewClientHandler(cs *store.ClientStore, rs *roster.Service, hub websocket.Broadcaster, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clients:     cs,
		roster:      rs,
		logger:      logger,
		now:         time.Now,
		broadcaster: broadcaster{hub},
	}
}

type rosterPage struct {
	Clients    []roster.Row `json:"clients"`
	Offset     int          `json:"offset"`
	NextOffset int          `json:"next_offset"`
	HasMore    bool         `json:"has_more"`
}

// List serves the roster grid: ?q= searches, otherwise ?offset=&limit=
// window the newest-first list.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := roster.Query{Text: q.Get("q")}
	var err error
	if query.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "offset must be a whole number")
		return
	}
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a whole number")
		return
	}

	page, err := h.roster.Find(r.Context(), query)
	if err != nil {
		respondErr(w, h.logger, "list clients", err)
		return
	}
	writeJSON(w, http.StatusOK, rosterPage{
		Clients:    roster.Rows(page.Clients, h.now()),
		Offset:     page.Offset,
		NextOffset: page.NextOffset,
		HasMore:    page.HasMore,
	})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Create adds a roster entry. The assigned rep defaults to the
// authenticated staff member.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := readRaw(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	nc, err := intake.ValidateClient(raw)
	if err != nil {
		respondErr(w, h.logger, "create client", err)
		return
	}
	if nc.AssignedRep == "" {
		nc.AssignedRep = auth.StaffName(r.Context())
	}

	c, err := h.clients.Create(r.Context(), nc.Name, nc.AssignedRep)
	if err != nil {
		respondErr(w, h.logger, "create client", err)
		return
	}
	h.logger.Info("client created", "client_id", c.ID)
	h.broadcast(websocket.ClientCreated, c.ID, c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	c, err := h.clients.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get client", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
