package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/dukerupert/homeeasy/internal/intake"
	"github.com/dukerupert/homeeasy/internal/store"
	"github.com/dukerupert/homeeasy/internal/websocket"
)

const maxBodyBytes = 1 << 20

var errBadID = errors.New("invalid id")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// readRaw decodes a JSON or form body into intake.Raw. Anything that is not
// JSON is treated as a form post.
func readRaw(w http.ResponseWriter, r *http.Request) (intake.Raw, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		return intake.DecodeJSON(r.Body)
	}
	if mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return intake.FromForm(r.PostForm), nil
}

// respondErr is the boundary where validation and persistence failures
// become HTTP responses. Nothing below it writes error statuses.
func respondErr(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var verrs intake.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
		return
	}

	var perr *store.PersistenceError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case store.ConnectionFailure:
			logger.Warn("storage unavailable", "op", op, "error", err)
			writeError(w, http.StatusServiceUnavailable, "storage is unavailable, please retry")
			return
		case store.ConstraintViolation:
			logger.Info("constraint violation", "op", op, "error", err)
			if errors.Is(err, store.ErrClientNotFound) {
				writeError(w, http.StatusConflict, "client does not exist")
				return
			}
			writeError(w, http.StatusConflict, "record conflicts with existing data")
			return
		case store.SerializationFailure:
			logger.Error("record could not be serialized", "op", op, "error", err)
			writeError(w, http.StatusInternalServerError, "record could not be stored")
			return
		}
	}

	logger.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// badRequest answers undecodable bodies and malformed path ids.
func badRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadID) {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "malformed request body")
}

type broadcaster struct {
	hub websocket.Broadcaster
}

func (b broadcaster) broadcast(typ string, id, clientID int64) {
	if b.hub != nil {
		b.hub.Broadcast(websocket.NewMessage(typ, id, clientID))
	}
}
