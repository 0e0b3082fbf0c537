package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/homeeasy/internal/model"
	"github.com/gocraft/dbr/v2"
)

type ClientStore struct {
	sess *dbr.Session
	now  Clock
}

func NewClientStore(conn *dbr.Connection) *ClientStore {
	return &ClientStore{sess: newSession(conn), now: systemClock}
}

var clientCols = []string{"id", "fullname", "stage", "lastactivity", "created", "assigned_employee_name"}

type clientRow struct {
	ID           int64     `db:"id"`
	FullName     string    `db:"fullname"`
	Stage        string    `db:"stage"`
	LastActivity time.Time `db:"lastactivity"`
	Created      time.Time `db:"created"`
	AssignedRep  string    `db:"assigned_employee_name"`
}

func (r clientRow) client() *model.Client {
	return &model.Client{
		ID:           r.ID,
		FullName:     r.FullName,
		Stage:        model.Stage(r.Stage),
		LastActivity: r.LastActivity,
		Created:      r.Created,
		AssignedRep:  r.AssignedRep,
	}
}

func (r clientRow) summary() model.ClientSummary {
	return model.ClientSummary{
		ID:           r.ID,
		Name:         r.FullName,
		Stage:        r.Stage,
		LastActivity: r.LastActivity,
		Created:      r.Created,
		AssignedRep:  r.AssignedRep,
	}
}

func summaries(rows []clientRow) []model.ClientSummary {
	out := make([]model.ClientSummary, len(rows))
	for i, r := range rows {
		out[i] = r.summary()
	}
	return out
}

func (s *ClientStore) Create(ctx context.Context, fullName, assignedRep string) (*model.Client, error) {
	now := s.now()
	var id int64
	err := s.sess.InsertInto("client").
		Columns("fullname", "fullname_lower", "stage", "lastactivity", "created", "assigned_employee_name").
		Values(fullName, strings.ToLower(fullName), string(model.StageNew), now, now, assignedRep).
		Returning("id").
		LoadContext(ctx, &id)
	if err != nil {
		return nil, classify("insert client", err)
	}
	return &model.Client{
		ID:           id,
		FullName:     fullName,
		Stage:        model.StageNew,
		LastActivity: now,
		Created:      now,
		AssignedRep:  assignedRep,
	}, nil
}

func (s *ClientStore) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	var row clientRow
	err := s.sess.Select(clientCols...).From("client").Where("id = ?", id).LoadOneContext(ctx, &row)
	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get client", err)
	}
	return row.client(), nil
}

// List returns one window of the roster, newest first.
func (s *ClientStore) List(ctx context.Context, offset, limit uint64) ([]model.ClientSummary, error) {
	var rows []clientRow
	_, err := s.sess.Select(clientCols...).From("client").
		OrderDesc("created").OrderDesc("id").
		Offset(offset).Limit(limit).
		LoadContext(ctx, &rows)
	if err != nil {
		return nil, classify("list clients", err)
	}
	return summaries(rows), nil
}

func (s *ClientStore) SearchByID(ctx context.Context, id int64) ([]model.ClientSummary, error) {
	var rows []clientRow
	_, err := s.sess.Select(clientCols...).From("client").Where("id = ?", id).LoadContext(ctx, &rows)
	if err != nil {
		return nil, classify("search clients by id", err)
	}
	return summaries(rows), nil
}

// SearchByName matches a case-insensitive substring of the full name.
// Names are folded with strings.ToLower on insert into fullname_lower, since
// SQL LOWER() only folds ASCII on SQLite. LIKE wildcards in text are matched
// literally.
func (s *ClientStore) SearchByName(ctx context.Context, text string) ([]model.ClientSummary, error) {
	var rows []clientRow
	_, err := s.sess.Select(clientCols...).From("client").
		Where("fullname_lower LIKE ? ESCAPE '!'", likePattern(text)).
		OrderDesc("created").OrderDesc("id").
		LoadContext(ctx, &rows)
	if err != nil {
		return nil, classify("search clients by name", err)
	}
	return summaries(rows), nil
}

// requireClient fails with a ConstraintViolation when id is not on the roster.
func requireClient(ctx context.Context, r dbr.SessionRunner, op string, id int64) error {
	var found int64
	err := r.Select("id").From("client").Where("id = ?", id).LoadOneContext(ctx, &found)
	if errors.Is(err, dbr.ErrNotFound) {
		return constraintErr(op, fmt.Errorf("%w: %d", ErrClientNotFound, id))
	}
	if err != nil {
		return classify(op, err)
	}
	return nil
}

// touch records activity on a client and moves it to stage.
func touch(ctx context.Context, r dbr.SessionRunner, op string, id int64, stage model.Stage, at time.Time) error {
	_, err := r.Update("client").
		Set("lastactivity", at).
		Set("stage", string(stage)).
		Where("id = ?", id).
		ExecContext(ctx)
	if err != nil {
		return classify(op, err)
	}
	return nil
}
