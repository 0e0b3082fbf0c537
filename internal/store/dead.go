package store

import (
	"context"
	"time"

	"github.com/dukerupert/homeeasy/internal/lock"
	"github.com/dukerupert/homeeasy/internal/model"
	"github.com/gocraft/dbr/v2"
)

type DeadStore struct {
	sess   *dbr.Session
	locker lock.Locker
	now    Clock
}

func NewDeadStore(conn *dbr.Connection, locker lock.Locker) *DeadStore {
	if locker == nil {
		locker = lock.NewMemory()
	}
	return &DeadStore{sess: newSession(conn), locker: locker, now: systemClock}
}

// Mark records why a client was dropped and moves it to the dead stage.
func (s *DeadStore) Mark(ctx context.Context, d *model.DeadMark) (*model.DeadMark, error) {
	const op = "mark client dead"

	unlock, err := s.locker.Lock(ctx, lockKey(d.ClientID))
	if err != nil {
		return nil, &PersistenceError{Kind: ConnectionFailure, Op: op, Err: err}
	}
	defer unlock()

	tx, err := s.sess.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(op, err)
	}
	defer tx.RollbackUnlessCommitted()

	if err := requireClient(ctx, tx, op, d.ClientID); err != nil {
		return nil, err
	}

	now := s.now()
	var id int64
	err = tx.InsertInto("client_dead").
		Columns("client_id", "reason", "created_on").
		Values(d.ClientID, d.Reason, now).
		Returning("id").
		LoadContext(ctx, &id)
	if err != nil {
		return nil, classify(op, err)
	}
	if err := touch(ctx, tx, op, d.ClientID, model.StageDead, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(op, err)
	}

	return &model.DeadMark{ID: id, ClientID: d.ClientID, Reason: d.Reason, CreatedOn: now}, nil
}

type deadRow struct {
	ID        int64     `db:"id"`
	ClientID  int64     `db:"client_id"`
	Reason    string    `db:"reason"`
	CreatedOn time.Time `db:"created_on"`
}

func (s *DeadStore) ListByClient(ctx context.Context, clientID int64) ([]model.DeadMark, error) {
	var rows []deadRow
	_, err := s.sess.Select("id", "client_id", "reason", "created_on").
		From("client_dead").
		Where("client_id = ?", clientID).
		OrderDesc("created_on").OrderDesc("id").
		LoadContext(ctx, &rows)
	if err != nil {
		return nil, classify("list dead marks", err)
	}
	out := make([]model.DeadMark, len(rows))
	for i, r := range rows {
		out[i] = model.DeadMark(r)
	}
	return out, nil
}
