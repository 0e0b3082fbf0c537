package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/homeeasy/internal/lock"
	"github.com/dukerupert/homeeasy/internal/model"
	"github.com/gocraft/dbr/v2"
)

type ScheduleStore struct {
	sess   *dbr.Session
	locker lock.Locker
	now    Clock
}

func NewScheduleStore(conn *dbr.Connection, locker lock.Locker) *ScheduleStore {
	if locker == nil {
		locker = lock.NewMemory()
	}
	return &ScheduleStore{sess: newSession(conn), locker: locker, now: systemClock}
}

var stopCols = []string{
	"schedule_id", "position", "building", "unit_number", "price", "tour_date", "tour_time",
	"tour_type", "status", "booked_via", "touring_rep", "selected_by",
	"leasing_agent", "leasing_agent_email", "leasing_agent_phone", "comment",
}

type scheduleRow struct {
	ID              int64     `db:"id"`
	ClientID        int64     `db:"client_id"`
	CloseConfidence int64     `db:"close_confidence"`
	CreatedOn       time.Time `db:"created_on"`
}

type stopRow struct {
	ID                int64     `db:"id"`
	ScheduleID        int64     `db:"schedule_id"`
	Position          int       `db:"position"`
	Building          string    `db:"building"`
	UnitNumber        string    `db:"unit_number"`
	Price             *float64  `db:"price"`
	TourDate          time.Time `db:"tour_date"`
	TourTime          *int64    `db:"tour_time"`
	TourType          string    `db:"tour_type"`
	Status            string    `db:"status"`
	BookedVia         string    `db:"booked_via"`
	TouringRep        string    `db:"touring_rep"`
	SelectedBy        string    `db:"selected_by"`
	LeasingAgent      string    `db:"leasing_agent"`
	LeasingAgentEmail string    `db:"leasing_agent_email"`
	LeasingAgentPhone string    `db:"leasing_agent_phone"`
	Comment           string    `db:"comment"`
}

func (r stopRow) stop() (model.TourStop, error) {
	st := model.TourStop{
		ID:                r.ID,
		Position:          r.Position,
		Building:          r.Building,
		UnitNumber:        r.UnitNumber,
		Price:             r.Price,
		TourDate:          r.TourDate,
		TourType:          model.TourType(r.TourType),
		Status:            model.TourStatus(r.Status),
		BookedVia:         model.BookedVia(r.BookedVia),
		TouringRep:        r.TouringRep,
		SelectedBy:        model.SelectedBy(r.SelectedBy),
		LeasingAgent:      r.LeasingAgent,
		LeasingAgentEmail: r.LeasingAgentEmail,
		LeasingAgentPhone: r.LeasingAgentPhone,
		Comment:           r.Comment,
	}
	if r.TourTime != nil {
		c, err := model.ClockFromMinutes(*r.TourTime)
		if err != nil {
			return st, serializationErr("decode tour stop", err)
		}
		st.TourTime = &c
	}
	return st, nil
}

// Save stores a schedule and all of its stops in one transaction and moves
// the client to the schedule stage.
func (s *ScheduleStore) Save(ctx context.Context, sched *model.TourSchedule) (int64, error) {
	const op = "save schedule"

	for i, st := range sched.Stops {
		if st.TourTime != nil && !st.TourTime.Valid() {
			return 0, serializationErr(op, fmt.Errorf("stops[%d].tour_time out of range", i))
		}
	}

	unlock, err := s.locker.Lock(ctx, lockKey(sched.ClientID))
	if err != nil {
		return 0, &PersistenceError{Kind: ConnectionFailure, Op: op, Err: err}
	}
	defer unlock()

	tx, err := s.sess.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(op, err)
	}
	defer tx.RollbackUnlessCommitted()

	if err := requireClient(ctx, tx, op, sched.ClientID); err != nil {
		return 0, err
	}

	now := s.now()
	var id int64
	err = tx.InsertInto("tour_schedules").
		Columns("client_id", "close_confidence", "created_on").
		Values(sched.ClientID, sched.CloseConfidence, now).
		Returning("id").
		LoadContext(ctx, &id)
	if err != nil {
		return 0, classify(op, err)
	}

	for i, st := range sched.Stops {
		var tourTime *int64
		if st.TourTime != nil {
			m := int64(*st.TourTime)
			tourTime = &m
		}
		_, err := tx.InsertInto("tour_stops").
			Columns(stopCols...).
			Values(
				id, i, st.Building, st.UnitNumber, st.Price, st.TourDate.UTC(), tourTime,
				string(st.TourType), string(st.Status), string(st.BookedVia), st.TouringRep, string(st.SelectedBy),
				st.LeasingAgent, st.LeasingAgentEmail, st.LeasingAgentPhone, st.Comment,
			).
			ExecContext(ctx)
		if err != nil {
			return 0, classify(op, err)
		}
	}

	if err := touch(ctx, tx, op, sched.ClientID, model.StageSchedule, now); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}

// ListByClient returns a client's schedules newest first, each with its
// stops in tour order.
func (s *ScheduleStore) ListByClient(ctx context.Context, clientID int64) ([]model.TourSchedule, error) {
	const op = "list schedules"

	var rows []scheduleRow
	_, err := s.sess.Select("id", "client_id", "close_confidence", "created_on").
		From("tour_schedules").
		Where("client_id = ?", clientID).
		OrderDesc("created_on").OrderDesc("id").
		LoadContext(ctx, &rows)
	if err != nil {
		return nil, classify(op, err)
	}
	if len(rows) == 0 {
		return []model.TourSchedule{}, nil
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	var stops []stopRow
	_, err = s.sess.Select("*").From("tour_stops").
		Where("schedule_id IN ?", ids).
		OrderAsc("schedule_id").OrderAsc("position").
		LoadContext(ctx, &stops)
	if err != nil {
		return nil, classify(op, err)
	}
	bySchedule := make(map[int64][]model.TourStop, len(rows))
	for _, sr := range stops {
		st, err := sr.stop()
		if err != nil {
			return nil, err
		}
		bySchedule[sr.ScheduleID] = append(bySchedule[sr.ScheduleID], st)
	}

	out := make([]model.TourSchedule, len(rows))
	for i, r := range rows {
		out[i] = model.TourSchedule{
			ID:              r.ID,
			ClientID:        r.ClientID,
			CloseConfidence: r.CloseConfidence,
			Stops:           bySchedule[r.ID],
			CreatedOn:       r.CreatedOn,
		}
	}
	return out, nil
}
