package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/homeeasy/internal/model"
)

func TestScheduleSaveAndList(t *testing.T) {
	conn := setupStoreTestDB(t)
	cs := NewClientStore(conn)
	ss := NewScheduleStore(conn, nil)
	ctx := context.Background()
	c := createClient(t, cs, "Tourist")

	tourTime := model.NewClock(14, 30)
	price := 3100.0
	sched := &model.TourSchedule{
		ClientID:        c.ID,
		CloseConfidence: 75,
		Stops: []model.TourStop{
			{Building: "The Ashland", TourDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), TourTime: &tourTime, TourType: model.TourInPerson, Status: model.TourPending},
			{Building: "Eagle + West", UnitNumber: "12B", Price: &price, TourDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), TourType: model.TourAny, Status: model.TourConfirmed},
		},
	}
	id, err := ss.Save(ctx, sched)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := ss.ListByClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("schedules = %d, want 1", len(list))
	}
	got := list[0]
	if got.ID != id || got.CloseConfidence != 75 {
		t.Errorf("schedule = %+v", got)
	}
	if len(got.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(got.Stops))
	}
	if got.Stops[0].Building != "The Ashland" || got.Stops[0].TourTime == nil || *got.Stops[0].TourTime != tourTime {
		t.Errorf("stop 0 = %+v", got.Stops[0])
	}
	if got.Stops[1].Price == nil || *got.Stops[1].Price != price || got.Stops[1].Status != model.TourConfirmed {
		t.Errorf("stop 1 = %+v", got.Stops[1])
	}
	if got.Stops[1].TourTime != nil {
		t.Errorf("stop 1 tour_time = %v, want nil", got.Stops[1].TourTime)
	}

	client, err := cs.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if client.Stage != model.StageSchedule {
		t.Errorf("stage = %q, want %q", client.Stage, model.StageSchedule)
	}
}

func TestScheduleUnknownClient(t *testing.T) {
	ss := NewScheduleStore(setupStoreTestDB(t), nil)
	_, err := ss.Save(context.Background(), &model.TourSchedule{
		ClientID: 77,
		Stops:    []model.TourStop{{Building: "X", TourDate: time.Now()}},
	})
	if KindOf(err) != ConstraintViolation {
		t.Errorf("err = %v, want constraint violation", err)
	}
}

func TestScheduleListEmpty(t *testing.T) {
	ss := NewScheduleStore(setupStoreTestDB(t), nil)
	list, err := ss.ListByClient(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("list = %v, want empty slice", list)
	}
}

func TestDeadMark(t *testing.T) {
	conn := setupStoreTestDB(t)
	cs := NewClientStore(conn)
	ds := NewDeadStore(conn, nil)
	ctx := context.Background()
	c := createClient(t, cs, "Gone Quiet")

	mark, err := ds.Mark(ctx, &model.DeadMark{ClientID: c.ID, Reason: "signed elsewhere"})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if mark.ID == 0 || mark.CreatedOn.IsZero() {
		t.Errorf("mark = %+v, want id and created_on", mark)
	}

	client, err := cs.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if client.Stage != model.StageDead {
		t.Errorf("stage = %q, want %q", client.Stage, model.StageDead)
	}

	marks, err := ds.ListByClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(marks) != 1 || marks[0].Reason != "signed elsewhere" {
		t.Errorf("marks = %+v", marks)
	}

	if _, err := ds.Mark(ctx, &model.DeadMark{ClientID: 999, Reason: "x"}); KindOf(err) != ConstraintViolation {
		t.Errorf("unknown client err = %v, want constraint violation", err)
	}
}

func TestRevenueSaveAndGet(t *testing.T) {
	conn := setupStoreTestDB(t)
	cs := NewClientStore(conn)
	rs := NewRevenueStore(conn)
	ctx := context.Background()
	c := createClient(t, cs, "Closer")

	sent := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	year := int64(2025)
	entry := &model.RevenueEntry{
		ClientID:             c.ID,
		BuildingName:         "The Ashland",
		LeaseTerm:            12,
		Month:                "july",
		Year:                 &year,
		Beds:                 1,
		Baths:                1,
		Rent:                 3200,
		NetEffective:         2950,
		CommissionPercentage: 100,
		DealValue:            3200,
		ApplicationStatus:    model.ApplicationApproved,
		Milestones: model.Milestones{
			model.InvoiceSent: {Done: true, Date: &sent},
			model.DealClosed:  {Done: true},
		},
	}
	id, err := rs.Save(ctx, entry)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := rs.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.BuildingName != "The Ashland" || got.Rent != 3200 || got.ApplicationStatus != model.ApplicationApproved {
		t.Errorf("entry = %+v", got)
	}
	if got.Year == nil || *got.Year != 2025 {
		t.Errorf("year = %v, want 2025", got.Year)
	}
	ms := got.Milestones[model.InvoiceSent]
	if !ms.Done || ms.Date == nil || !ms.Date.Equal(sent) {
		t.Errorf("invoice_sent = %+v", ms)
	}
	if !got.Milestones[model.DealClosed].Done {
		t.Error("expected is_closed milestone")
	}

	list, err := rs.ListByClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("entries = %d, want 1", len(list))
	}

	missing, err := rs.GetByID(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("missing = %v, %v; want nil, nil", missing, err)
	}
}
