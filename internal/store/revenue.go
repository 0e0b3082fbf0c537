package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/homeeasy/internal/model"
	"github.com/gocraft/dbr/v2"
)

type RevenueStore struct {
	sess *dbr.Session
	now  Clock
}

func NewRevenueStore(conn *dbr.Connection) *RevenueStore {
	return &RevenueStore{sess: newSession(conn), now: systemClock}
}

var revenueCols = []string{
	"client_id", "created_on",
	"client_name", "sales_rep_id", "sales_rep_name", "tour_rep_id", "tour_rep_name",
	"building_id", "building_name", "unit_number", "tour_id",
	"move_in_date", "tour_date", "application_approved_date", "lease_term", "month", "year",
	"beds", "baths", "rent", "concession_free_months", "additional_concession",
	"total_concession_value", "net_effective", "commission_percentage", "deal_value",
	"concession_text", "application_status", "milestones", "comments",
}

type revenueRow struct {
	ID        int64     `db:"id"`
	ClientID  int64     `db:"client_id"`
	CreatedOn time.Time `db:"created_on"`

	ClientName   string `db:"client_name"`
	SalesRepID   string `db:"sales_rep_id"`
	SalesRepName string `db:"sales_rep_name"`
	TourRepID    string `db:"tour_rep_id"`
	TourRepName  string `db:"tour_rep_name"`
	BuildingID   string `db:"building_id"`
	BuildingName string `db:"building_name"`
	UnitNumber   string `db:"unit_number"`
	TourID       string `db:"tour_id"`

	MoveInDate              *time.Time `db:"move_in_date"`
	TourDate                *time.Time `db:"tour_date"`
	ApplicationApprovedDate *time.Time `db:"application_approved_date"`
	LeaseTerm               int64      `db:"lease_term"`
	Month                   string     `db:"month"`
	Year                    *int64     `db:"year"`

	Beds                 int64   `db:"beds"`
	Baths                float64 `db:"baths"`
	Rent                 float64 `db:"rent"`
	ConcessionFreeMonths float64 `db:"concession_free_months"`
	AdditionalConcession float64 `db:"additional_concession"`
	TotalConcession      float64 `db:"total_concession_value"`
	NetEffective         float64 `db:"net_effective"`
	CommissionPercentage int64   `db:"commission_percentage"`
	DealValue            float64 `db:"deal_value"`
	ConcessionText       string  `db:"concession_text"`

	ApplicationStatus string `db:"application_status"`
	Milestones        string `db:"milestones"`
	Comments          string `db:"comments"`
}

func (r revenueRow) entry() (*model.RevenueEntry, error) {
	ms, err := model.DecodeMilestones(r.Milestones)
	if err != nil {
		return nil, serializationErr("decode revenue entry", fmt.Errorf("milestones: %w", err))
	}
	return &model.RevenueEntry{
		ID:                      r.ID,
		ClientID:                r.ClientID,
		CreatedOn:               r.CreatedOn,
		ClientName:              r.ClientName,
		SalesRepID:              r.SalesRepID,
		SalesRepName:            r.SalesRepName,
		TourRepID:               r.TourRepID,
		TourRepName:             r.TourRepName,
		BuildingID:              r.BuildingID,
		BuildingName:            r.BuildingName,
		UnitNumber:              r.UnitNumber,
		TourID:                  r.TourID,
		MoveInDate:              r.MoveInDate,
		TourDate:                r.TourDate,
		ApplicationApprovedDate: r.ApplicationApprovedDate,
		LeaseTerm:               r.LeaseTerm,
		Month:                   model.Month(r.Month),
		Year:                    r.Year,
		Beds:                    r.Beds,
		Baths:                   r.Baths,
		Rent:                    r.Rent,
		ConcessionFreeMonths:    r.ConcessionFreeMonths,
		AdditionalConcession:    r.AdditionalConcession,
		TotalConcession:         r.TotalConcession,
		NetEffective:            r.NetEffective,
		CommissionPercentage:    r.CommissionPercentage,
		DealValue:               r.DealValue,
		ConcessionText:          r.ConcessionText,
		ApplicationStatus:       model.ApplicationStatus(r.ApplicationStatus),
		Milestones:              ms,
		Comments:                r.Comments,
	}, nil
}

func (s *RevenueStore) Save(ctx context.Context, e *model.RevenueEntry) (int64, error) {
	const op = "save revenue entry"

	milestones, err := e.Milestones.Encode()
	if err != nil {
		return 0, serializationErr(op, err)
	}

	tx, err := s.sess.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(op, err)
	}
	defer tx.RollbackUnlessCommitted()

	if err := requireClient(ctx, tx, op, e.ClientID); err != nil {
		return 0, err
	}

	var id int64
	err = tx.InsertInto("revenue_entries").
		Columns(revenueCols...).
		Values(
			e.ClientID, s.now(),
			e.ClientName, e.SalesRepID, e.SalesRepName, e.TourRepID, e.TourRepName,
			e.BuildingID, e.BuildingName, e.UnitNumber, e.TourID,
			utcPtr(e.MoveInDate), utcPtr(e.TourDate), utcPtr(e.ApplicationApprovedDate), e.LeaseTerm, string(e.Month), e.Year,
			e.Beds, e.Baths, e.Rent, e.ConcessionFreeMonths, e.AdditionalConcession,
			e.TotalConcession, e.NetEffective, e.CommissionPercentage, e.DealValue,
			e.ConcessionText, string(e.ApplicationStatus), milestones, e.Comments,
		).
		Returning("id").
		LoadContext(ctx, &id)
	if err != nil {
		return 0, classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}

func (s *RevenueStore) GetByID(ctx context.Context, id int64) (*model.RevenueEntry, error) {
	var row revenueRow
	err := s.sess.Select("*").From("revenue_entries").Where("id = ?", id).LoadOneContext(ctx, &row)
	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get revenue entry", err)
	}
	return row.entry()
}

func (s *RevenueStore) ListByClient(ctx context.Context, clientID int64) ([]model.RevenueEntry, error) {
	var rows []revenueRow
	_, err := s.sess.Select("*").From("revenue_entries").
		Where("client_id = ?", clientID).
		OrderDesc("created_on").OrderDesc("id").
		LoadContext(ctx, &rows)
	if err != nil {
		return nil, classify("list revenue entries", err)
	}
	out := make([]model.RevenueEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}
