package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukerupert/homeeasy/internal/lock"
	"github.com/dukerupert/homeeasy/internal/model"
	"github.com/gocraft/dbr/v2"
	"github.com/zeebo/blake3"
)

// RequirementStore is the persistence gateway for client requirements.
// History is append-only: every distinct submission is a new row and the
// newest row is the client's current requirement. Resubmitting a record
// identical to the current one stores nothing and returns the current id.
type RequirementStore struct {
	sess   *dbr.Session
	locker lock.Locker
	logger *slog.Logger
	now    Clock
}

func NewRequirementStore(conn *dbr.Connection, locker lock.Locker, logger *slog.Logger) *RequirementStore {
	if locker == nil {
		locker = lock.NewMemory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RequirementStore{
		sess:   newSession(conn),
		locker: locker,
		logger: logger.With("component", "requirements"),
		now:    systemClock,
	}
}

var requirementCols = []string{
	"client_id", "fingerprint", "created_on",
	"move_in_date", "move_in_date_max", "tour_date",
	"budget", "budget_max", "sqft", "sqft_max", "beds", "baths", "lease_term",
	"parking", "pets", "washer_dryer", "preference",
	"zip_codes", "neighborhoods", "neighborhood_specific", "amenities",
	"section8", "cosigner", "cosigner_comment", "monthly_income", "credit_score", "people_living",
	"another_broker", "another_broker_comment", "confirm_tour", "tour_person",
	"availability",
	"comment", "pets_comment", "parking_comment", "moving_reason", "work_location",
	"commuting", "building_must_haves", "unit_must_haves", "special_needs", "personality",
}

type requirementRow struct {
	ID          int64     `db:"id"`
	ClientID    int64     `db:"client_id"`
	Fingerprint string    `db:"fingerprint"`
	CreatedOn   time.Time `db:"created_on"`

	MoveInDate    time.Time  `db:"move_in_date"`
	MoveInDateMax *time.Time `db:"move_in_date_max"`
	TourDate      *time.Time `db:"tour_date"`

	Budget    float64  `db:"budget"`
	BudgetMax *float64 `db:"budget_max"`
	Sqft      int64    `db:"sqft"`
	SqftMax   *int64   `db:"sqft_max"`
	Beds      int64    `db:"beds"`
	Baths     float64  `db:"baths"`
	LeaseTerm *int64   `db:"lease_term"`

	Parking     string `db:"parking"`
	Pets        string `db:"pets"`
	WasherDryer string `db:"washer_dryer"`
	Preference  string `db:"preference"`

	ZipCodes             string `db:"zip_codes"`
	Neighborhoods        string `db:"neighborhoods"`
	NeighborhoodSpecific bool   `db:"neighborhood_specific"`
	Amenities            string `db:"amenities"`

	Section8        bool     `db:"section8"`
	Cosigner        bool     `db:"cosigner"`
	CosignerComment string   `db:"cosigner_comment"`
	MonthlyIncome   *float64 `db:"monthly_income"`
	CreditScore     *float64 `db:"credit_score"`
	PeopleLiving    *int64   `db:"people_living"`

	AnotherBroker        string `db:"another_broker"`
	AnotherBrokerComment string `db:"another_broker_comment"`
	ConfirmTour          string `db:"confirm_tour"`
	TourPerson           string `db:"tour_person"`

	Availability string `db:"availability"`

	Comment           string `db:"comment"`
	PetsComment       string `db:"pets_comment"`
	ParkingComment    string `db:"parking_comment"`
	MovingReason      string `db:"moving_reason"`
	WorkLocation      string `db:"work_location"`
	Commuting         string `db:"commuting"`
	BuildingMustHaves string `db:"building_must_haves"`
	UnitMustHaves     string `db:"unit_must_haves"`
	SpecialNeeds      string `db:"special_needs"`
	Personality       string `db:"personality"`
}

// encodedRequirement holds the text encodings of the structured fields.
type encodedRequirement struct {
	zipCodes      string
	neighborhoods string
	amenities     string
	availability  string
}

func encodeRequirement(r *model.Requirement) (encodedRequirement, error) {
	var (
		enc encodedRequirement
		err error
	)
	if enc.availability, err = r.Availability.Encode(); err != nil {
		return enc, fmt.Errorf("availability: %w", err)
	}
	if enc.zipCodes, err = r.ZipCodes.Encode(); err != nil {
		return enc, fmt.Errorf("zip_codes: %w", err)
	}
	if enc.neighborhoods, err = r.Neighborhoods.Encode(); err != nil {
		return enc, fmt.Errorf("neighborhoods: %w", err)
	}
	amenities := model.NewAmenitySet(r.Amenities...)
	for _, a := range amenities {
		if !a.Valid() {
			return enc, fmt.Errorf("amenities: unknown tag %q", a)
		}
	}
	if enc.amenities, err = encodeJSON(amenities); err != nil {
		return enc, fmt.Errorf("amenities: %w", err)
	}
	return enc, nil
}

// Fingerprint identifies a submission by content. ID and CreatedOn are
// ignored so a resubmitted form hashes the same.
func Fingerprint(r *model.Requirement) (string, error) {
	c := *r
	c.ID = 0
	c.CreatedOn = time.Time{}
	c.ZipCodes = model.NewTokenSet(r.ZipCodes...)
	c.Neighborhoods = model.NewTokenSet(r.Neighborhoods...)
	c.Amenities = model.NewAmenitySet(r.Amenities...)
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func lockKey(clientID int64) string {
	return "client:" + strconv.FormatInt(clientID, 10)
}

// Save persists a validated requirement and returns its id. created is false
// when r matches the client's current requirement, in which case nothing is
// written and the current row's id is returned. The client's last activity
// and stage are updated in the same transaction as the insert.
func (s *RequirementStore) Save(ctx context.Context, r *model.Requirement) (id int64, created bool, err error) {
	const op = "save requirement"

	enc, err := encodeRequirement(r)
	if err != nil {
		return 0, false, serializationErr(op, err)
	}
	fp, err := Fingerprint(r)
	if err != nil {
		return 0, false, serializationErr(op, err)
	}

	unlock, err := s.locker.Lock(ctx, lockKey(r.ClientID))
	if err != nil {
		return 0, false, &PersistenceError{Kind: ConnectionFailure, Op: op, Err: err}
	}
	defer unlock()

	tx, err := s.sess.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, classify(op, err)
	}
	defer tx.RollbackUnlessCommitted()

	if err := requireClient(ctx, tx, op, r.ClientID); err != nil {
		return 0, false, err
	}

	latestID, latestFP, err := latestFingerprint(ctx, tx, r.ClientID)
	if err != nil {
		return 0, false, classify(op, err)
	}
	if latestID != 0 && latestFP == fp {
		s.logger.Info("requirement unchanged", "client_id", r.ClientID, "requirement_id", latestID)
		return latestID, false, nil
	}

	now := s.now()
	err = tx.InsertInto("client_requirements").
		Columns(requirementCols...).
		Values(
			r.ClientID, fp, now,
			r.MoveInDate.UTC(), utcPtr(r.MoveInDateMax), utcPtr(r.TourDate),
			r.Budget, r.BudgetMax, r.Sqft, r.SqftMax, r.Beds, r.Baths, r.LeaseTerm,
			string(r.Parking), string(r.Pets), string(r.WasherDryer), string(r.Preference),
			enc.zipCodes, enc.neighborhoods, r.NeighborhoodSpecific, enc.amenities,
			r.Section8, r.Cosigner, r.CosignerComment, r.MonthlyIncome, r.CreditScore, r.PeopleLiving,
			string(r.AnotherBroker), r.AnotherBrokerComment, string(r.ConfirmTour), r.TourPerson,
			enc.availability,
			r.Comment, r.PetsComment, r.ParkingComment, r.MovingReason, r.WorkLocation,
			r.Commuting, r.BuildingMustHaves, r.UnitMustHaves, r.SpecialNeeds, r.Personality,
		).
		Returning("id").
		LoadContext(ctx, &id)
	if err != nil {
		return 0, false, classify(op, err)
	}

	if err := touch(ctx, tx, op, r.ClientID, model.StageRequirement, now); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(); err != nil {
		return 0, false, classify(op, err)
	}

	s.logger.Info("requirement saved", "client_id", r.ClientID, "requirement_id", id)
	return id, true, nil
}

// latestFingerprint returns the id and fingerprint of the client's current
// requirement, or a zero id when there is none.
func latestFingerprint(ctx context.Context, r dbr.SessionRunner, clientID int64) (int64, string, error) {
	var row struct {
		ID          int64  `db:"id"`
		Fingerprint string `db:"fingerprint"`
	}
	err := r.Select("id", "fingerprint").From("client_requirements").
		Where("client_id = ?", clientID).
		OrderDesc("created_on").OrderDesc("id").
		Limit(1).
		LoadOneContext(ctx, &row)
	if errors.Is(err, dbr.ErrNotFound) {
		return 0, "", nil
	}
	return row.ID, row.Fingerprint, err
}

func (s *RequirementStore) GetByID(ctx context.Context, id int64) (*model.Requirement, error) {
	var row requirementRow
	err := s.sess.Select("*").From("client_requirements").Where("id = ?", id).LoadOneContext(ctx, &row)
	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get requirement", err)
	}
	return row.requirement()
}

// ListByClient returns a client's requirement history, newest first.
func (s *RequirementStore) ListByClient(ctx context.Context, clientID int64) ([]model.Requirement, error) {
	var rows []requirementRow
	_, err := s.sess.Select("*").From("client_requirements").
		Where("client_id = ?", clientID).
		OrderDesc("created_on").OrderDesc("id").
		LoadContext(ctx, &rows)
	if err != nil {
		return nil, classify("list requirements", err)
	}
	out := make([]model.Requirement, 0, len(rows))
	for _, row := range rows {
		r, err := row.requirement()
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

// Current returns the client's newest requirement, or nil if none exists.
func (s *RequirementStore) Current(ctx context.Context, clientID int64) (*model.Requirement, error) {
	var row requirementRow
	err := s.sess.Select("*").From("client_requirements").
		Where("client_id = ?", clientID).
		OrderDesc("created_on").OrderDesc("id").
		Limit(1).
		LoadOneContext(ctx, &row)
	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("current requirement", err)
	}
	return row.requirement()
}

func (row requirementRow) requirement() (*model.Requirement, error) {
	const op = "decode requirement"

	avail, err := model.DecodeAvailability(row.Availability)
	if err != nil {
		return nil, serializationErr(op, fmt.Errorf("availability: %w", err))
	}
	zips, err := model.DecodeTokenSet(row.ZipCodes)
	if err != nil {
		return nil, serializationErr(op, fmt.Errorf("zip_codes: %w", err))
	}
	hoods, err := model.DecodeTokenSet(row.Neighborhoods)
	if err != nil {
		return nil, serializationErr(op, fmt.Errorf("neighborhoods: %w", err))
	}
	amenities := []model.Amenity{}
	if row.Amenities != "" {
		if err := json.Unmarshal([]byte(row.Amenities), &amenities); err != nil {
			return nil, serializationErr(op, fmt.Errorf("amenities: %w", err))
		}
	}

	return &model.Requirement{
		ID:        row.ID,
		ClientID:  row.ClientID,
		CreatedOn: row.CreatedOn,

		MoveInDate:    row.MoveInDate,
		MoveInDateMax: row.MoveInDateMax,
		TourDate:      row.TourDate,

		Budget:    row.Budget,
		BudgetMax: row.BudgetMax,
		Sqft:      row.Sqft,
		SqftMax:   row.SqftMax,
		Beds:      row.Beds,
		Baths:     row.Baths,
		LeaseTerm: row.LeaseTerm,

		Parking:     model.Parking(row.Parking),
		Pets:        model.PetPolicy(row.Pets),
		WasherDryer: model.WasherDryer(row.WasherDryer),
		Preference:  model.Preference(row.Preference),

		ZipCodes:             zips,
		Neighborhoods:        hoods,
		NeighborhoodSpecific: row.NeighborhoodSpecific,
		Amenities:            amenities,

		Section8:        row.Section8,
		Cosigner:        row.Cosigner,
		CosignerComment: row.CosignerComment,
		MonthlyIncome:   row.MonthlyIncome,
		CreditScore:     row.CreditScore,
		PeopleLiving:    row.PeopleLiving,

		AnotherBroker:        model.YesNo(row.AnotherBroker),
		AnotherBrokerComment: row.AnotherBrokerComment,
		ConfirmTour:          model.YesNo(row.ConfirmTour),
		TourPerson:           row.TourPerson,

		Availability: avail,

		Comment:           row.Comment,
		PetsComment:       row.PetsComment,
		ParkingComment:    row.ParkingComment,
		MovingReason:      row.MovingReason,
		WorkLocation:      row.WorkLocation,
		Commuting:         row.Commuting,
		BuildingMustHaves: row.BuildingMustHaves,
		UnitMustHaves:     row.UnitMustHaves,
		SpecialNeeds:      row.SpecialNeeds,
		Personality:       row.Personality,
	}, nil
}
