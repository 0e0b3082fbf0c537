package model

import "time"

// Requirement is one client's housing search criteria as submitted on the
// intake form. ID and CreatedOn are assigned on insert.
type Requirement struct {
	ID        int64     `json:"id,omitempty"`
	ClientID  int64     `json:"client_id"`
	CreatedOn time.Time `json:"created_on,omitzero"`

	MoveInDate    time.Time  `json:"move_in_date"`
	MoveInDateMax *time.Time `json:"move_in_date_max,omitempty"`
	TourDate      *time.Time `json:"tour_date,omitempty"`

	Budget    float64  `json:"budget"`
	BudgetMax *float64 `json:"budget_max,omitempty"`
	Sqft      int64    `json:"sqft"`
	SqftMax   *int64   `json:"sqft_max,omitempty"`
	Beds      int64    `json:"beds"`
	Baths     float64  `json:"baths"`
	LeaseTerm *int64   `json:"lease_term,omitempty"`

	Parking     Parking     `json:"parking,omitempty"`
	Pets        PetPolicy   `json:"pets,omitempty"`
	WasherDryer WasherDryer `json:"washer_dryer,omitempty"`
	Preference  Preference  `json:"preference,omitempty"`

	ZipCodes             TokenSet  `json:"zip_codes"`
	Neighborhoods        TokenSet  `json:"neighborhoods"`
	NeighborhoodSpecific bool      `json:"neighborhood_specific"`
	Amenities            []Amenity `json:"amenities"`

	Section8        bool     `json:"section8"`
	Cosigner        bool     `json:"cosigner"`
	CosignerComment string   `json:"cosigner_comment,omitempty"`
	MonthlyIncome   *float64 `json:"monthly_income,omitempty"`
	CreditScore     *float64 `json:"credit_score,omitempty"`
	PeopleLiving    *int64   `json:"people_living,omitempty"`

	AnotherBroker        YesNo  `json:"another_broker,omitempty"`
	AnotherBrokerComment string `json:"another_broker_comment,omitempty"`
	ConfirmTour          YesNo  `json:"confirm_tour,omitempty"`
	TourPerson           string `json:"tour_person,omitempty"`

	Availability Availability `json:"availability"`

	Comment           string `json:"comment,omitempty"`
	PetsComment       string `json:"pets_comment,omitempty"`
	ParkingComment    string `json:"parking_comment,omitempty"`
	MovingReason      string `json:"moving_reason,omitempty"`
	WorkLocation      string `json:"work_location,omitempty"`
	Commuting         string `json:"commuting,omitempty"`
	BuildingMustHaves string `json:"building_must_haves,omitempty"`
	UnitMustHaves     string `json:"unit_must_haves,omitempty"`
	SpecialNeeds      string `json:"special_needs,omitempty"`
	Personality       string `json:"personality,omitempty"`
}
