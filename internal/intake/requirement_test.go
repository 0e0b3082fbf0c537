package intake

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/homeeasy/internal/model"
)

func validRaw(t *testing.T) Raw {
	t.Helper()
	raw, err := ParseJSON([]byte(`{
		"client_id": "731602",
		"move_in_date": "2025-06-01",
		"budget": 2000,
		"sqft": 800,
		"beds": 2,
		"baths": 1.0
	}`))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	return raw
}

func validationErrors(t *testing.T, err error) Errors {
	t.Helper()
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("err = %v, want intake.Errors", err)
	}
	return errs
}

func TestRequirementMinimal(t *testing.T) {
	r, err := ValidateRequirement(validRaw(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r.ClientID != 731602 {
		t.Errorf("client_id = %d, want 731602", r.ClientID)
	}
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !r.MoveInDate.Equal(want) {
		t.Errorf("move_in_date = %v, want %v", r.MoveInDate, want)
	}
	if r.Budget != 2000 {
		t.Errorf("budget = %v, want 2000", r.Budget)
	}
	if r.Sqft != 800 {
		t.Errorf("sqft = %d, want 800", r.Sqft)
	}
	if r.Beds != 2 {
		t.Errorf("beds = %d, want 2", r.Beds)
	}
	if r.Baths != 1 {
		t.Errorf("baths = %v, want 1", r.Baths)
	}
	if !r.Availability.Complete() {
		t.Errorf("availability has %d days, want 7", len(r.Availability))
	}
	for _, d := range model.Weekdays {
		if r.Availability[d].Available {
			t.Errorf("%s available, want unavailable", d)
		}
	}
	if r.BudgetMax != nil || r.SqftMax != nil || r.MoveInDateMax != nil {
		t.Error("expected optional max fields to be nil")
	}
}

func TestRequirementMissingBudgetAndSqft(t *testing.T) {
	raw := validRaw(t)
	delete(raw, "budget")
	raw["sqft"] = "   "

	r, err := ValidateRequirement(raw)
	if r != nil {
		t.Error("expected nil record on failure")
	}
	errs := validationErrors(t, err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors (%v), want 2", len(errs), errs)
	}
	for _, field := range []string{"budget", "sqft"} {
		if !errs.Has(field) {
			t.Errorf("missing error for %s", field)
		}
	}
}

func TestRequirementEachRequiredField(t *testing.T) {
	for _, field := range []string{"client_id", "move_in_date", "budget", "sqft", "beds", "baths"} {
		t.Run(field, func(t *testing.T) {
			raw := validRaw(t)
			delete(raw, field)
			errs := validationErrors(t, func() error { _, err := ValidateRequirement(raw); return err }())
			if len(errs) != 1 || errs[0].Field != field {
				t.Errorf("errors = %v, want exactly one for %s", errs, field)
			}
			if errs[0].Reason != reasonRequired {
				t.Errorf("reason = %q, want %q", errs[0].Reason, reasonRequired)
			}
		})
	}
}

func TestRequirementTourDateOption(t *testing.T) {
	if _, err := ValidateRequirement(validRaw(t)); err != nil {
		t.Fatalf("tour_date should be optional by default: %v", err)
	}

	v := Validator{RequireTourDate: true}
	_, err := v.Requirement(validRaw(t))
	errs := validationErrors(t, err)
	if !errs.Has("tour_date") {
		t.Errorf("errors = %v, want tour_date", errs)
	}

	raw := validRaw(t)
	raw["tour_date"] = "06/15/2025"
	r, err := v.Requirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r.TourDate == nil || r.TourDate.Day() != 15 {
		t.Errorf("tour_date = %v, want 2025-06-15", r.TourDate)
	}
}

func TestRequirementMaxFields(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   any
		wantErr bool
	}{
		{"budget equal", "budget_max", "2000", false},
		{"budget above", "budget_max", "2500", false},
		{"budget below", "budget_max", "1999.99", true},
		{"sqft equal", "sqft_max", "800", false},
		{"sqft below", "sqft_max", "799", true},
		{"move in equal", "move_in_date_max", "2025-06-01", false},
		{"move in before", "move_in_date_max", "2025-05-31", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw(t)
			raw[tt.field] = tt.value
			_, err := ValidateRequirement(raw)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			errs := validationErrors(t, err)
			if len(errs) != 1 || errs[0].Field != tt.field {
				t.Fatalf("errors = %v, want one for %s", errs, tt.field)
			}
			base := strings.TrimSuffix(tt.field, "_max")
			if !strings.Contains(errs[0].Error(), base) {
				t.Errorf("error %q does not name %s", errs[0].Error(), base)
			}
		})
	}
}

func TestRequirementNumbers(t *testing.T) {
	tests := []struct {
		field  string
		value  any
		reason string
	}{
		{"beds", "-1", reasonNegative},
		{"beds", "2.5", reasonNotInteger},
		{"beds", "9223372036854775808", reasonTooLarge},
		{"sqft", "9223372036854775808", reasonTooLarge},
		{"sqft", "1e30", reasonTooLarge},
		{"budget", "lots", reasonNotNumber},
		{"budget", "NaN", reasonNotNumber},
		{"baths", "1.25", "must be in steps of 0.5"},
		{"move_in_date", "2025-02-30", reasonNotDate},
		{"client_id", "abc", reasonNotClientID},
		{"client_id", "0", reasonNotClientID},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value.(string), func(t *testing.T) {
			raw := validRaw(t)
			raw[tt.field] = tt.value
			_, err := ValidateRequirement(raw)
			errs := validationErrors(t, err)
			if len(errs) != 1 {
				t.Fatalf("errors = %v, want 1", errs)
			}
			if errs[0].Field != tt.field || errs[0].Reason != tt.reason {
				t.Errorf("error = %+v, want %s %s", errs[0], tt.field, tt.reason)
			}
		})
	}
}

func TestRequirementCurrencyAndHalfBaths(t *testing.T) {
	raw := validRaw(t)
	raw["budget"] = "$2,450"
	raw["baths"] = "1.5"
	r, err := ValidateRequirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r.Budget != 2450 {
		t.Errorf("budget = %v, want 2450", r.Budget)
	}
	if r.Baths != 1.5 {
		t.Errorf("baths = %v, want 1.5", r.Baths)
	}
}

func TestRequirementEnums(t *testing.T) {
	raw := validRaw(t)
	raw["parking"] = "Garage"
	raw["pets"] = "cats ok"
	raw["washer_dryer"] = "In-Unit"
	raw["preference"] = "CONDO"
	raw["another_broker"] = "No"
	raw["amenities"] = []any{"Pool", "gym", "pool", "Covered Parking"}

	r, err := ValidateRequirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r.Parking != model.ParkingGarage {
		t.Errorf("parking = %q, want %q", r.Parking, model.ParkingGarage)
	}
	if r.Pets != model.PetsCatsOK {
		t.Errorf("pets = %q, want %q", r.Pets, model.PetsCatsOK)
	}
	if r.WasherDryer != model.WasherDryerInUnit {
		t.Errorf("washer_dryer = %q, want %q", r.WasherDryer, model.WasherDryerInUnit)
	}
	if r.Preference != model.PreferenceCondo {
		t.Errorf("preference = %q, want %q", r.Preference, model.PreferenceCondo)
	}
	if r.AnotherBroker != model.No {
		t.Errorf("another_broker = %q, want %q", r.AnotherBroker, model.No)
	}
	want := []model.Amenity{model.AmenityCoveredParking, model.AmenityGym, model.AmenityPool}
	if len(r.Amenities) != len(want) {
		t.Fatalf("amenities = %v, want %v", r.Amenities, want)
	}
	for i := range want {
		if r.Amenities[i] != want[i] {
			t.Errorf("amenities[%d] = %q, want %q", i, r.Amenities[i], want[i])
		}
	}
}

func TestRequirementUnknownEnum(t *testing.T) {
	raw := validRaw(t)
	raw["parking"] = "moat"
	raw["amenities"] = "pool, helipad"
	_, err := ValidateRequirement(raw)
	errs := validationErrors(t, err)
	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2", errs)
	}
	if !errs.Has("parking") || !errs.Has("amenities") {
		t.Errorf("fields = %v, want parking and amenities", errs.Fields())
	}
}

func TestRequirementTokenSets(t *testing.T) {
	raw := validRaw(t)
	raw["zip_codes"] = "10002, 10001,10002 ,"
	raw["neighborhoods"] = []any{"Harlem", "harlem", " East  Village "}
	r, err := ValidateRequirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(r.ZipCodes) != 2 || r.ZipCodes[0] != "10001" || r.ZipCodes[1] != "10002" {
		t.Errorf("zip_codes = %v, want [10001 10002]", r.ZipCodes)
	}
	if len(r.Neighborhoods) != 2 || r.Neighborhoods[0] != "East Village" || r.Neighborhoods[1] != "Harlem" {
		t.Errorf("neighborhoods = %v, want [East Village Harlem]", r.Neighborhoods)
	}
}

func TestRequirementAvailability(t *testing.T) {
	raw := validRaw(t)
	raw["availability"] = map[string]any{
		"Monday": map[string]any{"available": true, "start": "09:00", "end": "17:30"},
		"sat":    map[string]any{"include": "on", "start": "10:00 AM", "end": "12:00 PM"},
	}
	r, err := ValidateRequirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !r.Availability.Complete() {
		t.Fatalf("availability has %d days, want 7", len(r.Availability))
	}
	mon := r.Availability[model.Monday]
	if !mon.Available || mon.Start != model.NewClock(9, 0) || mon.End != model.NewClock(17, 30) {
		t.Errorf("Monday = %+v", mon)
	}
	sat := r.Availability[model.Saturday]
	if !sat.Available || sat.Start != model.NewClock(10, 0) || sat.End != model.NewClock(12, 0) {
		t.Errorf("Saturday = %+v", sat)
	}
	if r.Availability[model.Sunday].Available {
		t.Error("Sunday should default to unavailable")
	}
}

func TestRequirementAvailabilityErrors(t *testing.T) {
	raw := validRaw(t)
	raw["availability"] = map[string]any{
		"Tuesday": map[string]any{"available": true, "start": "17:00", "end": "09:00"},
		"Funday":  map[string]any{"available": true},
		"Friday":  map[string]any{"available": true, "start": "09:00"},
	}
	_, err := ValidateRequirement(raw)
	errs := validationErrors(t, err)
	for _, field := range []string{"availability.Tuesday.end", "availability.Funday", "availability.Friday.end"} {
		if !errs.Has(field) {
			t.Errorf("missing error for %s in %v", field, errs.Fields())
		}
	}
	if len(errs) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(errs), errs)
	}
}

func TestRequirementHugeIntegersRejected(t *testing.T) {
	raw := validRaw(t)
	raw["sqft"] = "9223372036854775808"
	raw["beds"] = "9223372036854775808"
	raw["lease_term"] = "9223372036854775808"
	r, err := ValidateRequirement(raw)
	if err == nil {
		t.Fatalf("validate = %+v, want errors", r)
	}
	errs := validationErrors(t, err)
	for _, field := range []string{"sqft", "beds", "lease_term"} {
		if !errs.Has(field) {
			t.Errorf("missing error for %s in %v", field, errs.Fields())
		}
	}
}

func TestRequirementAvailabilityErrorOrder(t *testing.T) {
	grid := map[string]any{
		"Sunday":   map[string]any{"available": true, "start": "18:00", "end": "08:00"},
		"Zday":     map[string]any{"available": true},
		"Monday":   map[string]any{"available": true, "start": "09:00"},
		"Aday":     map[string]any{"available": true},
		"Thursday": "yes",
	}
	want := []string{
		"availability.Aday",
		"availability.Zday",
		"availability.Monday.end",
		"availability.Thursday",
		"availability.Sunday.end",
	}
	for i := 0; i < 20; i++ {
		raw := validRaw(t)
		raw["availability"] = grid
		_, err := ValidateRequirement(raw)
		got := validationErrors(t, err).Fields()
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("run %d: fields = %v, want %v", i, got, want)
		}
	}
}

func TestRequirementAvailabilityCanonicalNameWins(t *testing.T) {
	raw := validRaw(t)
	raw["availability"] = map[string]any{
		"sat":      map[string]any{"available": true, "start": "08:00", "end": "09:00"},
		"Saturday": map[string]any{"available": true, "start": "10:00", "end": "11:00"},
	}
	r, err := ValidateRequirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if sat := r.Availability[model.Saturday]; sat.Start != model.NewClock(10, 0) {
		t.Errorf("Saturday = %+v, want the window given under Saturday", sat)
	}
}

func TestRequirementAvailabilityEqualBounds(t *testing.T) {
	raw := validRaw(t)
	raw["availability"] = `{"Wednesday":{"available":true,"start":"12:00","end":"12:00"}}`
	r, err := ValidateRequirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !r.Availability[model.Wednesday].Available {
		t.Error("Wednesday should be available")
	}
}

func TestRequirementFromForm(t *testing.T) {
	form := url.Values{
		"client_id":    {"42"},
		"move_in_date": {"2025-07-01"},
		"max_budget":   {"3000"},
		"budget":       {"2500"},
		"sqft":         {"650"},
		"beds":         {"1"},
		"baths":        {"1"},
		"section8":     {"on"},
		"amenities":    {"gym", "doorman"},
		"zip":          {"11211"},
	}
	form.Set("availability.Thursday.available", "true")
	form.Set("availability.Thursday.start", "6:00 PM")
	form.Set("availability.Thursday.end", "8:00 PM")

	r, err := ValidateRequirement(FromForm(form))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r.BudgetMax == nil || *r.BudgetMax != 3000 {
		t.Errorf("budget_max = %v, want 3000", r.BudgetMax)
	}
	if !r.Section8 {
		t.Error("expected section8")
	}
	if len(r.Amenities) != 2 {
		t.Errorf("amenities = %v, want 2 tags", r.Amenities)
	}
	if !r.ZipCodes.Contains("11211") {
		t.Errorf("zip_codes = %v, want 11211", r.ZipCodes)
	}
	thu := r.Availability[model.Thursday]
	if !thu.Available || thu.Start != model.NewClock(18, 0) || thu.End != model.NewClock(20, 0) {
		t.Errorf("Thursday = %+v", thu)
	}
}

func TestRequirementCanonicalNameWins(t *testing.T) {
	raw := validRaw(t)
	raw["budget_max"] = "2200"
	raw["max_budget"] = "9999"
	r, err := ValidateRequirement(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r.BudgetMax == nil || *r.BudgetMax != 2200 {
		t.Errorf("budget_max = %v, want 2200", r.BudgetMax)
	}
}

func TestRequirementDoesNotMutateInput(t *testing.T) {
	raw := validRaw(t)
	raw["max_sqft"] = "900"
	if _, err := ValidateRequirement(raw); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, ok := raw["max_sqft"]; !ok {
		t.Error("legacy key removed from caller's map")
	}
	if _, ok := raw["sqft_max"]; ok {
		t.Error("canonical key added to caller's map")
	}
}
