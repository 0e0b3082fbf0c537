package intake

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dukerupert/homeeasy/internal/model"
)

// Validator checks raw intake submissions. The zero value is ready to use.
type Validator struct {
	// RequireTourDate makes tour_date mandatory, as on the tour-first
	// variant of the intake form.
	RequireTourDate bool
}

// ValidateRequirement validates raw with the default Validator.
func ValidateRequirement(raw Raw) (*model.Requirement, error) {
	return Validator{}.Requirement(raw)
}

// Requirement converts raw into a typed requirement. On failure it returns
// nil and an Errors value listing every problem found.
func (v Validator) Requirement(raw Raw) (*model.Requirement, error) {
	f := newFields(canonical(raw))

	required := []string{"client_id", "move_in_date", "budget", "sqft", "beds", "baths"}
	if v.RequireTourDate {
		required = append(required, "tour_date")
	}
	f.require(required...)

	r := &model.Requirement{}
	r.ClientID = f.clientID("client_id")

	if d, ok := f.date("move_in_date"); ok {
		r.MoveInDate = d
	}
	r.MoveInDateMax = f.optDate("move_in_date_max")
	if r.MoveInDateMax != nil && !r.MoveInDate.IsZero() {
		f.maxAtLeast("move_in_date_max", "move_in_date", true, r.MoveInDateMax.Compare(r.MoveInDate))
	}
	r.TourDate = f.optDate("tour_date")

	budget, budgetOK := f.number("budget")
	r.Budget = budget
	r.BudgetMax = f.optNumber("budget_max")
	if r.BudgetMax != nil {
		f.maxAtLeast("budget_max", "budget", budgetOK, compareFloat(*r.BudgetMax, budget))
	}

	sqft, sqftOK := f.integer("sqft")
	r.Sqft = sqft
	r.SqftMax = f.optInteger("sqft_max")
	if r.SqftMax != nil {
		f.maxAtLeast("sqft_max", "sqft", sqftOK, compareFloat(float64(*r.SqftMax), float64(sqft)))
	}

	r.Beds, _ = f.integer("beds")
	if baths, ok := f.number("baths"); ok && f.halfStep("baths", baths) {
		r.Baths = baths
	}
	r.LeaseTerm = f.optInteger("lease_term")

	r.Parking = enum(f, "parking", model.ParseParking)
	r.Pets = enum(f, "pets", model.ParsePetPolicy)
	r.WasherDryer = enum(f, "washer_dryer", model.ParseWasherDryer)
	r.Preference = enum(f, "preference", model.ParsePreference)

	r.ZipCodes = model.NewTokenSet(f.list("zip_codes")...)
	r.Neighborhoods = model.NewTokenSet(f.list("neighborhoods")...)
	r.NeighborhoodSpecific = f.flag("neighborhood_specific")
	r.Amenities = amenities(f)

	r.Section8 = f.flag("section8")
	r.Cosigner = f.flag("cosigner")
	r.CosignerComment = f.text("cosigner_comment")
	r.MonthlyIncome = f.optNumber("monthly_income")
	r.CreditScore = f.optNumber("credit_score")
	r.PeopleLiving = f.optInteger("people_living")

	r.AnotherBroker = enum(f, "another_broker", model.ParseYesNo)
	r.AnotherBrokerComment = f.text("another_broker_comment")
	r.ConfirmTour = enum(f, "confirm_tour", model.ParseYesNo)
	r.TourPerson = f.text("tour_person")

	r.Availability = availability(f, "availability")

	r.Comment = f.text("comment")
	r.PetsComment = f.text("pets_comment")
	r.ParkingComment = f.text("parking_comment")
	r.MovingReason = f.text("moving_reason")
	r.WorkLocation = f.text("work_location")
	r.Commuting = f.text("commuting")
	r.BuildingMustHaves = f.text("building_must_haves")
	r.UnitMustHaves = f.text("unit_must_haves")
	r.SpecialNeeds = f.text("special_needs")
	r.Personality = f.text("personality")

	if err := f.err(); err != nil {
		return nil, err
	}
	return r, nil
}

func amenities(f *fields) []model.Amenity {
	var tags []model.Amenity
	for _, s := range f.list("amenities") {
		a, ok := model.ParseAmenity(s)
		if !ok {
			f.fail("amenities", fmt.Sprintf("has unknown value %q", s))
			continue
		}
		tags = append(tags, a)
	}
	return model.NewAmenitySet(tags...)
}

// availability normalizes the weekday grid. Days left out are unavailable;
// unknown day names and inverted windows are errors. Errors are reported for
// unknown names in sorted order, then for days Monday first.
func availability(f *fields, field string) model.Availability {
	out := model.NewAvailability()
	v, ok := f.lookup(field)
	if !ok {
		return out
	}
	days, ok := asObject(v)
	if !ok {
		f.fail(field, "must be an object keyed by weekday")
		return out
	}

	keyFor := make(map[model.Weekday]string, len(days))
	for _, key := range slices.Sorted(maps.Keys(days)) {
		day, ok := model.ParseWeekday(key)
		if !ok {
			f.fail(field+"."+key, "is not a weekday")
			continue
		}
		// The canonical name beats an alias for the same day.
		if prev, seen := keyFor[day]; !seen || (prev != string(day) && key == string(day)) {
			keyFor[day] = key
		}
	}

	for _, day := range model.Weekdays {
		key, ok := keyFor[day]
		if !ok {
			continue
		}
		prefix := field + "." + string(day)
		attrs, ok := asObject(days[key])
		if !ok {
			f.fail(prefix, "must be an object with available, start and end")
			continue
		}
		w, ok := window(f, prefix, attrs)
		if ok {
			out[day] = w
		}
	}
	return out
}

func window(parent *fields, prefix string, attrs map[string]any) (model.Window, bool) {
	if _, ok := attrs["available"]; !ok {
		if inc, ok := attrs["include"]; ok {
			attrs["available"] = inc
		}
	}
	f := newFields(Raw(attrs))
	w := model.Window{Available: f.flag("available")}
	if c, ok := f.clock("start"); ok && c != nil {
		w.Start = *c
	}
	if c, ok := f.clock("end"); ok && c != nil {
		w.End = *c
	}
	if w.Available {
		if !f.present("start") {
			f.fail("start", reasonRequired)
		}
		if !f.present("end") {
			f.fail("end", reasonRequired)
		}
		if len(f.errs) == 0 && w.End < w.Start {
			f.fail("end", "must be greater than or equal to start")
		}
	}
	for _, e := range f.errs {
		parent.fail(prefix+"."+e.Field, e.Reason)
	}
	return w, len(f.errs) == 0
}

// asObject accepts a decoded JSON object or a string holding one, which is
// how the availability grid arrives from older form drafts.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		cp := make(map[string]any, len(t))
		for k, val := range t {
			cp[k] = val
		}
		return cp, true
	case Raw:
		return asObject(map[string]any(t))
	case string:
		dec := json.NewDecoder(strings.NewReader(t))
		dec.UseNumber()
		var m map[string]any
		if err := dec.Decode(&m); err != nil || m == nil {
			return nil, false
		}
		return m, true
	}
	return nil, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
