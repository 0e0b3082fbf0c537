package model

import "strings"

// labeled is implemented by every closed categorical type in this package.
type labeled interface {
	~string
	Label() string
}

// normalizeCode folds case and separators so "In-Unit", "in unit" and
// "IN_UNIT" compare equal.
func normalizeCode(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	underscore := false
	for _, r := range s {
		switch r {
		case ' ', '-', '_', '/', '.':
			if !underscore && b.Len() > 0 {
				b.WriteByte('_')
				underscore = true
			}
		default:
			b.WriteRune(r)
			underscore = false
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// parseEnum matches s against the canonical code or the display label of
// every member of all.
func parseEnum[T labeled](s string, all []T) (T, bool) {
	n := normalizeCode(s)
	for _, v := range all {
		if n == normalizeCode(string(v)) || n == normalizeCode(v.Label()) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func isMember[T comparable](v T, all []T) bool {
	for _, m := range all {
		if m == v {
			return true
		}
	}
	return false
}

type Parking string

const (
	ParkingGarage Parking = "garage"
	ParkingStreet Parking = "street"
	ParkingLot    Parking = "lot"
)

var Parkings = []Parking{ParkingGarage, ParkingStreet, ParkingLot}

func (p Parking) Valid() bool { return isMember(p, Parkings) }

func (p Parking) Label() string {
	switch p {
	case ParkingGarage:
		return "Garage"
	case ParkingStreet:
		return "Street"
	case ParkingLot:
		return "Lot"
	}
	return string(p)
}

func ParseParking(s string) (Parking, bool) { return parseEnum(s, Parkings) }

type PetPolicy string

const (
	PetsNone   PetPolicy = "no_pets"
	PetsCatsOK PetPolicy = "cats_ok"
	PetsDogsOK PetPolicy = "dogs_ok"
)

var PetPolicies = []PetPolicy{PetsNone, PetsCatsOK, PetsDogsOK}

func (p PetPolicy) Valid() bool { return isMember(p, PetPolicies) }

func (p PetPolicy) Label() string {
	switch p {
	case PetsNone:
		return "No Pets"
	case PetsCatsOK:
		return "Cats OK"
	case PetsDogsOK:
		return "Dogs OK"
	}
	return string(p)
}

func ParsePetPolicy(s string) (PetPolicy, bool) { return parseEnum(s, PetPolicies) }

type WasherDryer string

const (
	WasherDryerAny    WasherDryer = "any"
	WasherDryerInUnit WasherDryer = "in_unit"
	WasherDryerOnSite WasherDryer = "on_site"
	WasherDryerNone   WasherDryer = "none"
)

var WasherDryers = []WasherDryer{WasherDryerAny, WasherDryerInUnit, WasherDryerOnSite, WasherDryerNone}

func (w WasherDryer) Valid() bool { return isMember(w, WasherDryers) }

func (w WasherDryer) Label() string {
	switch w {
	case WasherDryerAny:
		return "Any"
	case WasherDryerInUnit:
		return "In-Unit"
	case WasherDryerOnSite:
		return "On-Site"
	case WasherDryerNone:
		return "None"
	}
	return string(w)
}

func ParseWasherDryer(s string) (WasherDryer, bool) { return parseEnum(s, WasherDryers) }

type Amenity string

const (
	AmenityPool           Amenity = "pool"
	AmenityGym            Amenity = "gym"
	AmenityCoveredParking Amenity = "covered_parking"
	AmenityPetFriendly    Amenity = "pet_friendly"
	AmenityElevator       Amenity = "elevator"
	AmenityDoorman        Amenity = "doorman"
	AmenityRooftop        Amenity = "rooftop"
	AmenityLaundry        Amenity = "laundry"
)

var Amenities = []Amenity{
	AmenityPool, AmenityGym, AmenityCoveredParking, AmenityPetFriendly,
	AmenityElevator, AmenityDoorman, AmenityRooftop, AmenityLaundry,
}

func (a Amenity) Valid() bool { return isMember(a, Amenities) }

func (a Amenity) Label() string {
	switch a {
	case AmenityPool:
		return "Pool"
	case AmenityGym:
		return "Gym"
	case AmenityCoveredParking:
		return "Covered Parking"
	case AmenityPetFriendly:
		return "Pet Friendly"
	case AmenityElevator:
		return "Elevator"
	case AmenityDoorman:
		return "Doorman"
	case AmenityRooftop:
		return "Rooftop"
	case AmenityLaundry:
		return "Laundry"
	}
	return string(a)
}

func ParseAmenity(s string) (Amenity, bool) { return parseEnum(s, Amenities) }

// Preference is the rental-versus-condo question on the intake form.
type Preference string

const (
	PreferenceRental Preference = "rental"
	PreferenceCondo  Preference = "condo"
)

var Preferences = []Preference{PreferenceRental, PreferenceCondo}

func (p Preference) Valid() bool { return isMember(p, Preferences) }

func (p Preference) Label() string {
	switch p {
	case PreferenceRental:
		return "Rental"
	case PreferenceCondo:
		return "Condo"
	}
	return string(p)
}

func ParsePreference(s string) (Preference, bool) { return parseEnum(s, Preferences) }

type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

var YesNos = []YesNo{Yes, No}

func (y YesNo) Valid() bool { return isMember(y, YesNos) }

func (y YesNo) Label() string {
	switch y {
	case Yes:
		return "Yes"
	case No:
		return "No"
	}
	return string(y)
}

func ParseYesNo(s string) (YesNo, bool) { return parseEnum(s, YesNos) }
