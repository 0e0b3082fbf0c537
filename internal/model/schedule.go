package model

import "time"

type TourType string

const (
	TourAny        TourType = "any"
	TourInPerson   TourType = "in_person"
	TourVirtual    TourType = "virtual"
	TourSelfGuided TourType = "self_guided"
	TourVideosOnly TourType = "videos_only"
)

var TourTypes = []TourType{TourAny, TourInPerson, TourVirtual, TourSelfGuided, TourVideosOnly}

func (t TourType) Valid() bool { return isMember(t, TourTypes) }

func (t TourType) Label() string {
	switch t {
	case TourAny:
		return "Any"
	case TourInPerson:
		return "In-Person"
	case TourVirtual:
		return "Virtual"
	case TourSelfGuided:
		return "Self Guided"
	case TourVideosOnly:
		return "Videos Only"
	}
	return string(t)
}

func ParseTourType(s string) (TourType, bool) { return parseEnum(s, TourTypes) }

type TourStatus string

const (
	TourPending   TourStatus = "pending"
	TourConfirmed TourStatus = "confirmed"
	TourDone      TourStatus = "done"
	TourCancelled TourStatus = "cancelled"
)

var TourStatuses = []TourStatus{TourPending, TourConfirmed, TourDone, TourCancelled}

func (s TourStatus) Valid() bool { return isMember(s, TourStatuses) }

func (s TourStatus) Label() string {
	switch s {
	case TourPending:
		return "Pending"
	case TourConfirmed:
		return "Confirmed"
	case TourDone:
		return "Done"
	case TourCancelled:
		return "Cancelled"
	}
	return string(s)
}

func ParseTourStatus(s string) (TourStatus, bool) { return parseEnum(s, TourStatuses) }

type BookedVia string

const (
	BookedPhone  BookedVia = "phone"
	BookedEmail  BookedVia = "email"
	BookedCall   BookedVia = "call"
	BookedOnline BookedVia = "online"
)

var BookedVias = []BookedVia{BookedPhone, BookedEmail, BookedCall, BookedOnline}

func (b BookedVia) Valid() bool { return isMember(b, BookedVias) }

func (b BookedVia) Label() string {
	switch b {
	case BookedPhone:
		return "Phone"
	case BookedEmail:
		return "Email"
	case BookedCall:
		return "Call"
	case BookedOnline:
		return "Online"
	}
	return string(b)
}

func ParseBookedVia(s string) (BookedVia, bool) { return parseEnum(s, BookedVias) }

type SelectedBy string

const (
	SelectedBySalesRep SelectedBy = "sales_rep"
	SelectedByClient   SelectedBy = "client"
	SelectedByProperty SelectedBy = "property"
)

var SelectedBys = []SelectedBy{SelectedBySalesRep, SelectedByClient, SelectedByProperty}

func (s SelectedBy) Valid() bool { return isMember(s, SelectedBys) }

func (s SelectedBy) Label() string {
	switch s {
	case SelectedBySalesRep:
		return "Sales Rep"
	case SelectedByClient:
		return "Client"
	case SelectedByProperty:
		return "Property"
	}
	return string(s)
}

func ParseSelectedBy(s string) (SelectedBy, bool) { return parseEnum(s, SelectedBys) }

// TourSchedule groups the buildings a client will visit on one tour.
type TourSchedule struct {
	ID              int64      `json:"id,omitempty"`
	ClientID        int64      `json:"client_id"`
	CloseConfidence int64      `json:"close_confidence"`
	Stops           []TourStop `json:"stops"`
	CreatedOn       time.Time  `json:"created_on,omitzero"`
}

type TourStop struct {
	ID                int64      `json:"id,omitempty"`
	Position          int        `json:"position"`
	Building          string     `json:"building"`
	UnitNumber        string     `json:"unit_number,omitempty"`
	Price             *float64   `json:"price,omitempty"`
	TourDate          time.Time  `json:"tour_date"`
	TourTime          *Clock     `json:"tour_time,omitempty"`
	TourType          TourType   `json:"tour_type"`
	Status            TourStatus `json:"status"`
	BookedVia         BookedVia  `json:"booked_via,omitempty"`
	TouringRep        string     `json:"touring_rep,omitempty"`
	SelectedBy        SelectedBy `json:"selected_by,omitempty"`
	LeasingAgent      string     `json:"leasing_agent,omitempty"`
	LeasingAgentEmail string     `json:"leasing_agent_email,omitempty"`
	LeasingAgentPhone string     `json:"leasing_agent_phone,omitempty"`
	Comment           string     `json:"comment,omitempty"`
}
