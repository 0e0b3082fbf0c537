package model

import (
	"encoding/json"
	"time"
)

type ApplicationStatus string

const (
	ApplicationNotDecided ApplicationStatus = "not_decided"
	ApplicationDenied     ApplicationStatus = "denied"
	ApplicationApproved   ApplicationStatus = "approved"
)

var ApplicationStatuses = []ApplicationStatus{ApplicationNotDecided, ApplicationDenied, ApplicationApproved}

func (a ApplicationStatus) Valid() bool { return isMember(a, ApplicationStatuses) }

func (a ApplicationStatus) Label() string {
	switch a {
	case ApplicationNotDecided:
		return "Not decided yet"
	case ApplicationDenied:
		return "Application Denied"
	case ApplicationApproved:
		return "Application Approved"
	}
	return string(a)
}

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	return parseEnum(s, ApplicationStatuses)
}

type Month string

var Months = []Month{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

func (m Month) Valid() bool { return isMember(m, Months) }

func (m Month) Label() string {
	for i, v := range Months {
		if v == m {
			return time.Month(i + 1).String()
		}
	}
	return string(m)
}

func ParseMonth(s string) (Month, bool) { return parseEnum(s, Months) }

// MilestoneKind names one step of the post-close invoicing workflow.
type MilestoneKind string

const (
	InvoicePrepared      MilestoneKind = "invoice_prepared"
	InvoiceSent          MilestoneKind = "invoice_sent"
	InvoiceCollected     MilestoneKind = "invoice_collected"
	SignedLease          MilestoneKind = "signed_lease"
	DealClosed           MilestoneKind = "is_closed"
	InvoiceInfoRequested MilestoneKind = "invoice_info_requested"
	InvoiceInfoReceived  MilestoneKind = "invoice_info_received"
	PaymentToLeadSource  MilestoneKind = "payment_to_lead_source"
	DisputeRaised        MilestoneKind = "dispute_raised"
	DisputeResolved      MilestoneKind = "dispute_resolved"
)

var MilestoneKinds = []MilestoneKind{
	InvoicePrepared, InvoiceSent, InvoiceCollected, SignedLease, DealClosed,
	InvoiceInfoRequested, InvoiceInfoReceived, PaymentToLeadSource,
	DisputeRaised, DisputeResolved,
}

type Milestone struct {
	Done bool       `json:"done"`
	Date *time.Time `json:"date,omitempty"`
}

type Milestones map[MilestoneKind]Milestone

func (m Milestones) Encode() (string, error) {
	if m == nil {
		m = Milestones{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeMilestones(s string) (Milestones, error) {
	m := Milestones{}
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// RevenueEntry records a closed deal for revenue tracking.
type RevenueEntry struct {
	ID        int64     `json:"id,omitempty"`
	ClientID  int64     `json:"client_id"`
	CreatedOn time.Time `json:"created_on,omitzero"`

	ClientName   string `json:"client_name,omitempty"`
	SalesRepID   string `json:"sales_rep_id,omitempty"`
	SalesRepName string `json:"sales_rep_name,omitempty"`
	TourRepID    string `json:"tour_rep_id,omitempty"`
	TourRepName  string `json:"tour_rep_name,omitempty"`
	BuildingID   string `json:"building_id,omitempty"`
	BuildingName string `json:"building_name,omitempty"`
	UnitNumber   string `json:"unit_number,omitempty"`
	TourID       string `json:"tour_id,omitempty"`

	MoveInDate              *time.Time `json:"move_in_date,omitempty"`
	TourDate                *time.Time `json:"tour_date,omitempty"`
	ApplicationApprovedDate *time.Time `json:"application_approved_date,omitempty"`
	LeaseTerm               int64      `json:"lease_term"`
	Month                   Month      `json:"month,omitempty"`
	Year                    *int64     `json:"year,omitempty"`

	Beds                 int64   `json:"beds"`
	Baths                float64 `json:"baths"`
	Rent                 float64 `json:"rent"`
	ConcessionFreeMonths float64 `json:"concession_free_months"`
	AdditionalConcession float64 `json:"additional_concession"`
	TotalConcession      float64 `json:"total_concession_value"`
	NetEffective         float64 `json:"net_effective"`
	CommissionPercentage int64   `json:"commission_percentage"`
	DealValue            float64 `json:"deal_value"`
	ConcessionText       string  `json:"concession_text,omitempty"`

	ApplicationStatus ApplicationStatus `json:"application_status"`
	Milestones        Milestones        `json:"milestones"`
	Comments          string            `json:"comments,omitempty"`
}
