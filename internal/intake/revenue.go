package intake

import "github.com/dukerupert/homeeasy/internal/model"

const (
	defaultLeaseTerm  = 12
	defaultCommission = 100
)

// ValidateRevenue validates a closed-deal revenue entry. Milestones are read
// from "<kind>" toggles and "<kind>_date" fields, e.g. invoice_sent and
// invoice_sent_date.
func ValidateRevenue(raw Raw) (*model.RevenueEntry, error) {
	f := newFields(raw)
	f.require("client_id")

	e := &model.RevenueEntry{
		ClientID:             f.clientID("client_id"),
		ClientName:           f.text("client_name"),
		SalesRepID:           f.text("sales_rep_id"),
		SalesRepName:         f.text("sales_rep_name"),
		TourRepID:            f.text("tour_rep_id"),
		TourRepName:          f.text("tour_rep_name"),
		BuildingID:           f.text("building_id"),
		BuildingName:         f.text("building_name"),
		UnitNumber:           f.text("unit_number"),
		TourID:               f.text("tour_id"),
		MoveInDate:           f.optDate("move_in_date"),
		TourDate:             f.optDate("tour_date"),
		LeaseTerm:            defaultLeaseTerm,
		Beds:                 1,
		Baths:                1,
		CommissionPercentage: defaultCommission,
		ConcessionText:       f.text("concession_text"),
		ApplicationStatus:    enum(f, "application_status", model.ParseApplicationStatus),
		Month:                enum(f, "month", model.ParseMonth),
		Comments:             f.text("comments"),
	}
	e.ApplicationApprovedDate = f.optDate("application_approved_date")

	if n, ok := f.integer("lease_term"); ok && f.between("lease_term", float64(n), 1, 48) {
		e.LeaseTerm = n
	}
	if n, ok := f.integer("year"); ok && f.between("year", float64(n), 2000, 2100) {
		e.Year = &n
	}
	if n, ok := f.integer("beds"); ok && f.between("beds", float64(n), 0, 8) {
		e.Beds = n
	}
	if n, ok := f.number("baths"); ok && f.between("baths", n, 1, 8) && f.halfStep("baths", n) {
		e.Baths = n
	}
	if n, ok := f.integer("commission_percentage"); ok && f.between("commission_percentage", float64(n), 0, 100) {
		e.CommissionPercentage = n
	}
	if n, ok := f.number("concession_free_months"); ok && f.halfStep("concession_free_months", n) {
		e.ConcessionFreeMonths = n
	}
	e.Rent, _ = f.number("rent")
	e.AdditionalConcession, _ = f.number("additional_concession")
	e.TotalConcession, _ = f.number("total_concession_value")
	e.NetEffective, _ = f.number("net_effective")
	e.DealValue, _ = f.number("deal_value")

	if e.ApplicationStatus == "" {
		e.ApplicationStatus = model.ApplicationNotDecided
	}

	e.Milestones = model.Milestones{}
	for _, kind := range model.MilestoneKinds {
		m := model.Milestone{
			Done: f.flag(string(kind)),
			Date: f.optDate(string(kind) + "_date"),
		}
		if m.Done || m.Date != nil {
			e.Milestones[kind] = m
		}
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return e, nil
}
