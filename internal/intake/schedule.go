package intake

import (
	"fmt"
	"net/mail"
	"sort"
	"strconv"

	"github.com/dukerupert/homeeasy/internal/model"
)

const defaultCloseConfidence = 50

// ValidateSchedule validates a tour schedule with its repeatable stops.
func ValidateSchedule(raw Raw) (*model.TourSchedule, error) {
	return Validator{}.Schedule(raw)
}

func (v Validator) Schedule(raw Raw) (*model.TourSchedule, error) {
	f := newFields(raw)
	f.require("client_id")

	s := &model.TourSchedule{
		ClientID:        f.clientID("client_id"),
		CloseConfidence: defaultCloseConfidence,
	}
	if n, ok := f.integer("close_confidence"); ok && f.between("close_confidence", float64(n), 0, 100) {
		s.CloseConfidence = n
	}

	stops, ok := stopList(f, "stops")
	if ok && len(stops) == 0 {
		f.fail("stops", "must contain at least one tour stop")
	}
	for i, attrs := range stops {
		s.Stops = append(s.Stops, stop(f, fmt.Sprintf("stops[%d]", i), i, attrs))
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return s, nil
}

// stopList accepts a JSON array of objects or the index-keyed map produced
// by FromForm for "stops.0.building" style keys.
func stopList(f *fields, field string) ([]map[string]any, bool) {
	v, ok := f.lookup(field)
	if !ok {
		f.fail(field, reasonRequired)
		return nil, false
	}
	var out []map[string]any
	switch t := v.(type) {
	case []any:
		for i, item := range t {
			m, ok := asObject(item)
			if !ok {
				f.fail(fmt.Sprintf("%s[%d]", field, i), "must be an object")
				continue
			}
			out = append(out, m)
		}
	case map[string]any:
		keys := make([]int, 0, len(t))
		for k := range t {
			n, err := strconv.Atoi(k)
			if err != nil || n < 0 {
				f.fail(field+"."+k, "is not a stop index")
				continue
			}
			keys = append(keys, n)
		}
		sort.Ints(keys)
		for _, n := range keys {
			m, ok := asObject(t[strconv.Itoa(n)])
			if !ok {
				f.fail(fmt.Sprintf("%s[%d]", field, n), "must be an object")
				continue
			}
			out = append(out, m)
		}
	default:
		f.fail(field, "must be a list of tour stops")
		return nil, false
	}
	return out, true
}

func stop(parent *fields, prefix string, pos int, attrs map[string]any) model.TourStop {
	f := newFields(Raw(attrs))
	f.require("building", "tour_date")

	st := model.TourStop{
		Position:          pos,
		Building:          f.text("building"),
		UnitNumber:        f.text("unit_number"),
		Price:             f.optNumber("price"),
		TourType:          enum(f, "tour_type", model.ParseTourType),
		Status:            enum(f, "status", model.ParseTourStatus),
		BookedVia:         enum(f, "booked_via", model.ParseBookedVia),
		TouringRep:        f.text("touring_rep"),
		SelectedBy:        enum(f, "selected_by", model.ParseSelectedBy),
		LeasingAgent:      f.text("leasing_agent"),
		LeasingAgentEmail: f.text("leasing_agent_email"),
		LeasingAgentPhone: f.text("leasing_agent_phone"),
		Comment:           f.text("comment"),
	}
	if d, ok := f.date("tour_date"); ok {
		st.TourDate = d
	}
	if c, ok := f.clock("tour_time"); ok {
		st.TourTime = c
	}
	if st.TourType == "" {
		st.TourType = model.TourAny
	}
	if st.Status == "" {
		st.Status = model.TourPending
	}
	if st.LeasingAgentEmail != "" {
		addr, err := mail.ParseAddress(st.LeasingAgentEmail)
		if err != nil {
			f.fail("leasing_agent_email", "must be a valid email address")
		} else {
			st.LeasingAgentEmail = addr.Address
		}
	}

	for _, e := range f.errs {
		parent.fail(prefix+"."+e.Field, e.Reason)
	}
	return st
}
