package intake

import "github.com/dukerupert/homeeasy/internal/model"

func ValidateDeadMark(raw Raw) (*model.DeadMark, error) {
	f := newFields(raw)
	f.require("client_id", "reason")
	d := &model.DeadMark{
		ClientID: f.clientID("client_id"),
		Reason:   f.text("reason"),
	}
	if err := f.err(); err != nil {
		return nil, err
	}
	return d, nil
}
