package intake

// NewClient is a validated roster addition.
type NewClient struct {
	Name        string
	AssignedRep string
}

const maxNameLength = 200

// ValidateClient checks a new roster entry: a non-blank name and an
// optional assigned rep.
func ValidateClient(raw Raw) (*NewClient, error) {
	f := newFields(raw)
	f.require("name")
	c := &NewClient{
		Name:        f.text("name"),
		AssignedRep: f.text("assigned_rep"),
	}
	if len(c.Name) > maxNameLength {
		f.fail("name", "must be at most 200 characters")
	}
	if err := f.err(); err != nil {
		return nil, err
	}
	return c, nil
}
