package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Kind classifies a persistence failure.
type Kind int

const (
	// ConnectionFailure means the backend could not be reached or gave up.
	ConnectionFailure Kind = iota + 1
	// ConstraintViolation means the backend rejected the row, e.g. an unknown client_id.
	ConstraintViolation
	// SerializationFailure means a structured field could not be encoded.
	SerializationFailure
)

func (k Kind) String() string {
	switch k {
	case ConnectionFailure:
		return "connection failure"
	case ConstraintViolation:
		return "constraint violation"
	case SerializationFailure:
		return "serialization failure"
	}
	return "unknown"
}

// PersistenceError is returned by every write in this package.
type PersistenceError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// KindOf returns the kind of a PersistenceError in err's chain, or 0.
func KindOf(err error) Kind {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

var ErrClientNotFound = errors.New("client does not exist")

func constraintErr(op string, err error) error {
	return &PersistenceError{Kind: ConstraintViolation, Op: op, Err: err}
}

func serializationErr(op string, err error) error {
	return &PersistenceError{Kind: SerializationFailure, Op: op, Err: err}
}

// classify wraps a driver error with its kind. Anything the backend did not
// report as a constraint problem is a connection failure: the statement
// never reached a committed state.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Kind: kindFor(err), Op: op, Err: err}
}

func kindFor(err error) Kind {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "23" {
			return ConstraintViolation
		}
		return ConnectionFailure
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return ConstraintViolation
		}
		return ConnectionFailure
	}

	// driver.ErrBadConn, net.Error, refused dials and expired contexts all
	// land here.
	return ConnectionFailure
}
