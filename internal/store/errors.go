package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrValidation means the input was rejected before touching the store.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the targeted item or site does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUniquenessConflict means a concurrent insert won the race for a
	// unique key. Re-reading resolves it.
	ErrUniquenessConflict = errors.New("uniqueness conflict")
	// ErrPersistence covers every other store failure. The operation was
	// rolled back and may be retried.
	ErrPersistence = errors.New("persistence failure")
)

// Error is returned by every store operation.
type Error struct {
	Kind error  // one of the Err* kinds above
	Op   string // operation, e.g. "register movement"
	Msg  string // caller-facing detail, may be empty
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is matches the error kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func validationError(op, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: msg}
}

func notFoundError(op, msg string) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: msg}
}

// classify wraps err for op, keeping an existing kind and mapping unique
// violations to ErrUniquenessConflict. Everything else is ErrPersistence.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if isUniqueViolation(err) {
		return &Error{Kind: ErrUniquenessConflict, Op: op, Err: err}
	}
	return &Error{Kind: ErrPersistence, Op: op, Err: err}
}

// txError is classify for failures inside a write transaction. The
// transaction has been abandoned, so a uniqueness conflict cannot be resolved
// by re-reading and is reported as ErrPersistence.
func txError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		if se.Kind != ErrUniquenessConflict {
			return err
		}
		// Keep only the cause so the result no longer matches the conflict kind.
		return &Error{Kind: ErrPersistence, Op: op, Msg: "conflicting concurrent write", Err: se.Err}
	}
	if isUniqueViolation(err) {
		return &Error{Kind: ErrPersistence, Op: op, Msg: "conflicting concurrent write", Err: err}
	}
	return classify(op, err)
}

// isUniqueViolation recognizes unique-key violations from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch code := liteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// Primary code only when extended codes are off.
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
