package animals

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateID     = errors.New("duplicate animal id")
	ErrIO              = errors.New("storage i/o error")
	ErrMalformedRecord = errors.New("malformed record")
	ErrDeserialization = errors.New("cannot deserialize registry blob")
)

// RecordError describe una fila del archivo delimitado que no se pudo parsear.
// Line es 1-based (como lo ve un humano en el editor).
type RecordError struct {
	Line int
	Text string
	Err  error
}

func (e *RecordError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap permite errors.Is(err, ErrMalformedRecord).
func (e *RecordError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
