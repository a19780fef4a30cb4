package explorer

import (
	"errors"
	"fmt"
)

// ErrInvalidRow is returned by Validate when a row violates the table contract.
var ErrInvalidRow = errors.New("invalid row")

func invalid(table, column, format string, args ...any) error {
	return fmt.Errorf("%w: %s.%s %s", ErrInvalidRow, table, column, fmt.Sprintf(format, args...))
}
