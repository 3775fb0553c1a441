package profile

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when a region has no rows in any metric table.
var ErrNoData = errors.New("no data for region")

// AssemblyError reports an unexpected failure while composing one region's
// profile.
type AssemblyError struct {
	Region string
	Err    error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble profile for %q: %v", e.Region, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}
