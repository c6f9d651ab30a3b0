package annotate

import (
	"fmt"

	"github.com/sirkon/deraw/internal/irl"
)

// UnsupportedConstructError aborts a session: the pipeline met an
// instruction kind it declares it cannot handle yet. This is a coverage
// gap of the pipeline, not a data problem, so it is raised as a panic
// and recovered at the session boundary.
type UnsupportedConstructError struct {
	Construct string
	Loc       irl.Location
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("cannot handle construct %s at location %s", e.Construct, e.Loc)
}

// unsupported raises the fatal coverage-gap failure.
func unsupported(construct string, loc irl.Location) {
	panic(&UnsupportedConstructError{Construct: construct, Loc: loc})
}
