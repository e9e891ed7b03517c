package ruskel

import (
	"errors"

	"github.com/Alb-O/ruskel/internal/ir"
	"github.com/Alb-O/ruskel/internal/render"
	"github.com/Alb-O/ruskel/internal/target"
)

// ErrInvalidConfig marks user errors in flags, config, or target specs.
var ErrInvalidConfig = errors.New("invalid configuration")

// Exit codes distinguish failure classes for scripting. An empty result is
// a success, not an error.
const (
	ExitFailure           = 1
	ExitInvalidConfig     = 2
	ExitTargetNotFound    = 3
	ExitIRUnavailable     = 4
	ExitUnsupportedSchema = 5
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidConfig):
		return ExitInvalidConfig
	case errors.Is(err, target.ErrNotFound), errors.Is(err, render.ErrFilterNotMatched):
		return ExitTargetNotFound
	case errors.Is(err, target.ErrUnavailable):
		return ExitIRUnavailable
	case errors.Is(err, ir.ErrUnsupportedSchema):
		return ExitUnsupportedSchema
	default:
		return ExitFailure
	}
}
