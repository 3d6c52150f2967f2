package solver

import (
	"context"

	"gsymbex/internal/constraint"
)

// Backend is an incremental decision procedure with scoped assertions.
// Assert fails with an error matching core.ErrCannotModel for constructs
// the backend cannot represent.
type Backend interface {
	Push() error
	Pop() error
	Assert(e constraint.Expression) error
	Check(ctx context.Context) (Status, error)
	// Model returns the values of the asserted variables after a Sat check.
	Model() (map[string]*constraint.Constant, error)
	Close() error
}
