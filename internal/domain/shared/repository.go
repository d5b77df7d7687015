package shared

import (
	"context"
)

// UnitOfWork runs a function inside one all-or-nothing persistence boundary.
// Every repository call made with the context passed to fn joins the same
// transaction; any error rolls back every write.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
