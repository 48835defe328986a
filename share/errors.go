package share

import (
	"context"

	"github.com/pkg/errors"
)

// IsContextClosedError reports cancellation, which is never worth a report.
func IsContextClosedError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
