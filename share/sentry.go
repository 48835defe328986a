package share

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// InitSentry with an empty dsn leaves the client disabled.
func InitSentry(dsn string) error {
	err := sentry.Init(
		sentry.ClientOptions{
			Dsn:           dsn,
			HTTPTransport: new(http.Transport),
		},
	)
	return errors.WithStack(err)
}
