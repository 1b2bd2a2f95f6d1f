// Package logger provides the service's configured zerolog logger.
package logger

import (
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

var setupOnce sync.Once

// New returns a JSON logger tagged with serviceName. Error events should use
// .Stack() so the pkg/errors stack trace lands in the output.
func New(serviceName string) zerolog.Logger {
	setupOnce.Do(configureStackMarshaling)
	return zerolog.New(os.Stdout).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// configureStackMarshaling teaches zerolog to render github.com/pkg/errors
// stack traces, attaching one to plain errors so .Stack() always has
// something to show.
func configureStackMarshaling() {
	type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}
}
