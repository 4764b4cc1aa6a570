package pgext

import (
	"context"
	"time"

	"github.com/go-pg/entmap"
	"github.com/go-pg/entmap/internal"
)

// DebugHook is a query hook that logs the command and the error if there are any.
// It can be installed with:
//
//   db.AddQueryHook(pgext.DebugHook{})
type DebugHook struct {
	// Verbose logs successful commands too. By default only failed ones are logged.
	Verbose bool
	// EmptyLine adds an empty line after every logged command.
	EmptyLine bool
	// Logger defaults to the package logger, see entmap.SetLogger.
	Logger internal.Logging
}

var _ entmap.QueryHook = (*DebugHook)(nil)

func (DebugHook) BeforeQuery(ctx context.Context, _ *entmap.QueryEvent) (context.Context, error) {
	return ctx, nil
}

func (h DebugHook) AfterQuery(ctx context.Context, evt *entmap.QueryEvent) error {
	if evt.Err == nil && !h.Verbose {
		return nil
	}

	logger := h.Logger
	if logger == nil {
		logger = internal.Logger
	}

	q := evt.FormattedQuery()
	dur := time.Since(evt.StartTime)

	if evt.Err != nil {
		logger.Printf(ctx, "Error %s executing %s on %s (%s):\n%s\n",
			evt.Err, evt.Command.Operation(), evt.Command.Table, dur, q)
	} else {
		logger.Printf(ctx, "%s on %s (%s):\n%s\n",
			evt.Command.Operation(), evt.Command.Table, dur, q)
	}

	if h.EmptyLine {
		logger.Printf(ctx, "\n")
	}
	return nil
}
