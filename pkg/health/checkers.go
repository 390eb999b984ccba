package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// Pinger is the slice of a database pool the readiness probe needs.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabasePingCheck returns a readiness check that pings the marketplace
// database. The API cannot serve anything without Postgres, so a failing
// ping takes the pod out of rotation.
func DatabasePingCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping database")
		}
		return nil
	}
}

// GoroutineCountCheck returns a liveness check that fails once the process
// holds more than limit goroutines. Leaked request or publisher goroutines
// show up here long before the pod runs out of memory.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines, limit %d", n, limit)
		}
		return nil
	}
}
