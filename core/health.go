package core

import (
	"context"
	"database/sql"
	"time"
)

// MonitorDBHealth pings the database every period until ctx is done,
// recording the result under the "db" key of the health report.
func (a *API) MonitorDBHealth(ctx context.Context, db *sql.DB, period time.Duration) {
	setHealth := a.healthSetter("db")
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			setHealth(db.PingContext(ctx))
		}
	}
}

// healthSetter returns a function that, when called,
// sets the named health status in the map returned by "/health".
// The returned function is safe to call concurrently with ServeHTTP.
func (a *API) healthSetter(name string) func(error) {
	return func(err error) { a.setHealth(name, err) }
}

func (a *API) setHealth(name string, err error) {
	a.healthMu.Lock()
	defer a.healthMu.Unlock()
	if a.healthErrors == nil {
		a.healthErrors = make(map[string]string)
	}
	if err == nil {
		delete(a.healthErrors, name)
	} else {
		a.healthErrors[name] = err.Error() // convert to immutable string
	}
}

func (a *API) health() (x struct {
	Errors map[string]string `json:"errors"`
}) {
	x.Errors = make(map[string]string)

	a.healthMu.Lock()
	defer a.healthMu.Unlock()
	for name, s := range a.healthErrors {
		x.Errors[name] = s // copy for safe serialization
	}
	return
}
