// Package core implements the transaction filter service and its
// HTTP API.
package core

import (
	"net/http"
	"sync"

	"github.com/onyx-protocol/txfilter/database/pg"
	"github.com/onyx-protocol/txfilter/feed"
)

// API serves the filter service HTTP API. Populate the exported
// fields before the first call to Handler.
type API struct {
	Feeds *feed.Tracker
	DB    pg.DB

	once    sync.Once
	handler http.Handler

	healthMu     sync.Mutex
	healthErrors map[string]string
}

// Handler returns the API's http.Handler, constructing it on first
// use. All endpoints speak JSON; errors are formatted by
// errorFormatter.
func (a *API) Handler() http.Handler {
	a.once.Do(func() {
		a.handler = a.buildHandler()
	})
	return a.handler
}

func (a *API) buildHandler() http.Handler {
	m := http.NewServeMux()

	m.Handle("/compile-filter", jsonHandler(a.compileFilter))

	m.Handle("/create-filter", jsonHandler(a.createFeed))
	m.Handle("/get-filter", jsonHandler(a.getFeed))
	m.Handle("/update-filter", jsonHandler(a.updateFeed))
	m.Handle("/delete-filter", jsonHandler(a.deleteFeed))

	m.Handle("/health", jsonHandler(a.health))

	m.Handle("/", alwaysError(errNotFound))

	return m
}
