// Command filterd serves the transaction filter API.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"expvar"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/kr/secureheader"
	_ "github.com/lib/pq"

	"github.com/onyx-protocol/txfilter/core"
	"github.com/onyx-protocol/txfilter/env"
	"github.com/onyx-protocol/txfilter/errors"
	"github.com/onyx-protocol/txfilter/feed"
	"github.com/onyx-protocol/txfilter/log"
	"github.com/onyx-protocol/txfilter/metrics"
	"github.com/onyx-protocol/txfilter/net/http/gzip"
	"github.com/onyx-protocol/txfilter/net/http/reqid"
)

const (
	httpReadTimeout  = 30 * time.Second
	httpWriteTimeout = 2 * time.Minute
	dbPingPeriod     = 15 * time.Second
)

var (
	// config vars
	tlsCrt     = env.String("TLSCRT", "")
	tlsKey     = env.String("TLSKEY", "")
	listenAddr = env.String("LISTEN", ":8080")
	dbURL      = env.String("DATABASE_URL", "postgres:///txfilter?sslmode=disable")
	maxDBConns = env.Int("MAXDBCONNS", 10) // set to 100 in prod

	// build vars; initialized by the linker
	buildTag    = "dev"
	buildCommit = "?"
	buildDate   = "?"
)

func init() {
	expvar.NewString("buildtag").Set(buildTag)
	expvar.NewString("builddate").Set(buildDate)
	expvar.NewString("buildcommit").Set(buildCommit)
}

func main() {
	ctx := context.Background()
	env.Parse()

	log.SetPrefix("app", "filterd", "buildtag", buildTag)

	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		log.Fatalkv(ctx, log.KeyError, errors.Wrap(err, "opening database"))
	}
	db.SetMaxOpenConns(*maxDBConns)
	db.SetMaxIdleConns(*maxDBConns)

	api := &core.API{
		Feeds: &feed.Tracker{DB: db},
		DB:    db,
	}
	go api.MonitorDBHealth(ctx, db, dbPingPeriod)

	var h http.Handler = api.Handler()
	h = metrics.Handler{Next: h}
	h = gzip.Handler{Next: h}
	h = reqid.Handler(h)
	http.Handle("/", h)
	secureheader.DefaultConfig.PermitClearLoopback = true

	server := &http.Server{
		Addr:         *listenAddr,
		Handler:      secureheader.DefaultConfig,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
	}

	log.Printkv(ctx, "message", "listening", "addr", *listenAddr)
	if *tlsCrt != "" {
		cert, err := tls.X509KeyPair([]byte(*tlsCrt), []byte(*tlsKey))
		if err != nil {
			log.Fatalkv(ctx, log.KeyError, errors.Wrap(err, "parsing tls X509 key pair"))
		}

		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
		err = server.ListenAndServeTLS("", "") // uses TLS certs from above
		if err != nil {
			log.Fatalkv(ctx, log.KeyError, errors.Wrap(err, "ListenAndServeTLS"))
		}
	} else {
		err = server.ListenAndServe()
		if err != nil {
			log.Fatalkv(ctx, log.KeyError, errors.Wrap(err, "ListenAndServe"))
		}
	}
}
