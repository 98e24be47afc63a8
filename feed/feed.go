// Package feed implements the registry of saved transaction filters.
// Each feed pairs a filter document with a cursor recording how far
// its consumer has read.
package feed

import (
	"bytes"
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/onyx-protocol/txfilter/database/pg"
	"github.com/onyx-protocol/txfilter/errors"
	"github.com/onyx-protocol/txfilter/filter"
)

var ErrDuplicateAlias = errors.New("duplicate feed alias")

type Tracker struct {
	DB pg.DB
}

type Feed struct {
	ID     string  `json:"id,omitempty"`
	Alias  *string `json:"alias"`
	Filter string  `json:"filter,omitempty"`
	After  string  `json:"after,omitempty"`
}

// Create registers a new feed. The filter document is validated
// before anything touches the database. If clientToken is non-nil and
// a feed was already created with the same token, the existing feed
// is returned instead of inserting a duplicate.
func (t *Tracker) Create(ctx context.Context, alias, fil, after string, clientToken *string) (*Feed, error) {
	_, err := filter.Decode([]byte(fil))
	if err != nil {
		return nil, err
	}

	var ptrAlias *string
	if alias != "" {
		ptrAlias = &alias
	}

	feed := &Feed{
		ID:     uuid.New().String(),
		Alias:  ptrAlias,
		Filter: fil,
		After:  after,
	}
	return insertFeed(ctx, t.DB, feed, clientToken)
}

func insertFeed(ctx context.Context, db pg.DB, feed *Feed, clientToken *string) (*Feed, error) {
	const q = `
		INSERT INTO feeds (id, alias, filter, after, client_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_token) DO NOTHING
		RETURNING id
	`

	var alias sql.NullString
	if feed.Alias != nil {
		alias = sql.NullString{Valid: true, String: *feed.Alias}
	}

	err := db.QueryRowContext(
		ctx, q, feed.ID, alias, feed.Filter, feed.After,
		clientToken).Scan(&feed.ID)

	if pg.IsUniqueViolation(err) {
		return nil, errors.WithDetail(ErrDuplicateAlias, "a feed with the provided alias already exists")
	} else if err == sql.ErrNoRows && clientToken != nil {
		// There is already a feed with the provided client token.
		// Return the existing feed.
		feed, err = feedByClientToken(ctx, db, *clientToken)
		if err != nil {
			return nil, errors.Wrap(err, "retrieving existing feed")
		}
	} else if err != nil {
		return nil, err
	}

	return feed, nil
}

func feedByClientToken(ctx context.Context, db pg.DB, clientToken string) (*Feed, error) {
	const q = `
		SELECT id, alias, filter, after
		FROM feeds
		WHERE client_token=$1
	`

	var (
		feed  Feed
		alias sql.NullString
	)
	err := db.QueryRowContext(ctx, q, clientToken).Scan(&feed.ID, &alias, &feed.Filter, &feed.After)
	if err != nil {
		return nil, err
	}

	if alias.Valid {
		feed.Alias = &alias.String
	}

	return &feed, nil
}

// Find retrieves a feed by id, or by alias when id is empty.
func (t *Tracker) Find(ctx context.Context, id, alias string) (*Feed, error) {
	var q bytes.Buffer

	q.WriteString(`
		SELECT id, alias, filter, after
		FROM feeds
		WHERE
	`)

	if id != "" {
		q.WriteString(`id=$1`)
	} else {
		q.WriteString(`alias=$1`)
		id = alias
	}

	var (
		feed     Feed
		sqlAlias sql.NullString
	)

	err := t.DB.QueryRowContext(ctx, q.String(), id).Scan(&feed.ID, &sqlAlias, &feed.Filter, &feed.After)
	if err == sql.ErrNoRows {
		return nil, errors.WithDetailf(pg.ErrUserInputNotFound, "could not find feed with id/alias=%s", id)
	} else if err != nil {
		return nil, err
	}

	if sqlAlias.Valid {
		feed.Alias = &sqlAlias.String
	}

	return &feed, nil
}

// Delete removes a feed by id, or by alias when id is empty.
func (t *Tracker) Delete(ctx context.Context, id, alias string) error {
	var q bytes.Buffer

	q.WriteString(`DELETE FROM feeds WHERE `)

	if id != "" {
		q.WriteString(`id=$1`)
	} else {
		q.WriteString(`alias=$1`)
		id = alias
	}

	res, err := t.DB.ExecContext(ctx, q.String(), id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return errors.WithDetailf(pg.ErrUserInputNotFound, "could not find and delete feed with id/alias=%s", id)
	}

	return nil
}

// Update advances a feed's cursor from prev to after. The compare-
// and-swap on the previous cursor keeps concurrent consumers from
// silently rewinding each other.
func (t *Tracker) Update(ctx context.Context, id, alias, after, prev string) (*Feed, error) {
	var q bytes.Buffer

	q.WriteString(`UPDATE feeds SET after=$1 WHERE `)

	if id != "" {
		q.WriteString(`id=$2`)
	} else {
		q.WriteString(`alias=$2`)
		id = alias
	}

	q.WriteString(` AND after=$3`)

	res, err := t.DB.ExecContext(ctx, q.String(), after, id, prev)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		return nil, errors.WithDetailf(pg.ErrUserInputNotFound, "could not find feed with id/alias=%s and prev=%s", id, prev)
	}

	return &Feed{
		ID:    id,
		Alias: &alias,
		After: after,
	}, nil
}
