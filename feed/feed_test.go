package feed

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"testing"

	"github.com/lib/pq"

	"github.com/onyx-protocol/txfilter/database/pg"
	"github.com/onyx-protocol/txfilter/errors"
	"github.com/onyx-protocol/txfilter/filter"
	"github.com/onyx-protocol/txfilter/testutil"
)

const validFilter = `{"Root":{"Operand":{"Key":"to","Value":"eqUNVjC0z1OXOd8sXaybExZ8kI0="},"Operator":null,"Nodes":null}}`

func TestCreate(t *testing.T) {
	db := newFakeDB(t,
		reply{rows: rowSet{cols: []string{"id"}, rows: [][]driver.Value{{"feed-1"}}}},
	)
	tracker := &Tracker{DB: db}

	feed, err := tracker.Create(context.Background(), "my-feed", validFilter, "0", nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if feed.ID != "feed-1" {
		t.Errorf("ID = %q want feed-1", feed.ID)
	}
	if feed.Alias == nil || *feed.Alias != "my-feed" {
		t.Errorf("Alias = %v want my-feed", feed.Alias)
	}
	if feed.Filter != validFilter {
		t.Errorf("Filter = %q want the submitted document", feed.Filter)
	}

	q := db.queries()[0]
	if !strings.Contains(q, "INSERT INTO feeds") {
		t.Errorf("query = %q want insert into feeds", q)
	}
	if !strings.Contains(q, "ON CONFLICT (client_token) DO NOTHING") {
		t.Errorf("query = %q want client token conflict clause", q)
	}
}

func TestCreateInvalidFilter(t *testing.T) {
	db := newFakeDB(t)
	tracker := &Tracker{DB: db}

	_, err := tracker.Create(context.Background(), "", `{"Root":{"Operand":null,"Operator":9,"Nodes":null}}`, "0", nil)
	if errors.Root(err) != filter.ErrBadFilter {
		t.Errorf("err = %v want ErrBadFilter", err)
	}
	if n := len(db.queries()); n != 0 {
		t.Errorf("%d queries issued for invalid filter, want 0", n)
	}
}

func TestCreateDuplicateAlias(t *testing.T) {
	db := newFakeDB(t,
		reply{err: &pq.Error{Code: "23505"}},
	)
	tracker := &Tracker{DB: db}

	_, err := tracker.Create(context.Background(), "taken", validFilter, "0", nil)
	if errors.Root(err) != ErrDuplicateAlias {
		t.Errorf("err = %v want ErrDuplicateAlias", err)
	}
}

func TestCreateIdempotent(t *testing.T) {
	token := "tok-1"
	db := newFakeDB(t,
		// Conflicting client token: the insert returns no rows.
		reply{rows: rowSet{cols: []string{"id"}}},
		reply{rows: rowSet{
			cols: []string{"id", "alias", "filter", "after"},
			rows: [][]driver.Value{{"feed-1", "my-feed", validFilter, "42"}},
		}},
	)
	tracker := &Tracker{DB: db}

	feed, err := tracker.Create(context.Background(), "my-feed", validFilter, "0", &token)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if feed.ID != "feed-1" || feed.After != "42" {
		t.Errorf("feed = %+v want the existing feed", feed)
	}
	if q := db.queries()[1]; !strings.Contains(q, "client_token=$1") {
		t.Errorf("second query = %q want client token lookup", q)
	}
}

func TestFind(t *testing.T) {
	cases := []struct {
		id, alias string
		wantWhere string
	}{
		{id: "feed-1", wantWhere: "id=$1"},
		{alias: "my-feed", wantWhere: "alias=$1"},
	}

	for _, tc := range cases {
		db := newFakeDB(t,
			reply{rows: rowSet{
				cols: []string{"id", "alias", "filter", "after"},
				rows: [][]driver.Value{{"feed-1", "my-feed", validFilter, "7"}},
			}},
		)
		tracker := &Tracker{DB: db}

		feed, err := tracker.Find(context.Background(), tc.id, tc.alias)
		if err != nil {
			testutil.FatalErr(t, err)
		}
		if feed.ID != "feed-1" || feed.After != "7" {
			t.Errorf("feed = %+v", feed)
		}
		if q := db.queries()[0]; !strings.Contains(q, tc.wantWhere) {
			t.Errorf("query = %q want where clause %q", q, tc.wantWhere)
		}
	}
}

func TestFindNotFound(t *testing.T) {
	db := newFakeDB(t,
		reply{rows: rowSet{cols: []string{"id", "alias", "filter", "after"}}},
	)
	tracker := &Tracker{DB: db}

	_, err := tracker.Find(context.Background(), "missing", "")
	if errors.Root(err) != pg.ErrUserInputNotFound {
		t.Errorf("err = %v want ErrUserInputNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	db := newFakeDB(t,
		reply{result: driver.RowsAffected(1)},
	)
	tracker := &Tracker{DB: db}

	if err := tracker.Delete(context.Background(), "", "my-feed"); err != nil {
		testutil.FatalErr(t, err)
	}
	if q := db.queries()[0]; !strings.Contains(q, "alias=$1") {
		t.Errorf("query = %q want alias where clause", q)
	}
}

func TestDeleteNotFound(t *testing.T) {
	db := newFakeDB(t,
		reply{result: driver.RowsAffected(0)},
	)
	tracker := &Tracker{DB: db}

	err := tracker.Delete(context.Background(), "missing", "")
	if errors.Root(err) != pg.ErrUserInputNotFound {
		t.Errorf("err = %v want ErrUserInputNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	db := newFakeDB(t,
		reply{result: driver.RowsAffected(1)},
	)
	tracker := &Tracker{DB: db}

	feed, err := tracker.Update(context.Background(), "feed-1", "", "43", "42")
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if feed.After != "43" {
		t.Errorf("After = %q want 43", feed.After)
	}
	if q := db.queries()[0]; !strings.Contains(q, "AND after=$3") {
		t.Errorf("query = %q want compare-and-swap clause", q)
	}
}

func TestUpdateStaleCursor(t *testing.T) {
	db := newFakeDB(t,
		reply{result: driver.RowsAffected(0)},
	)
	tracker := &Tracker{DB: db}

	_, err := tracker.Update(context.Background(), "feed-1", "", "43", "41")
	if errors.Root(err) != pg.ErrUserInputNotFound {
		t.Errorf("err = %v want ErrUserInputNotFound", err)
	}
}

// fakeDB scripts replies at the database/sql/driver level so Tracker
// is exercised through the real database/sql scanning machinery.
type fakeDB struct {
	*sql.DB
	conn *fakeConn
}

type reply struct {
	rows   rowSet
	result driver.Result
	err    error
}

type rowSet struct {
	cols []string
	rows [][]driver.Value
}

func newFakeDB(t *testing.T, replies ...reply) *fakeDB {
	conn := &fakeConn{t: t, replies: replies}
	db := sql.OpenDB(connector{conn})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return &fakeDB{DB: db, conn: conn}
}

func (db *fakeDB) queries() []string { return db.conn.issued }

type connector struct{ conn *fakeConn }

func (c connector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c connector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use sql.OpenDB")
}

type fakeConn struct {
	t       *testing.T
	replies []reply
	issued  []string
}

func (c *fakeConn) next(query string) reply {
	c.issued = append(c.issued, query)
	if len(c.replies) == 0 {
		c.t.Fatalf("unexpected query: %s", query)
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r
}

func (c *fakeConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	r := c.next(query)
	if r.err != nil {
		return nil, r.err
	}
	return &fakeRows{set: r.rows}, nil
}

func (c *fakeConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	r := c.next(query)
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

type fakeRows struct {
	set rowSet
	pos int
}

func (r *fakeRows) Columns() []string { return r.set.cols }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.set.rows) {
		return io.EOF
	}
	copy(dest, r.set.rows[r.pos])
	r.pos++
	return nil
}
