package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// Gateway runs units of work against the database. A unit either commits
// as a whole or leaves no trace.
type Gateway interface {
	// Do acquires a connection, begins a transaction and runs fn inside it.
	// The transaction commits when fn returns nil and rolls back otherwise.
	// The connection is released on every exit path, including panics.
	Do(ctx context.Context, fn func(*Tx) error) error
}

// UnavailableError reports that the database could not be reached or that
// a statement failed. Callers above the orchestrator treat it as a signal
// to degrade, never as a crash.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("persistence unavailable (%s): %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is, or wraps, an *UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Op: op, Err: err}
}

// Unreachable stands in for a store that could not be opened at startup,
// so the service can still run offline.
type Unreachable struct {
	Err error
}

func (u Unreachable) Do(context.Context, func(*Tx) error) error {
	return &UnavailableError{Op: "open", Err: u.Err}
}

// Do implements Gateway.
func (s *Store) Do(ctx context.Context, fn func(*Tx) error) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return unavailable("acquire", err)
	}
	defer conn.Close()

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}

	done := false
	defer func() {
		if !done {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&Tx{tx: sqlTx, b: entsql.Dialect(s.dialect)}); err != nil {
		return err
	}

	done = true
	if err := sqlTx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

// Tx is a single unit of work. It is only valid inside the function passed
// to Gateway.Do.
type Tx struct {
	tx *sql.Tx
	b  *entsql.DialectBuilder
}

// Fields maps column names to values for Upsert.
type Fields map[string]any

func (t *Tx) exec(ctx context.Context, op string, q entsql.Querier) error {
	query, args := q.Query()
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (t *Tx) query(ctx context.Context, op string, q entsql.Querier) (*sql.Rows, error) {
	query, args := q.Query()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	return rows, nil
}

// Upsert inserts a row or, when a row with the same key columns exists,
// overwrites its non-key columns with the new values. The statement is
// rendered for the store's dialect by ent's builder.
func (t *Tx) Upsert(ctx context.Context, table string, key, fields Fields) error {
	if len(key) == 0 {
		return fmt.Errorf("upsert %s: empty key", table)
	}
	keyCols := sortedKeys(key)
	fieldCols := sortedKeys(fields)

	cols := make([]string, 0, len(keyCols)+len(fieldCols))
	vals := make([]any, 0, len(keyCols)+len(fieldCols))
	for _, c := range keyCols {
		cols = append(cols, c)
		vals = append(vals, key[c])
	}
	for _, c := range fieldCols {
		cols = append(cols, c)
		vals = append(vals, fields[c])
	}

	ins := t.b.Insert(table).Columns(cols...).Values(vals...)
	if len(fieldCols) == 0 {
		ins.OnConflict(entsql.ConflictColumns(keyCols...), entsql.DoNothing())
	} else {
		ins.OnConflict(
			entsql.ConflictColumns(keyCols...),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range fieldCols {
					u.SetExcluded(c)
				}
			}),
		)
	}
	return t.exec(ctx, "upsert "+table, ins)
}

// InsertIfAbsent inserts a row unless one with the same key columns
// already exists, in which case the existing row is left untouched.
func (t *Tx) InsertIfAbsent(ctx context.Context, table string, key, fields Fields) error {
	if len(key) == 0 {
		return fmt.Errorf("insert %s: empty key", table)
	}
	keyCols := sortedKeys(key)
	cols := append([]string(nil), keyCols...)
	vals := make([]any, 0, len(key)+len(fields))
	for _, c := range keyCols {
		vals = append(vals, key[c])
	}
	for _, c := range sortedKeys(fields) {
		cols = append(cols, c)
		vals = append(vals, fields[c])
	}

	ins := t.b.Insert(table).
		Columns(cols...).
		Values(vals...).
		OnConflict(entsql.ConflictColumns(keyCols...), entsql.DoNothing())
	return t.exec(ctx, "insert "+table, ins)
}
