// Package migrate applies versioned SQL files from disk. A single history
// table records what ran, with migrations and seeds tracked under separate
// kinds so seeds stay idempotent across redeploys.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const (
	defaultHistoryTable = "schema_history"

	kindMigration = "migration"
	kindSeed      = "seed"

	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Runner executes SQL migration and seed files against a database.
type Runner struct {
	db         *sql.DB
	migrations fs.FS
	seeds      fs.FS
	table      string
}

// Option configures Runner.
type Option func(*Runner)

// WithHistoryTable overrides the bookkeeping table name.
func WithHistoryTable(name string) Option {
	return func(r *Runner) {
		if strings.TrimSpace(name) != "" {
			r.table = name
		}
	}
}

// NewRunner constructs a Runner over the given migration and seed
// filesystems. Either may be nil.
func NewRunner(db *sql.DB, migrations, seeds fs.FS, opts ...Option) *Runner {
	r := &Runner{
		db:         db,
		migrations: migrations,
		seeds:      seeds,
		table:      defaultHistoryTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply runs every pending .up.sql file in lexical order.
func (r *Runner) Apply(ctx context.Context) error {
	return r.applyPending(ctx, r.migrations, upSuffix, kindMigration)
}

// Seed runs every pending seed file once. Re-running Seed after new files
// appear applies only the new ones.
func (r *Runner) Seed(ctx context.Context) error {
	return r.applyPending(ctx, r.seeds, ".sql", kindSeed)
}

// Rollback reverts the most recently applied migration using its .down.sql
// counterpart.
func (r *Runner) Rollback(ctx context.Context) error {
	if err := r.ensureHistory(ctx); err != nil {
		return err
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return errors.New("nothing to roll back")
	}
	last := applied[len(applied)-1]
	downName := strings.TrimSuffix(last, upSuffix) + downSuffix
	script, err := fs.ReadFile(r.migrations, downName)
	if err != nil {
		return fmt.Errorf("read %s: %w", downName, err)
	}
	if err := r.runScript(ctx, string(script)); err != nil {
		return fmt.Errorf("roll back %s: %w", last, err)
	}
	_, err = r.db.ExecContext(ctx,
		fmt.Sprintf(`delete from %s where name = $1 and kind = $2`, r.table), last, kindMigration)
	return err
}

// Applied returns the migration names in the order they ran.
func (r *Runner) Applied(ctx context.Context) ([]string, error) {
	if err := r.ensureHistory(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`select name from %s where kind = $1 order by applied_at, name`, r.table), kindMigration)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Runner) applyPending(ctx context.Context, fsys fs.FS, suffix, kind string) error {
	if fsys == nil {
		return nil
	}
	if err := r.ensureHistory(ctx); err != nil {
		return err
	}
	done, err := r.recorded(ctx, kind)
	if err != nil {
		return err
	}
	names, err := sqlFiles(fsys, suffix)
	if err != nil {
		return err
	}
	for _, name := range names {
		if done[name] {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := r.runScript(ctx, string(script)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`insert into %s(name, kind, applied_at) values ($1, $2, $3)`, r.table),
			name, kind, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

// runScript executes a SQL file inside one transaction, statement by
// statement: the driver's extended protocol rejects multi-statement execs.
func (r *Runner) runScript(ctx context.Context, script string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Runner) ensureHistory(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		create table if not exists %s (
			name       text not null,
			kind       text not null,
			applied_at timestamptz not null default now(),
			primary key (name, kind)
		)`, r.table))
	return err
}

func (r *Runner) recorded(ctx context.Context, kind string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`select name from %s where kind = $1`, r.table), kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}

func sqlFiles(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		if suffix == ".sql" && strings.HasSuffix(e.Name(), downSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// splitStatements breaks a script on semicolons outside quoted strings and
// strips line comments so trailing "-- notes" do not produce empty execs.
func splitStatements(script string) []string {
	var (
		stmts    []string
		b        strings.Builder
		inQuote  bool
		lineRest = script
	)
	for _, line := range strings.Split(lineRest, "\n") {
		if !inQuote {
			if i := strings.Index(line, "--"); i >= 0 && strings.Count(line[:i], "'")%2 == 0 {
				line = line[:i]
			}
		}
		for _, r := range line {
			switch r {
			case '\'':
				inQuote = !inQuote
				b.WriteRune(r)
			case ';':
				if inQuote {
					b.WriteRune(r)
					continue
				}
				if s := strings.TrimSpace(b.String()); s != "" {
					stmts = append(stmts, s)
				}
				b.Reset()
			default:
				b.WriteRune(r)
			}
		}
		b.WriteRune('\n')
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}
