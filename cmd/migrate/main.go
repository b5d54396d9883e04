package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/unitedhq/partner-api/internal/migrate"
)

func main() {
	log.SetFlags(0)
	var (
		dsn       = flag.String("dsn", os.Getenv("PARTNERAPI_PG_DSN"), "PostgreSQL DSN")
		migDir    = flag.String("migrations", "migrations/sql", "directory with .up.sql/.down.sql files")
		seedsDir  = flag.String("seeds", "migrations/seeds", "directory with seed .sql files")
		tableName = flag.String("table", "", "override the history table name")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide -dsn or PARTNERAPI_PG_DSN")
	}
	if flag.NArg() == 0 {
		log.Fatal("usage: migrate [up|down|seed|status]")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var opts []migrate.Option
	if *tableName != "" {
		opts = append(opts, migrate.WithHistoryTable(*tableName))
	}
	runner := migrate.NewRunner(db, os.DirFS(*migDir), os.DirFS(*seedsDir), opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = runner.Apply(ctx)
	case "down":
		err = runner.Rollback(ctx)
	case "seed":
		err = runner.Seed(ctx)
	case "status":
		var applied []string
		applied, err = runner.Applied(ctx)
		if err == nil {
			if len(applied) == 0 {
				fmt.Println("no migrations applied")
			}
			for _, name := range applied {
				fmt.Println(name)
			}
		}
	default:
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
