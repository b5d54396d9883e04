package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unitedhq/partner-api/internal/app"
	"github.com/unitedhq/partner-api/internal/auth"
	"github.com/unitedhq/partner-api/internal/httpapi"
	"github.com/unitedhq/partner-api/internal/identity"
	"github.com/unitedhq/partner-api/internal/ledger"
	"github.com/unitedhq/partner-api/internal/obs"
	"github.com/unitedhq/partner-api/internal/store/memory"
	"github.com/unitedhq/partner-api/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "none"
)

type recordStore interface {
	identity.Store
	ledger.Store
	auth.Store
}

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		store recordStore
		probe httpapi.ReadyProbe
	)
	if cfg.PGDSN != "" {
		pgStore, err := pg.Open(cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		if cfg.IsProduction() {
			log.Fatal("PARTNERAPI_PG_DSN is required in production")
		}
		mem := memory.New()
		seedDemo(mem)
		store = mem
		log.Print("no DSN configured, serving demo data from memory")
	}

	authSvc, err := auth.NewService(store, cfg.AuthSecret, auth.WithSessionTTL(cfg.SessionTTL))
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	api := httpapi.New(probe, version, authSvc, identity.NewResolver(store), ledger.NewEngine(store))
	api.SetRateLimit(cfg.RateBurst, cfg.RatePerSec)
	api.SetMaxBodyBytes(cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	log.Printf("starting partner-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Print("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Print("stopped")
}

// seedDemo loads a small fixture so local runs have a working login:
// demo@example.com / demo-password.
func seedDemo(mem *memory.Store) {
	hash, err := auth.HashPassword("demo-password")
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	mem.AddPrincipal(identity.Principal{
		ID:      "demo-user",
		Email:   "demo@example.com",
		Enabled: true,
	}, hash)
	mem.AddEmployee(identity.Employee{
		ID:          "demo-emp",
		UserID:      "demo-user",
		FirstName:   "Demo",
		LastName:    "Partner",
		FullName:    "Demo Partner",
		Designation: "Sales Executive",
		Department:  "Sales",
	})
	mem.AddPartner(identity.SalesPartner{
		ID:           "demo-sp",
		EmployeeID:   "demo-emp",
		PartnerType:  "Reseller",
		EarnedPoints: 340,
	})
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for i, points := range []int64{120, -40, 260, -80, 80} {
		mem.AddEntry("demo-sp", ledger.Entry{
			ID:           "demo-led-" + string(rune('a'+i)),
			Date:         now.AddDate(0, 0, -i),
			Points:       points,
			SalesInvoice: "SINV-DEMO-" + string(rune('a'+i)),
		})
	}
}
