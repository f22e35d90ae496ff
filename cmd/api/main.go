package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"

	"dealdesk.org/internal/audit"
	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/httpapi"
	"dealdesk.org/internal/market"
	"dealdesk.org/internal/obs"
	pgstore "dealdesk.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	var db *sql.DB
	if dsn := os.Getenv("DEALDESK_PG_DSN"); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// With no DSN everything runs in-process; useful for local development,
	// never for production.
	var (
		profiles   auth.ProfileStore
		scopeStore auth.ScopeStore
		marketSvc  market.Service
		trailStore audit.Store
	)
	if db != nil {
		pg := auth.NewPGStore(db)
		profiles = pg
		scopeStore = pg
		marketSvc = pgstore.New(db)
		trailStore = audit.NewPGStore(db)
	} else {
		log.Println("DEALDESK_PG_DSN not set, using in-memory stores")
		mem := market.NewInMemory()
		profiles = auth.NewInMemoryProfiles()
		scopeStore = mem
		marketSvc = mem
		trailStore = audit.NewInMemory()
	}

	resolver, err := auth.NewResolver(profiles)
	if err != nil {
		log.Fatalf("resolver: %v", err)
	}
	scope, err := auth.NewScopeValidator(scopeStore)
	if err != nil {
		log.Fatalf("scope validator: %v", err)
	}
	trail, err := audit.NewRecorder(trailStore)
	if err != nil {
		log.Fatalf("audit recorder: %v", err)
	}

	api := httpapi.New(httpapi.Config{
		Version:  version,
		Ready:    httpapi.ReadyProbe{DB: db},
		Resolver: resolver,
		Profiles: profiles,
		Scope:    scope,
		Market:   marketSvc,
		Trail:    trail,
	})

	addr := os.Getenv("DEALDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting dealdesk-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
