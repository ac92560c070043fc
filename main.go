package main

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"autoficate/adapters/postgres"
	"autoficate/app"
	"autoficate/internal/cache"
	"autoficate/internal/config"
	"autoficate/internal/errors"
	"autoficate/internal/media"
	"autoficate/internal/migration"
	"autoficate/internal/render"
	"autoficate/internal/session"
	"autoficate/ports"
	"autoficate/ui"
)

// initDatabase connects to PostgreSQL and applies the schema.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

// sweepSessions drops idle session rows once an hour.
func sweepSessions(sessions ports.SessionRepository, ttlDays int) {
	for {
		n, err := sessions.DeleteExpired(context.Background(), ttlDays)
		if err != nil {
			log.Printf("[Session] expiry sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("[Session] removed %d expired sessions", n)
		}
		time.Sleep(time.Hour)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	blobs, err := media.NewLocalStore(appConfig.Media.Root, appConfig.Media.PublicBase)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	renderer, err := render.NewImageRenderer(appConfig.Media.FontsDir)
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	sealer, err := session.NewSealer(appConfig.Security.SecretKey)
	if err != nil {
		log.Fatalf("Failed to initialize cookie sealer: %v", err)
	}

	users := postgres.NewUserRepository(db)
	sets := postgres.NewItemSetRepository(db)
	images := postgres.NewImageRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	inspectorCache := cache.NewInspector(appConfig.Cache.WindowLimit)

	exports := app.NewExportService(images, sets, blobs, renderer)
	accounts := app.NewAccountService(users, sets, exports)
	inspector := app.NewInspectorService(sets, inspectorCache)
	sessions := session.NewManager(sessionRepo, sealer)

	go sweepSessions(sessionRepo, appConfig.Session.TTLDays)

	server, err := ui.NewServer(ui.Config{
		Port:     appConfig.Server.Port,
		GinMode:  appConfig.Server.GinMode,
		MediaDir: blobs.BasePath(),
	}, accounts, inspector, exports, sessions)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Run(appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
