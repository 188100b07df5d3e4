// cmd/api/main.go
// Application entry point: wires configuration, storage, services,
// routes and background workers, then runs the HTTP server until a
// shutdown signal arrives.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spontanapp/spontan-backend/internal/activity"
	"github.com/spontanapp/spontan-backend/internal/auth"
	"github.com/spontanapp/spontan-backend/internal/common/database"
	"github.com/spontanapp/spontan-backend/internal/config"
	"github.com/spontanapp/spontan-backend/internal/karma"
	"github.com/spontanapp/spontan-backend/internal/lobby"
	"github.com/spontanapp/spontan-backend/internal/ping"
	"github.com/spontanapp/spontan-backend/internal/proximity"
	"github.com/spontanapp/spontan-backend/internal/realtime"
	"github.com/spontanapp/spontan-backend/internal/rhythm"
	"github.com/spontanapp/spontan-backend/internal/synchronicity"
)

var startTime = time.Now()

func main() {
	log.Println("🚀 Starting Spontan API Server...")

	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	}

	// 1. Load configuration
	log.Println("1️⃣  Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("   ✅ Configuration loaded (environment: %s)", cfg.Environment)

	// 2. Connect to PostgreSQL
	log.Println("2️⃣  Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("   ✅ PostgreSQL connected")

	// 3. Connect to Redis (optional, degrades to Postgres-only matching)
	log.Println("3️⃣  Connecting to Redis...")
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Printf("   ⚠️  Redis unavailable, proximity falls back to Postgres: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("   ✅ Redis connected")
	}

	// 4. Run migrations
	log.Println("4️⃣  Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("   ✅ Migrations complete")

	// Base context for background workers; cancelled on shutdown.
	appCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// 5. Initialize realtime hub
	log.Println("5️⃣  Initializing realtime hub...")
	hub := realtime.NewHub()
	go hub.Run()
	realtimeHandler := realtime.NewHandler(hub)
	log.Println("   ✅ Realtime hub running")

	// 6. Initialize activity tracking
	log.Println("6️⃣  Initializing activity tracking...")
	var geoIndex activity.GeoIndex
	var proximityGeo proximity.GeoIndex
	if redisClient != nil {
		rg := proximity.NewRedisGeo(redisClient, cfg.PresenceGeoKey)
		geoIndex = rg
		proximityGeo = rg
	}
	activityRepo := activity.NewPostgresRepository(db)
	activityService := activity.NewService(activityRepo, geoIndex, activity.Config{
		ObservationTTL:  cfg.ActivityTTL,
		MinConfidence:   cfg.MinConfidence,
		PatternCapCount: cfg.PatternCapCount,
	})
	activityHandler := activity.NewHandler(activityService)
	log.Println("   ✅ Activity tracking ready")

	// 7. Initialize proximity matching
	log.Println("7️⃣  Initializing proximity matching...")
	proximityRepo := proximity.NewPostgresRepository(db)
	matcher := proximity.NewMatcher(proximityRepo, proximityGeo)
	proximityHandler := proximity.NewHandler(matcher, cfg.BrowseRadiusMeters)
	log.Println("   ✅ Proximity matching ready")

	// 8. Initialize synchronicity detection
	log.Println("8️⃣  Initializing synchronicity detection...")
	syncRepo := synchronicity.NewPostgresRepository(db)
	syncService := synchronicity.NewService(syncRepo, activityService, matcher, hub, synchronicity.Config{
		ScanRadiusMeters: cfg.ScanRadiusMeters,
		TTL:              cfg.SyncTTL,
	})
	scanner := synchronicity.NewScanner(appCtx, syncService, cfg.ScanInterval)
	syncHandler := synchronicity.NewHandler(syncService, scanner)
	log.Println("   ✅ Synchronicity detection ready")

	// 9. Initialize auto-lobbies
	log.Println("9️⃣  Initializing auto-lobbies...")
	lobbyRepo := lobby.NewPostgresRepository(db)
	lobbyService := lobby.NewService(lobbyRepo, syncService, hub, lobby.Config{
		ScoreMin:       cfg.LobbyScoreMin,
		LeadTime:       cfg.LobbyLeadTime,
		AutoStartAfter: cfg.LobbyAutoStartTime,
		BrowseRadiusKm: cfg.BrowseRadiusMeters / 1000,
	})
	syncService.SetLobbyHook(lobbyService)
	lobbyHandler := lobby.NewHandler(lobbyService)
	log.Println("   ✅ Auto-lobbies ready")

	// 10. Initialize rhythm analysis
	log.Println("🔟 Initializing rhythm analysis...")
	rhythmRepo := rhythm.NewPostgresRepository(db)
	rhythmService := rhythm.NewService(rhythmRepo, activityRepo, rhythm.Config{
		ObservationDays: cfg.ObservationDays,
	})
	rhythmHandler := rhythm.NewHandler(rhythmService)
	log.Println("   ✅ Rhythm analysis ready")

	// 11. Initialize pings & matches
	log.Println("1️⃣1️⃣ Initializing pings & matches...")
	pingRepo := ping.NewPostgresRepository(db)
	pingService := ping.NewService(pingRepo, hub, ping.Config{
		PingTTL:     cfg.PingTTL,
		MatchWindow: cfg.MatchWindow,
	})
	pingHandler := ping.NewHandler(pingService)
	log.Println("   ✅ Pings & matches ready")

	// 12. Initialize karma ledger
	log.Println("1️⃣2️⃣ Initializing karma ledger...")
	karmaRepo := karma.NewPostgresRepository(db)
	karmaService := karma.NewService(karmaRepo, karma.Config{
		DefaultBalance: cfg.KarmaDefaultBalance,
	})
	karmaHandler := karma.NewHandler(karmaService)
	log.Println("   ✅ Karma ledger ready")

	// 13. Set up routes
	log.Println("1️⃣3️⃣ Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	authenticate := authMiddleware.Authenticate

	activity.RegisterRoutes(router, activityHandler, authenticate)
	proximity.RegisterRoutes(router, proximityHandler, authenticate)
	synchronicity.RegisterRoutes(router, syncHandler, authenticate)
	lobby.RegisterRoutes(router, lobbyHandler, authenticate)
	rhythm.RegisterRoutes(router, rhythmHandler, authenticate)
	ping.RegisterRoutes(router, pingHandler, authenticate)
	karma.RegisterRoutes(router, karmaHandler, authenticate)
	realtime.RegisterRoutes(router, realtimeHandler, authenticate)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)
	log.Println("   ✅ Routes registered")

	// 14. Start background workers
	log.Println("1️⃣4️⃣ Starting background workers...")
	scanner.StartSweeper(cfg.ScanInterval)
	lobbyScheduler := lobby.NewScheduler(lobbyService, cfg.LobbySweepInterval)
	lobbyScheduler.Start(appCtx)
	pingScheduler := ping.NewScheduler(pingService, cfg.PingSweepInterval)
	pingScheduler.Start(appCtx)
	go startObservationCleanup(appCtx, activityService, cfg.ObservationDays)
	log.Println("   ✅ Background workers started")

	// 15. Start HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✅ Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	stopWorkers()
	scanner.StopAll()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}

	log.Println("👋 Server stopped")
}

// startObservationCleanup prunes observations older than the rhythm
// analysis window once a day
func startObservationCleanup(ctx context.Context, service activity.Service, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := service.PruneObservations(jobCtx, cutoff); err != nil {
				log.Printf("Failed to prune activity observations: %v", err)
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

// healthCheck reports liveness and uptime
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","uptime":%q,"timestamp":%q}`,
		time.Since(startTime).String(), time.Now().UTC().Format(time.RFC3339))
}

// Middleware

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema on startup
func runMigrations(db *sqlx.DB) error {
	log.Println("   - Creating/updating tables...")

	migrations := []string{
		// Classified device samples; rows go stale via expires_at
		`CREATE TABLE IF NOT EXISTS user_activities (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			activity_type VARCHAR(30) NOT NULL,
			venue_type VARCHAR(50),
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			speed DOUBLE PRECISION NOT NULL DEFAULT 0,
			location_name VARCHAR(255),
			detected_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`,

		// Weekly habit counters keyed by day and time slot
		`CREATE TABLE IF NOT EXISTS activity_patterns (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			day_of_week SMALLINT NOT NULL,
			time_slot VARCHAR(20) NOT NULL,
			activity_type VARCHAR(30) NOT NULL,
			frequency DOUBLE PRECISION NOT NULL DEFAULT 0,
			occurrence_count INTEGER NOT NULL DEFAULT 1,
			last_occurred TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, day_of_week, time_slot, activity_type)
		)`,

		// Last known position per user, mirrored into the Redis geo index
		`CREATE TABLE IF NOT EXISTS user_presence (
			user_id UUID PRIMARY KEY,
			current_latitude DOUBLE PRECISION NOT NULL,
			current_longitude DOUBLE PRECISION NOT NULL,
			is_online BOOLEAN NOT NULL DEFAULT TRUE,
			last_seen TIMESTAMPTZ NOT NULL,
			location_updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS synchronicities (
			id UUID PRIMARY KEY,
			user_ids TEXT[] NOT NULL,
			activity_type VARCHAR(30) NOT NULL,
			location_name VARCHAR(255),
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			sync_score DOUBLE PRECISION NOT NULL,
			distance_meters DOUBLE PRECISION NOT NULL DEFAULT 0,
			lobby_created BOOLEAN NOT NULL DEFAULT FALSE,
			lobby_id UUID,
			dedup_key TEXT NOT NULL,
			open BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			notified_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS lobbies (
			id UUID PRIMARY KEY,
			host_id UUID NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			activity_type VARCHAR(30) NOT NULL,
			location_name VARCHAR(255) NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			max_participants INTEGER NOT NULL,
			min_participants INTEGER NOT NULL,
			current_participants INTEGER NOT NULL DEFAULT 0,
			scheduled_time TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'open',
			lobby_type VARCHAR(20) NOT NULL,
			is_auto_generated BOOLEAN NOT NULL DEFAULT FALSE,
			synchronicity_id UUID,
			auto_start_at TIMESTAMPTZ,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS lobby_participants (
			id UUID PRIMARY KEY,
			lobby_id UUID NOT NULL REFERENCES lobbies(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'joined',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'completed',
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (lobby_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS user_rhythms (
			user_id UUID PRIMARY KEY,
			wake_time VARCHAR(8),
			sleep_time VARCHAR(8),
			lunch_time VARCHAR(8),
			workout_pattern JSONB,
			commute_pattern JSONB,
			social_peaks INTEGER[],
			rhythm_type VARCHAR(30) NOT NULL,
			energy_peaks INTEGER[],
			coffee_spots TEXT[],
			favorite_venues TEXT[],
			weekend_routine JSONB,
			calculated_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS mirror_matches (
			user_a UUID NOT NULL,
			user_b UUID NOT NULL,
			overlap_score DOUBLE PRECISION NOT NULL,
			shared_routines TEXT[],
			last_updated TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_a, user_b)
		)`,

		`CREATE TABLE IF NOT EXISTS pings (
			id UUID PRIMARY KEY,
			from_user UUID NOT NULL,
			to_user UUID NOT NULL,
			activity VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY,
			user_a UUID NOT NULL,
			user_b UUID NOT NULL,
			activity VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id UUID PRIMARY KEY,
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			sender_id UUID NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS karma_transactions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			amount INTEGER NOT NULL,
			transaction_type VARCHAR(30) NOT NULL,
			related_user_id UUID,
			description TEXT NOT NULL DEFAULT '',
			multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Minimal profile row; karma_balance is a denormalized cache of
		// the transaction ledger
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			display_name VARCHAR(100),
			karma_balance INTEGER NOT NULL DEFAULT 10,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_user_activities_user_id ON user_activities(user_id, detected_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_user_activities_expires ON user_activities(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_user ON activity_patterns(user_id)`,
		// Only one open synchronicity per group+activity; closed rows keep history
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sync_dedup_open ON synchronicities(dedup_key) WHERE open`,
		`CREATE INDEX IF NOT EXISTS idx_sync_expires ON synchronicities(expires_at) WHERE open`,
		`CREATE INDEX IF NOT EXISTS idx_lobbies_status ON lobbies(status)`,
		`CREATE INDEX IF NOT EXISTS idx_pings_to_user ON pings(to_user, status)`,
		`CREATE INDEX IF NOT EXISTS idx_pings_expires ON pings(expires_at) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_messages_match ON chat_messages(match_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_karma_user ON karma_transactions(user_id, created_at DESC)`,

		// Ledger sum with a floor for users who have no transactions yet
		`CREATE OR REPLACE FUNCTION get_karma_balance(p_user_id UUID)
		RETURNS INTEGER AS $$
		DECLARE
			v_balance INTEGER;
		BEGIN
			SELECT COALESCE(SUM(amount), 0) INTO v_balance
			FROM karma_transactions
			WHERE user_id = p_user_id;
			RETURN v_balance;
		END;
		$$ LANGUAGE plpgsql STABLE`,

		// Rhythm compatibility lives in SQL so matching can run as a
		// set query without loading every profile into the app
		`CREATE OR REPLACE FUNCTION calculate_rhythm_compatibility(p_user1_id UUID, p_user2_id UUID)
		RETURNS DOUBLE PRECISION AS $$
		DECLARE
			r1 user_rhythms%ROWTYPE;
			r2 user_rhythms%ROWTYPE;
			v_score DOUBLE PRECISION := 0;
			v_shared_peaks INTEGER;
		BEGIN
			SELECT * INTO r1 FROM user_rhythms WHERE user_id = p_user1_id;
			SELECT * INTO r2 FROM user_rhythms WHERE user_id = p_user2_id;
			IF r1.user_id IS NULL OR r2.user_id IS NULL THEN
				RETURN 0;
			END IF;

			IF r1.rhythm_type = r2.rhythm_type THEN
				v_score := v_score + 0.4;
			END IF;

			SELECT COUNT(*) INTO v_shared_peaks
			FROM unnest(COALESCE(r1.social_peaks, '{}')) p
			WHERE p = ANY(COALESCE(r2.social_peaks, '{}'));
			v_score := v_score + LEAST(v_shared_peaks::DOUBLE PRECISION * 0.1, 0.3);

			v_score := v_score + LEAST((
				SELECT COUNT(*)::DOUBLE PRECISION * 0.15
				FROM unnest(COALESCE(r1.favorite_venues, '{}')) v
				WHERE v = ANY(COALESCE(r2.favorite_venues, '{}'))
			), 0.3);

			RETURN LEAST(v_score, 1.0);
		END;
		$$ LANGUAGE plpgsql STABLE`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
