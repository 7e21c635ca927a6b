package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cybercase/internal/bank"
	"cybercase/internal/httpapi"
	"cybercase/internal/missiondb"
	"cybercase/internal/opentdb"
	"cybercase/internal/quizsessions"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", envOr("MISSION_DB", "mission.db"), "sqlite database path")
	bankPath := flag.String("bank", "", "question bank JSON file (embedded bank when empty)")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "redis address for quiz sessions (in-memory when empty)")
	redisPassword := flag.String("redis-password", os.Getenv("REDIS_PASSWORD"), "redis password")
	triviaCount := flag.Int("opentdb", 0, "number of OpenTDB computer questions to add to the bank at startup")
	triviaURL := flag.String("opentdb-url", envOr("OPENTDB_URL", opentdb.DefaultEndpoint), "OpenTDB API endpoint")
	triviaCategory := flag.Int("opentdb-category", opentdb.CategoryComputers, "OpenTDB category id (0 for any)")
	triviaDifficulty := flag.String("opentdb-difficulty", "", "OpenTDB difficulty: easy, medium or hard (any when empty)")
	owner := flag.String("owner", httpapi.DefaultOwnerName, "name of the phone's owner")
	questionCount := flag.Int("questions", httpapi.DefaultQuestionCount, "questions per quiz attempt")
	timer := flag.Int("timer", httpapi.DefaultTimer, "quiz time limit in seconds")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	questions, err := loadBank(*bankPath)
	if err != nil {
		log.Fatalf("load question bank: %v", err)
	}
	if *triviaCount > 0 {
		seedTrivia(ctx, questions, *triviaCount,
			opentdb.WithEndpoint(*triviaURL),
			opentdb.WithCategory(*triviaCategory),
			opentdb.WithDifficulty(*triviaDifficulty),
		)
	}
	log.Printf("question bank ready with %d questions", questions.Len())

	store, err := missiondb.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	var sessions quizsessions.Store = quizsessions.NewMemoryStore(quizsessions.DefaultTTL)
	if *redisAddr != "" {
		redisStore, err := quizsessions.NewRedisStore(ctx, *redisAddr, *redisPassword, 0, quizsessions.DefaultTTL)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
		log.Printf("quiz sessions stored in redis at %s", *redisAddr)
	}

	server := &http.Server{
		Addr: *addr,
		Handler: httpapi.NewRouter(httpapi.Config{
			Bank:          questions,
			Store:         store,
			Sessions:      sessions,
			OwnerName:     *owner,
			QuestionCount: *questionCount,
			Timer:         *timer,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("mission-service listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func loadBank(path string) (*bank.Bank, error) {
	if path == "" {
		return bank.Default()
	}
	return bank.LoadFile(path)
}

func seedTrivia(ctx context.Context, questions *bank.Bank, count int, opts ...opentdb.Option) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := opentdb.NewClient(&http.Client{Timeout: 10 * time.Second}, opts...)
	raw, err := client.FetchQuestions(fetchCtx, count)
	if err != nil {
		if errors.Is(err, opentdb.ErrRateLimited) {
			log.Printf("opentdb seeding skipped, try again in a few seconds: %v", err)
			return
		}
		log.Printf("opentdb seeding skipped: %v", err)
		return
	}
	added := bank.FromTrivia(raw, rand.New(rand.NewSource(time.Now().UnixNano())))
	questions.Add(added...)
	log.Printf("added %d OpenTDB questions", len(added))
}
