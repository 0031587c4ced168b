package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"senti_ttt/internal/adapters"
	"senti_ttt/internal/bootstrap"
	gameDelivery "senti_ttt/internal/delivery/game"
	"senti_ttt/internal/domain/board"
	ownMiddleware "senti_ttt/internal/middleware"
	"senti_ttt/internal/repository"
	"senti_ttt/internal/usecase/advisor"
	"senti_ttt/internal/usecase/decision"
	"senti_ttt/internal/usecase/fallback"
	gameuc "senti_ttt/internal/usecase/game"
)

type mainDeliveryHandler struct {
	game *gameDelivery.GameHandler
}

// Both adapters are optional: without Redis the move cache lives in memory,
// without Mongo the decision journal is off.
type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Errorw("Failed to setup configuration", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.Close(context.Background())

	suggester, closeSuggester := initSuggester(cfg, logger)
	defer closeSuggester()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(cfg, logger, databaseAdapters, suggester)
	handlers.Router(r, cfg.IsLocalCors)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
		}
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Failed to start server", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h.game.Register(r)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	result := &dataBaseAdapters{}

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Warnw("Redis unavailable, using in-memory move cache", "error", err)
		} else {
			result.redisAdapter = redisAdapter
		}
	}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Warnw("MongoDB unavailable, decision journal disabled", "error", err)
		} else {
			result.mongoAdapter = mongoAdapter
		}
	}

	return result
}

func (d *dataBaseAdapters) Close(ctx context.Context) {
	if d.redisAdapter != nil {
		_ = d.redisAdapter.Close(ctx)
	}
	if d.mongoAdapter != nil {
		_ = d.mongoAdapter.Close(ctx)
	}
}

// initSuggester returns a nil suggester when suggestions are off or the
// advisor cannot be set up; the engine then decides on its own.
func initSuggester(cfg *bootstrap.Config, log *zap.SugaredLogger) (decision.Suggester, func()) {
	noop := func() {}

	switch cfg.SuggestionSource {
	case bootstrap.SuggestionLLM:
		if cfg.LlmApiKey == "" {
			log.Warn("SUGGESTION_SOURCE=llm but LLM_API_KEY is empty, suggestions disabled")
			return nil, noop
		}
		llmRepo := repository.NewLlmRepository(adapters.NewLlmAdapter(cfg), log)
		return advisor.NewLlmSuggester(llmRepo, log), noop
	case bootstrap.SuggestionGRPC:
		conn, err := grpc.NewClient(cfg.AdvisorAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Warnw("Failed to create advisor client, suggestions disabled", "addr", cfg.AdvisorAddr, "error", err)
			return nil, noop
		}
		return repository.NewAdvisorGrpcRepository(conn, log), func() { _ = conn.Close() }
	default:
		return nil, noop
	}
}

func initializeDeliveryHandlers(
	cfg *bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
	suggester decision.Suggester,
) *mainDeliveryHandler {
	var cache decision.MoveCache = repository.NewMemoryMoveCache()
	if databaseAdapters.redisAdapter != nil {
		cache = repository.NewRedisMoveCache(databaseAdapters.redisAdapter.GetClient(), cfg.CacheKeyPrefix, log)
	}

	policy := decision.PolicyPerfect
	if cfg.EnginePolicy == bootstrap.PolicyFast {
		policy = decision.PolicyFast
	}
	engine := decision.NewEngine(cache, suggester, decision.Options{
		Policy:            policy,
		SuggestionTimeout: cfg.SuggestionTimeout,
		Fallback:          fallback.NewTimeSeededPolicy(),
	}, log)

	var journal gameuc.DecisionStore
	if databaseAdapters.mongoAdapter != nil {
		journal = repository.NewDecisionRepository(databaseAdapters.mongoAdapter.Database, log)
	}

	// Validate already restricted AI_PLAYER to X or O.
	aiPlayer, _ := board.ParsePlayer(cfg.AiPlayer)
	moveUC := gameuc.NewMoveUseCase(engine, journal, aiPlayer, log)

	return &mainDeliveryHandler{
		game: gameDelivery.NewGameHandler(log, moveUC),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
