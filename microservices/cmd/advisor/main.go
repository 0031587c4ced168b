package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"senti_ttt/internal/adapters"
	"senti_ttt/internal/bootstrap"
	"senti_ttt/internal/repository"
	"senti_ttt/internal/usecase/advisor"
	"senti_ttt/internal/usecase/fallback"
	advisorRPC "senti_ttt/microservices/proto"
	"senti_ttt/microservices/usecase"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Errorw("Failed to setup configuration", "error", err)
		return
	}

	lis, err := net.Listen("tcp", ":"+cfg.AdvisorPort)
	if err != nil {
		logger.Fatalw("cant listen port", "port", cfg.AdvisorPort, "error", err)
	}

	server := grpc.NewServer()
	advisorRPC.RegisterAdvisorServiceServer(server, usecase.NewAdvisorUseCase(newSuggestStore(cfg, logger), logger))

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		logger.Info("Received shutdown signal")
		server.GracefulStop()
	}()

	logger.Infof("advisor is listening on :%s", cfg.AdvisorPort)
	if err := server.Serve(lis); err != nil {
		logger.Fatalw("advisor stopped", "error", err)
	}
}

// newSuggestStore asks the language model when a key is configured and falls
// back to the positional heuristic otherwise.
func newSuggestStore(cfg *bootstrap.Config, log *zap.SugaredLogger) usecase.SuggestStore {
	if cfg.LlmApiKey == "" {
		log.Warn("LLM_API_KEY is empty, advisor serves heuristic suggestions")
		return advisor.NewHeuristicSuggester(fallback.NewTimeSeededPolicy())
	}
	llmRepo := repository.NewLlmRepository(adapters.NewLlmAdapter(cfg), log)
	return advisor.NewLlmSuggester(llmRepo, log)
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	return logger.Sugar()
}
