package main

import (
	"context"
	"fmt"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jacdylngab/quizwire/internal/config"
	"github.com/jacdylngab/quizwire/internal/gateway"
	"github.com/jacdylngab/quizwire/internal/middleware"
	"github.com/jacdylngab/quizwire/internal/room"
	"github.com/jacdylngab/quizwire/internal/store"
	"github.com/jacdylngab/quizwire/internal/store/memory"
	"github.com/jacdylngab/quizwire/internal/store/postgres"
	"github.com/jacdylngab/quizwire/internal/store/redis"
	"github.com/jacdylngab/quizwire/internal/web"
)

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(config.NewCommand(cfg, runServer).Execute())
}

func runServer(cfg *config.Config) error {
	logger := logrus.New()
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if err := st.SeedQuestions(ctx, store.DefaultBank); err != nil {
		return fmt.Errorf("seed question bank: %w", err)
	}

	registry := room.NewRegistry()
	codes := room.NewCodeGenerator(st)
	codes.Length = cfg.CodeLength

	gw := gateway.New(logger, st, registry, gateway.Config{
		MinPlayers:       cfg.MinPlayers,
		QuestionsPerGame: cfg.QuestionsPerGame,
		AdvanceDelay:     cfg.AdvanceDelay,
	})

	pages, err := web.NewServer(logger, st, codes)
	if err != nil {
		return err
	}

	router := httprouter.New()
	pages.Register(router)
	router.HandlerFunc(http.MethodGet, "/ws", gateway.WSHandler(logger, gw))

	handler := middleware.LogMiddleware(logger)(router)

	logger.Infof("Running on %s (store driver: %s)", cfg.Addr(), cfg.StoreDriver)
	return http.ListenAndServe(cfg.Addr(), handler)
}

func openStore(ctx context.Context, cfg *config.Config) (store.GameRecordStore, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return postgres.Connect(ctx, cfg.PostgresDSN)
	case "redis":
		return redis.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	default:
		return memory.New(), nil
	}
}
