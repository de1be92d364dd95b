package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/db"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx/temporalworker"
)

// Dedicated Temporal worker: group exam scoring and the hardness refresh
// cron, without the HTTP surface.
func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	conn := pg.DB()

	tc, err := temporalx.NewClient(log)
	if err != nil {
		log.Fatal("Temporal init failed", "error", err)
	}
	if tc == nil {
		log.Fatal("TEMPORAL_ADDRESS is required for the worker")
	}
	defer tc.Close()

	journeyRepo := repos.NewJourneyRepo(conn, log)
	stepRepo := repos.NewJourneyStepRepo(conn, log)
	questionRepo := repos.NewQuestionRepo(conn, log)
	templateRepo := repos.NewJourneyTemplateRepo(conn, log)

	scoring := services.NewScoringService(conn, journeyRepo, stepRepo, templateRepo, log)
	hardness := services.NewHardnessService(questionRepo, stepRepo, log)

	runner, err := temporalworker.NewRunner(log, tc, scoring, hardness)
	if err != nil {
		log.Fatal("Worker init failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Start(ctx); err != nil {
		log.Fatal("Worker start failed", "error", err)
	}

	<-ctx.Done()
	log.Info("Worker shutting down")
}
