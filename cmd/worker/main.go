// Command worker resumes a single video job by id. It is the operational
// recovery path for jobs whose process died mid-pipeline: the run picks up
// from the last persisted step output.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/voxreel/voxreel/internal/config"
	"github.com/voxreel/voxreel/internal/logger"
	"github.com/voxreel/voxreel/internal/pipeline"
	"github.com/voxreel/voxreel/internal/repository"
	"github.com/voxreel/voxreel/internal/storage"
)

func main() {
	jobID := flag.String("job", "", "id of the job to run or resume")
	flag.Parse()
	if *jobID == "" {
		flag.Usage()
		os.Exit(2)
	}

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	store := repository.NewGormJobStore(db, appLogger, repository.DurationDefaults{
		MinSeconds: cfg.Pipeline.DefaultMinSeconds,
		MaxSeconds: cfg.Pipeline.DefaultMaxSeconds,
	})

	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}

	runner := pipeline.NewRunnerFromConfig(cfg, store, objectStorage)

	ctx := logger.SetJobID(context.Background(), *jobID)
	if err := runner.Run(ctx, *jobID); err != nil {
		logger.Error("Job %s failed: %v", *jobID, err)
		os.Exit(1)
	}
	logger.Info("Job %s finished", *jobID)
}
