package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snagaudit/internal/clickup"
	"snagaudit/internal/db"
	"snagaudit/internal/extract"
	"snagaudit/internal/pipeline"
	"snagaudit/internal/server"
	"snagaudit/internal/storage"
	"snagaudit/internal/store"
	"snagaudit/internal/tasksync"
	"snagaudit/migrations"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply pending migrations before serving",
			Value: true,
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cCtx.Bool("migrate") {
		applied, err := db.NewMigrator(pool, migrations.FS, logger).Run(ctx)
		if err != nil {
			return err
		}
		logger.WithField("applied", applied).Info("migrations complete")
	}

	files, err := storage.New(ctx, config)
	if err != nil {
		return err
	}

	model, err := extract.NewOpenAIModel(config)
	if err != nil {
		return err
	}

	snagRepo := store.NewSnagRepository(pool)
	mediaRepo := store.NewMediaRepository(pool)
	auditRepo := store.NewAuditRepository(pool)

	pipe := pipeline.New(pipeline.Options{
		Snags:          snagRepo,
		Media:          mediaRepo,
		Audits:         auditRepo,
		Extractor:      extract.New(model, logger),
		Files:          files,
		DefaultProject: config.DefaultProject,
		Logger:         logger,
	})

	syncer := tasksync.New(snagRepo, mediaRepo, files, clickup.New(config), logger)

	srv := server.New(config, logger, pipe, syncer)

	go func() {
		logger.WithFields(logrus.Fields{
			"port":    config.ServerPort,
			"storage": files.Name(),
		}).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
