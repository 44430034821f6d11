package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"snagaudit/internal/db"
	"snagaudit/internal/seed"
	"snagaudit/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with a demo audit",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of snags to create",
			Value:   8,
		},
	},
	Action: func(cCtx *cli.Context) error {
		config, err := loadConfig(cCtx)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(config)
		ctx := context.Background()

		pool, err := db.Connect(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("Connected to database")

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		auditID, err := seed.SeedDemoAudit(ctx, store.NewAuditRepository(pool), store.NewSnagRepository(pool), cCtx.Int("count"), rng)
		if err != nil {
			return err
		}

		logger.WithField("audit_id", auditID).Info("demo audit seeded")
		return nil
	},
}
