package main

import (
	"context"

	"snagaudit/internal/db"
	"snagaudit/migrations"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply pending database migrations",
	Action: func(cCtx *cli.Context) error {
		config, err := loadConfig(cCtx)
		if err != nil {
			return err
		}

		logger := newLogger(config)
		ctx := context.Background()

		pool, err := db.Connect(ctx, config)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := db.NewMigrator(pool, migrations.FS, logger).Run(ctx)
		if err != nil {
			return err
		}

		logger.WithField("applied", applied).Info("migrations complete")
		return nil
	},
}
