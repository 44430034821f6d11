package main

import (
	"context"
	"fmt"

	"snagaudit/internal/clickup"
	"snagaudit/internal/db"
	"snagaudit/internal/storage"
	"snagaudit/internal/store"
	"snagaudit/internal/tasksync"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var syncAuditCommand = &cli.Command{
	Name:  "sync-audit",
	Usage: "Push every unsynced snag in an audit to ClickUp",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "audit",
			Aliases:  []string{"a"},
			Usage:    "Audit id to sync",
			Required: true,
		},
	},
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

		files, err := storage.New(ctx, config)
		if err != nil {
			return err
		}

		syncer := tasksync.New(
			store.NewSnagRepository(pool),
			store.NewMediaRepository(pool),
			files,
			clickup.New(config),
			logger,
		)

		results, err := syncer.SyncAudit(ctx, cCtx.String("audit"))
		if err != nil {
			return fmt.Errorf("sync audit: %w", err)
		}

		pp.Println(results)
		return nil
	},
}
