package main

import (
	"fmt"

	"snagaudit/internal/utils"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate snag and media ids, or audit ids with --audit",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.BoolFlag{
			Name:  "audit",
			Usage: "Generate audit ids (UUID) instead of NanoIDs",
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		for range count {
			if c.Bool("audit") {
				fmt.Println(uuid.NewString())
				continue
			}
			fmt.Println(utils.NanoID())
		}
		return nil
	},
}
