package main

import (
	"fmt"

	"snagaudit/internal/clickup"
	"snagaudit/pkg/types"

	"github.com/joho/godotenv"
	"github.com/k0kubun/pp/v3"
	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"
)

var clickupCommand = &cli.Command{
	Name:  "clickup",
	Usage: "Inspect the ClickUp workspace to find a list id",
	Subcommands: []*cli.Command{
		{
			Name:  "teams",
			Usage: "List the teams the token can see",
			Action: func(cCtx *cli.Context) error {
				client, err := clickupClient(cCtx)
				if err != nil {
					return err
				}

				teams, err := client.Teams(cCtx.Context)
				if err != nil {
					return fmt.Errorf("list teams: %w", err)
				}

				pp.Println(teams)
				return nil
			},
		},
		{
			Name:  "spaces",
			Usage: "List the spaces in a team",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "team",
					Aliases:  []string{"t"},
					Usage:    "Team id",
					Required: true,
				},
			},
			Action: func(cCtx *cli.Context) error {
				client, err := clickupClient(cCtx)
				if err != nil {
					return err
				}

				spaces, err := client.Spaces(cCtx.Context, cCtx.String("team"))
				if err != nil {
					return fmt.Errorf("list spaces: %w", err)
				}

				pp.Println(spaces)
				return nil
			},
		},
		{
			Name:  "lists",
			Usage: "List the lists in a space",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "space",
					Aliases:  []string{"s"},
					Usage:    "Space id",
					Required: true,
				},
			},
			Action: func(cCtx *cli.Context) error {
				client, err := clickupClient(cCtx)
				if err != nil {
					return err
				}

				lists, err := client.Lists(cCtx.Context, cCtx.String("space"))
				if err != nil {
					return fmt.Errorf("list lists: %w", err)
				}

				pp.Println(lists)
				return nil
			},
		},
	},
}

// clickupClient only needs the ClickUp settings, so it skips the
// DATABASE_URL check in loadConfig.
func clickupClient(cCtx *cli.Context) (*clickup.Client, error) {
	_ = godotenv.Load()

	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.ClickUpAPIToken == "" {
		return nil, fmt.Errorf("set CLICKUP_API_TOKEN")
	}

	return clickup.New(c), nil
}
