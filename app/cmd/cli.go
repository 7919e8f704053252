package cmd

import (
	"context"
	"os"

	"github.com/nattawatj/go-storefront/app/configs"
	"github.com/nattawatj/go-storefront/app/db/seeders"
	"github.com/nattawatj/go-storefront/app/models/migrations"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func RunCli(env configs.ENV) {
	cmd := &cli.Command{
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					zap.L().Info("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Migrate and seed the database with demo data",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					if err := seeders.DBSeed(db); err != nil {
						return err
					}
					zap.L().Info("seed complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate session and CSRF keys for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					return configs.GenerateAndPrintSessionKeys()
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		zap.L().Fatal("command failed", zap.Error(err))
	}
}
