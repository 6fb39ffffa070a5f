package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/db/seeders"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/urfave/cli/v3"
)

func NewApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "storefront",
		Usage: "storefront maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection()
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Println("✅ Migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Seed sizes, colors and a demo store",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection()
					if err != nil {
						return err
					}
					if err := seeders.DBSeed(ctx, db); err != nil {
						return err
					}
					log.Println("✅ Seeding complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session, encryption and CSRF keys for .env",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: ".env.keys", Usage: "file the keys are written to"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateAndPrintSessionKeys(c.String("out")); err != nil {
						return err
					}
					log.Println("✅ Key generation complete. Please copy the keys to your .env file.")
					return nil
				},
			},
			{
				Name:      "hash-operator-token",
				Usage:     "Print the bcrypt hash to use as OPERATOR_TOKEN_HASH",
				ArgsUsage: "<token>",
				Action: func(ctx context.Context, c *cli.Command) error {
					token := c.Args().First()
					if token == "" {
						return cli.Exit("a token is required", 1)
					}
					hash, err := configs.HashOperatorToken(token)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Fprintf(out, "OPERATOR_TOKEN_HASH=%s\n", hash)
					return nil
				},
			},
			{
				Name:  "verify-orders",
				Usage: "Check that every stored order total matches its items",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection()
					if err != nil {
						return err
					}
					orderSvc := services.NewOrderService(db, repositories.NewOrderRepository(db), repositories.NewOrderStatusRepository(db))
					return verifyOrders(ctx, out, orderSvc)
				},
			},
		},
	}
}

func verifyOrders(ctx context.Context, out io.Writer, orderSvc *services.OrderService) error {
	mismatches, checked, err := orderSvc.VerifyTotals(ctx)
	if err != nil {
		return err
	}
	for _, m := range mismatches {
		fmt.Fprintf(out, "order %s: stored %s, expected %s\n", m.OrderID, m.Stored, m.Expected)
	}
	fmt.Fprintf(out, "checked %d orders, %d mismatched\n", checked, len(mismatches))
	if len(mismatches) > 0 {
		return cli.Exit("order totals do not match their items", 1)
	}
	return nil
}

func RunCli() {
	if err := NewApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
