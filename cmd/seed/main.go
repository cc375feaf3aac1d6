package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/mercadofacil/backend-go/internal/domain"
	"github.com/mercadofacil/backend-go/internal/store"
	"github.com/mercadofacil/backend-go/internal/store/postgres"
	"github.com/mercadofacil/backend-go/internal/store/sheet"
)

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "store",
			Usage:   "Store backend (sheet or postgres)",
			Value:   "sheet",
			EnvVars: []string{"STORE_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "sheet-path",
			Usage:   "Path of the .xlsx workbook for the sheet backend",
			Value:   "./data/mercado.xlsx",
			EnvVars: []string{"SHEET_PATH"},
		},
		&cli.StringFlag{
			Name:    "db-url",
			Usage:   "Database connection string for the postgres backend",
			EnvVars: []string{"DATABASE_URL"},
		},
	}
}

func openStore(c *cli.Context) (store.Store, error) {
	switch c.String("store") {
	case "sheet":
		return sheet.New(c.String("sheet-path")), nil
	case "postgres":
		url := c.String("db-url")
		if url == "" {
			return nil, fmt.Errorf("--db-url is required for the postgres backend")
		}
		db, err := postgres.Open(url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		pg := postgres.New(db)
		if err := pg.EnsureSchema(c.Context); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.String("store"))
	}
}

func runInit(c *cli.Context) error {
	st, err := openStore(c)
	if err != nil {
		return err
	}
	if err := st.Save(c.Context, store.Snapshot{}); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	fmt.Println("store initialized")
	return nil
}

func runDemo(c *cli.Context) error {
	st, err := openStore(c)
	if err != nil {
		return err
	}
	snap := demoSnapshot(time.Now())
	if err := st.Save(c.Context, snap); err != nil {
		return fmt.Errorf("failed to write demo data: %w", err)
	}
	fmt.Printf("wrote %d products and %d history events\n", len(snap.Products), len(snap.History))
	return nil
}

// demoSnapshot builds a small pantry with enough audit history that the
// shopping list has consumption-based suggestions right away.
func demoSnapshot(now time.Time) store.Snapshot {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }

	snap := store.Snapshot{
		Products: []domain.Product{
			{ID: 1, Name: "Arroz 5kg", Brand: "Tio João", UnitPrice: price("24.90"), CurrentStock: 1, MinStock: 1},
			{ID: 2, Name: "Feijão 1kg", Brand: "Camil", UnitPrice: price("8.50"), CurrentStock: 2, MinStock: 2},
			{ID: 3, Name: "Leite 1L", Brand: "", UnitPrice: price("4.79"), CurrentStock: 3, MinStock: 6},
			{ID: 4, Name: "Café 500g", Brand: "Pilão", UnitPrice: price("18.00"), CurrentStock: 1, MinStock: 1},
		},
	}

	audit := func(d int, id int64, qty int) domain.HistoryEvent {
		return domain.HistoryEvent{Timestamp: daysAgo(d), ProductID: id, Kind: domain.EventAudit, Quantity: qty}
	}
	purchase := func(d int, id int64, qty int, p string) domain.HistoryEvent {
		return domain.HistoryEvent{Timestamp: daysAgo(d), ProductID: id, Kind: domain.EventPurchase, Quantity: qty, PriceAtTime: price(p)}
	}

	snap.History = []domain.HistoryEvent{
		// Arroz: 2 eaten over 20 days
		audit(30, 1, 3),
		audit(10, 1, 1),
		// Feijão: bought 2 mid-window, 3 eaten over 15 days
		audit(20, 2, 3),
		purchase(12, 2, 2, "8.50"),
		audit(5, 2, 2),
		// Leite: heavy consumption, 12 gone in 10 days
		audit(15, 3, 9),
		purchase(9, 3, 6, "4.79"),
		audit(5, 3, 3),
		// Café: only one audit so far, falls back to minimum stock
		audit(7, 4, 1),
	}

	return snap
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Initialize or seed a pantry store",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create an empty store (sheet headers or postgres schema)",
				Flags:  storeFlags(),
				Action: runInit,
			},
			{
				Name:   "demo",
				Usage:  "Write a small demo pantry with audit and purchase history",
				Flags:  storeFlags(),
				Action: runDemo,
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
