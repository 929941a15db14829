// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/poiesic/wheretobuy"
	"github.com/poiesic/wheretobuy/batch"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/catalog"
	"github.com/poiesic/wheretobuy/config"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/server"
	"github.com/poiesic/wheretobuy/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wheretobuy",
		Usage: "Find where beverage products can be bought",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "wheretobuy.yaml",
				EnvVars: []string{"WHERETOBUY_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file when it exists",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Search for an inline product description",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Product name", Required: true},
					&cli.StringFlag{Name: "producer", Aliases: []string{"p"}, Usage: "Producer or brand"},
					&cli.StringFlag{Name: "varietal", Usage: "Grape varietal"},
					&cli.StringFlag{Name: "vintage", Usage: "Vintage year"},
					&cli.StringFlag{Name: "image-url", Usage: "Label image for visual search"},
					&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
				},
			},
			{
				Name:   "lookup",
				Usage:  "Search for a catalog product and store its places",
				Action: lookupCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "id", Usage: "Catalog product ID", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
				},
			},
			{
				Name:   "batch",
				Usage:  "Search for many catalog products concurrently",
				Action: batchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Include products that already have places"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent searches (0 uses the config value)"},
					&cli.IntFlag{Name: "report-interval", Usage: "Report progress every N products", Value: 10},
				},
			},
			{
				Name:   "import",
				Usage:  "Import products from a CSV, XLS or XLSX catalog export",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Catalog file", Required: true},
					&cli.StringFlag{Name: "image-base-url", Usage: "Prefix for bare label file names (overrides config)"},
					&cli.IntFlag{Name: "header-row", Usage: "1-based header row (overrides config)"},
				},
			},
			{
				Name:   "places",
				Usage:  "Show the stored places for a catalog product",
				Action: placesCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "id", Usage: "Catalog product ID", Required: true},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the search over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "Listen address (overrides config)"},
				},
			},
		},
	}
}

func setup(c *cli.Context) error {
	if path := c.String("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"))
}

func openLocator(c *cli.Context) (*wheretobuy.Locator, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	locator, err := wheretobuy.Open(c.Context, cfg)
	if err != nil {
		return nil, nil, err
	}
	return locator, cfg, nil
}

func searchCommand(c *cli.Context) error {
	locator, _, err := openLocator(c)
	if err != nil {
		return err
	}
	defer locator.Close()

	target := core.Target{
		Name:     c.String("name"),
		Producer: c.String("producer"),
		Varietal: c.String("varietal"),
		Vintage:  c.String("vintage"),
		ImageURL: c.String("image-url"),
	}
	result, err := locator.Locate(c.Context, target)
	if err != nil {
		return err
	}
	return printResult(c.App.Writer, result, c.Bool("json"))
}

func lookupCommand(c *cli.Context) error {
	locator, _, err := openLocator(c)
	if err != nil {
		return err
	}
	defer locator.Close()

	result, err := locator.LocateProduct(c.Context, core.ID(c.Uint64("id")))
	if result != nil {
		if perr := printResult(c.App.Writer, result, c.Bool("json")); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func batchCommand(c *cli.Context) error {
	locator, cfg, err := openLocator(c)
	if err != nil {
		return err
	}
	defer locator.Close()

	products, err := locator.Products(c.Context, !c.Bool("all"))
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(c.App.Writer, "No products to search")
		return nil
	}

	opts := []batch.Option{batch.WithProgress(c.App.ErrWriter, c.Int("report-interval"))}
	workers := c.Int("workers")
	if workers == 0 {
		workers = cfg.Batch.Workers
	}
	if workers > 0 {
		opts = append(opts, batch.WithPoolSize(workers))
	}
	runner, err := batch.NewRunner(locator, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.App.Writer, "Searching %d products with %d workers\n", len(products), runner.PoolSize())
	summary, err := runner.Run(ctx, products)
	if summary != nil {
		fmt.Fprintln(c.App.Writer, summary)
		for _, f := range summary.Failures {
			fmt.Fprintf(c.App.Writer, "  product %d: %v\n", f.ID, f.Err)
		}
	}
	return err
}

func importCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts := catalog.Options{HeaderRow: cfg.Catalog.HeaderRow, ImageBaseURL: cfg.Catalog.ImageBaseURL}
	if v := c.String("image-base-url"); v != "" {
		opts.ImageBaseURL = v
	}
	if v := c.Int("header-row"); v > 0 {
		opts.HeaderRow = v
	}

	repos, err := badger.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repos.Close()

	added, report, err := wheretobuy.ImportCatalog(c.Context, repos.Products, c.String("file"), opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Imported %d of %d rows\n", len(added), report.Rows)
	for _, msg := range report.Skipped {
		fmt.Fprintf(c.App.Writer, "  skipped %s\n", msg)
	}
	return nil
}

func placesCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	repos, err := badger.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repos.Close()

	id := core.ID(c.Uint64("id"))
	product, err := repos.Products.GetProduct(c.Context, id)
	if err != nil {
		return fmt.Errorf("product %d: %w", id, err)
	}
	places, err := repos.Placements.GetPlacements(c.Context, id)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%s\n", product.Target().Description())
	if len(places) == 0 {
		fmt.Fprintln(w, "  no places stored")
		return nil
	}
	for _, p := range places {
		fmt.Fprintf(w, "  %d. [%s] %s %s %s\n", p.Rank, p.Tier, p.StoreName, p.Price, p.URL)
		fmt.Fprintf(w, "     %s\n", p.Reason)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	locator, cfg, err := openLocator(c)
	if err != nil {
		return err
	}
	defer locator.Close()

	addr := cfg.Server.Addr
	if v := c.String("addr"); v != "" {
		addr = v
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(addr, locator, slog.Default()).Run(ctx)
}

type jsonPlace struct {
	Rank        int      `json:"rank"`
	StoreName   string   `json:"store_name"`
	URL         string   `json:"url"`
	ProductName string   `json:"product_name"`
	Price       string   `json:"price,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Tier        string   `json:"tier"`
	Score       float64  `json:"score"`
	Reason      string   `json:"reason"`
	Provenance  string   `json:"provenance"`
}

func printResult(w io.Writer, result *cascade.Result, asJSON bool) error {
	if asJSON {
		places := make([]jsonPlace, len(result.Places))
		for i, vc := range result.Places {
			places[i] = jsonPlace{
				Rank:        i + 1,
				StoreName:   vc.StoreName,
				URL:         vc.Link,
				ProductName: vc.ProductName,
				Price:       vc.Price,
				Rating:      vc.Rating,
				Tier:        vc.Tier.String(),
				Score:       vc.Score,
				Reason:      vc.Reason,
				Provenance:  string(vc.Provenance),
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"target_id": result.Target.ID(),
			"query":     result.Target.Query(),
			"places":    places,
		})
	}

	stages := make([]string, len(result.Stages))
	for i, s := range result.Stages {
		stages[i] = s.String()
	}
	fmt.Fprintf(w, "Query: %s\n", result.Target.Query())
	fmt.Fprintf(w, "Stages: %s\n", strings.Join(stages, " -> "))
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  %s unavailable: %v\n", f.Stage, f.Err)
	}
	if result.Places.Empty() {
		fmt.Fprintln(w, "No places found")
		return nil
	}
	for i, vc := range result.Places {
		price := vc.Price
		if price == "" {
			price = "-"
		}
		rating := "-"
		if vc.Rating != nil {
			rating = strconv.FormatFloat(*vc.Rating, 'f', 1, 64)
		}
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, vc.Tier, vc.StoreName)
		fmt.Fprintf(w, "   %s | price %s | rating %s\n", vc.ProductName, price, rating)
		if vc.Link != "" {
			fmt.Fprintf(w, "   %s\n", vc.Link)
		}
		fmt.Fprintf(w, "   %s\n", vc.Reason)
	}
	return nil
}
