package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/kelpgrid/driftwatch/pkg/config"
	"github.com/kelpgrid/driftwatch/pkg/manager"
	"github.com/kelpgrid/driftwatch/pkg/observability"
)

var (
	schedule = flag.String("schedule", "*/30 * * * *", "Cron schedule for aggregation runs")
	runOnce  = flag.Bool("run-once", false, "Run aggregation once, print the result and exit")
	topN     = flag.Int("top", 10, "Size of the content ranking in --run-once output")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)
	mgr, err := manager.New(cfg, logger, nil)
	if err != nil {
		log.Fatalf("Failed to initialize storage manager: %v", err)
	}
	defer mgr.Close()

	if *runOnce {
		if err := runAggregation(mgr, *topN, true); err != nil {
			log.Fatalf("Aggregation failed: %v", err)
		}
		return
	}

	c := cron.New()
	_, err = c.AddFunc(*schedule, func() {
		if err := runAggregation(mgr, *topN, false); err != nil {
			log.Printf("Aggregation failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule aggregation: %v", err)
	}

	c.Start()
	log.Printf("Stats aggregator started, schedule: %s", *schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down gracefully...")

	ctx := c.Stop()
	<-ctx.Done()
	log.Println("Aggregator stopped")
}

func runAggregation(mgr *manager.Manager, topN int, print bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Recompute rather than serve whatever a previous run cached.
	mgr.Stats.InvalidateSite()

	started := time.Now()
	result, err := mgr.Stats.SiteStats(ctx)
	if err != nil {
		return err
	}
	ranking, err := mgr.Stats.TopContent(ctx, topN)
	if err != nil {
		return err
	}
	log.Printf("Aggregated %d users, %d plays in %s", result.TotalUsers, result.TotalPlays, time.Since(started).Round(time.Millisecond))

	if print {
		out := struct {
			Site interface{} `json:"site"`
			Top  interface{} `json:"top_content"`
		}{Site: result, Top: ranking}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return nil
}
