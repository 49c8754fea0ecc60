// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command tsp-replay drives a temporal stream pattern query over a CSV
// event log, serving its health, metrics, and stored results over HTTP
// while it runs. It is a small demo/ops binary that wires the core
// library to a concrete event source and a concrete pattern tree,
// rather than part of the core itself.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	tsperrors "grimm.is/tsp/internal/errors"
	"grimm.is/tsp/internal/tspapi"
	"grimm.is/tsp/internal/tspconfig"
	"grimm.is/tsp/internal/tspevents"
	"grimm.is/tsp/internal/tspmetrics"
	"grimm.is/tsp/internal/tspstore"
)

var logger = log.New(os.Stderr, "tsp: ", log.LstdFlags)

func main() {
	configPath := flag.String("config", "", "path to an HCL query config file")

	eventsPath := flag.String("events", "", "path to a CSV event log (overrides config events.path)")
	keyField := flag.String("key-field", "", "CSV column to partition events by; empty means a single shared partition")
	hasHeader := flag.Bool("has-header", true, "whether the CSV file has a header row")
	field := flag.String("field", "value", "CSV column the pattern tree evaluates as a float64 reading")

	highThreshold := flag.Float64("high-threshold", 80, "a reading above this value counts toward the high-window")
	lowThreshold := flag.Float64("low-threshold", 50, "a reading at or below this value counts toward the recovery window")
	windowSize := flag.Uint("window-size", 3, "consecutive readings required to confirm each half of the pattern")

	chunkMaxSize := flag.Int("chunk-max-size", 0, "max events buffered per partition key before a chunk is emitted (overrides config)")
	totalSizeLimit := flag.Int("total-size-limit", 0, "max events buffered across all partitions before the oldest is flushed (overrides config)")

	listen := flag.String("listen", "", "address the status/metrics/results HTTP server listens on (overrides config)")
	storePath := flag.String("store", "", "path to the SQLite result store (overrides config)")

	flag.Parse()

	cfg, err := loadConfig(*configPath, *eventsPath, *keyField, *hasHeader, *chunkMaxSize, *totalSizeLimit, *listen, *storePath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	if err := run(cfg, *field, *highThreshold, *lowThreshold, uint32(*windowSize)); err != nil {
		logger.Fatalf("run: %v", err)
	}
}

// loadConfig builds a tspconfig.Config either from an HCL file (when
// configPath is set) or from flags alone: load it if given, else build
// a default in code.
func loadConfig(configPath, eventsPath, keyField string, hasHeader bool, chunkMaxSize, totalSizeLimit int, listen, storePath string) (*tspconfig.Config, error) {
	var cfg *tspconfig.Config
	if configPath != "" {
		loaded, err := tspconfig.LoadFile(configPath)
		if err != nil {
			return nil, tsperrors.Wrap(err, tsperrors.KindValidation, "failed to load query config")
		}
		cfg = loaded
	} else {
		cfg = &tspconfig.Config{
			Events:    tspconfig.EventsConfig{Path: eventsPath, KeyField: keyField, HasHeader: hasHeader},
			Partition: tspconfig.DefaultPartitionConfig(),
			API:       tspconfig.APIConfig{Listen: ":8080"},
			Store:     tspconfig.StoreConfig{Path: "tsp-replay.db"},
		}
	}

	if eventsPath != "" {
		cfg.Events.Path = eventsPath
	}
	if cfg.Events.Path == "" {
		return nil, tsperrors.New(tsperrors.KindValidation, "no events path given: pass -events or -config")
	}
	if chunkMaxSize > 0 {
		cfg.Partition.ChunkMaxSize = chunkMaxSize
	}
	if totalSizeLimit > 0 {
		cfg.Partition.TotalSizeLimit = totalSizeLimit
	}
	if listen != "" {
		cfg.API.Listen = listen
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "tsp-replay.db"
	}
	return cfg, nil
}

func run(cfg *tspconfig.Config, field string, highThreshold, lowThreshold float64, windowSize uint32) error {
	rawSource, err := tspevents.OpenCSVSource(cfg.Events.Path, cfg.Events.HasHeader)
	if err != nil {
		return tsperrors.Wrap(err, tsperrors.KindNotFound, "failed to open event source")
	}
	defer rawSource.Close()

	store, err := tspstore.Open(cfg.Store.Path)
	if err != nil {
		return tsperrors.Wrap(err, tsperrors.KindUnavailable, "failed to open result store")
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	metricsReg := tspmetrics.NewRegistry(reg)
	source := tspmetrics.NewCountingSource[tspevents.Row](rawSource, metricsReg.EventsIngested)

	api := tspapi.NewServer(store, reg)
	srv := &http.Server{Addr: cfg.API.Listen, Handler: api}
	go func() {
		logger.Printf("serving status/metrics/results on %s (run %s)", cfg.API.Listen, api.RunID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("api server stopped: %v", err)
		}
	}()

	driver, err := buildDriver(field, highThreshold, lowThreshold, windowSize, source, cfg.Events.KeyField, cfg.Partition.ChunkMaxSize, cfg.Partition.TotalSizeLimit)
	if err != nil {
		return tsperrors.Wrap(err, tsperrors.KindInternal, "failed to build pattern tree")
	}

	// The driver's Next() yields whatever rowProjection.Extract
	// returns for each emitted interval, regardless of whether the
	// pattern tree classified it Success or Failure; a caller that
	// wants to drop Failure rows filters them here or inside the
	// projection itself.
	var batch []tspstore.Result
	n := 0
	chunksSeen := 0
	for {
		row, ok := driver.Next()
		if !ok {
			break
		}
		metricsReg.ResultsProduced.Inc()
		if pulled := driver.ChunksPulled(); pulled > chunksSeen {
			metricsReg.ChunksEmitted.Add(float64(pulled - chunksSeen))
			chunksSeen = pulled
		}
		metricsReg.PartitionsLive.Set(float64(driver.PartitionCount()))
		batch = append(batch, tspstore.Result{
			PartitionKey: row.Key,
			Start:        row.Start,
			End:          row.End,
			Success:      true,
			Value:        row.Summary,
			RecordedAt:   time.Now(),
		})
		n++
		if len(batch) >= 256 {
			if err := store.RecordResults(batch); err != nil {
				api.SetHealthy(false)
				return tsperrors.Wrap(err, tsperrors.KindUnavailable, "failed to persist results")
			}
			batch = batch[:0]
		}
	}
	if err := store.RecordResults(batch); err != nil {
		api.SetHealthy(false)
		return tsperrors.Wrap(err, tsperrors.KindUnavailable, "failed to persist final results")
	}

	logger.Printf("replay complete: %d results produced", n)
	_ = srv.Close()
	return nil
}
