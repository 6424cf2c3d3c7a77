package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/punchamoorthee/payengine/internal/config"
	"github.com/punchamoorthee/payengine/internal/csvio"
	"github.com/punchamoorthee/payengine/internal/domain"
	"github.com/punchamoorthee/payengine/internal/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if len(os.Args) != 2 {
		logger.Fatal("usage: payengine <transactions.csv>")
	}

	input, err := os.Open(os.Args[1])
	if err != nil {
		logger.Fatal("open input", zap.Error(err))
	}
	defer input.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	eng := engine.New(logger)
	records := make(chan domain.Record, cfg.StreamBuffer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(records)
	}()

	// Stream closes the channel at end of input; the engine drains whatever
	// arrived before a read failure, then we bail without a report.
	readErr := csvio.NewReader(input).Stream(records)
	<-done
	if readErr != nil {
		logger.Fatal("read transactions", zap.Error(readErr))
	}

	if err := csvio.WriteAccounts(os.Stdout, eng.Snapshot()); err != nil {
		logger.Fatal("write report", zap.Error(err))
	}
}

// newLogger builds a JSON logger on stderr so stdout carries only the report.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}

	return zcfg.Build()
}

// serveMetrics exposes the engine counters while a run is active. Useful when
// chewing through large inputs; disabled unless METRICS_ADDR is set.
func serveMetrics(addr string, logger *zap.Logger) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Warn("metrics listener stopped", zap.Error(err))
	}
}
