package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/punchamoorthee/payengine/internal/domain"
	"github.com/punchamoorthee/payengine/internal/engine"
)

// Config holds the benchmark settings
var (
	records  int
	clients  int
	buffer   int
	workload string
)

func init() {
	flag.IntVar(&records, "records", 1000000, "Number of records to stream")
	flag.IntVar(&clients, "clients", 1000, "Number of distinct clients")
	flag.IntVar(&buffer, "buffer", 16, "Hand-off channel depth")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Records: %d | Clients: %d", workload, records, clients)

	eng := engine.New(zap.NewNop())
	stream := make(chan domain.Record, buffer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(stream)
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	start := time.Now()

	for i := 0; i < records; i++ {
		stream <- generate(rng, uint32(i+1))
	}
	close(stream)
	<-done

	printResults(time.Since(start))
}

// generate produces mostly deposits and withdrawals with a tail of dispute
// activity. Chargebacks are left out: they lock accounts, which turns the
// rest of a long run into pure rejections.
func generate(rng *rand.Rand, tx uint32) domain.Record {
	client := uint16(rng.Intn(clients) + 1)

	if workload == "hotspot" && rng.Float32() < 0.90 {
		// Hotspot: 90% of traffic hammers one account.
		client = 1
	}

	switch p := rng.Float32(); {
	case p < 0.60:
		amount := decimal.New(int64(rng.Intn(5000000)+1), -4)
		return domain.Record{Kind: domain.KindDeposit, Client: client, Tx: tx, Amount: &amount}
	case p < 0.90:
		amount := decimal.New(int64(rng.Intn(5000000)+1), -4)
		return domain.Record{Kind: domain.KindWithdrawal, Client: client, Tx: tx, Amount: &amount}
	case p < 0.95:
		return domain.Record{Kind: domain.KindDispute, Client: client, Tx: uint32(rng.Intn(int(tx)) + 1)}
	default:
		return domain.Record{Kind: domain.KindResolve, Client: client, Tx: uint32(rng.Intn(int(tx)) + 1)}
	}
}

func printResults(d time.Duration) {
	results := map[string]interface{}{
		"workload":       workload,
		"records":        records,
		"clients":        clients,
		"duration_sec":   d.Seconds(),
		"throughput_tps": float64(records) / d.Seconds(),
	}

	// Print JSON for the plotter to consume
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)
}
