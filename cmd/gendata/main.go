package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
)

// Generates a well-formed random transactions CSV for local runs and for
// feeding the benchmark.

var (
	outPath string
	records int
	clients int
	seed    int64
)

func init() {
	flag.StringVar(&outPath, "out", "transactions.csv", "Output file path")
	flag.IntVar(&records, "records", 10000, "Number of transaction rows")
	flag.IntVar(&clients, "clients", 100, "Number of distinct clients")
	flag.Int64Var(&seed, "seed", 42, "RNG seed, fixed for reproducible fixtures")
}

func main() {
	flag.Parse()

	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(seed))
	w := csv.NewWriter(f)
	w.Write([]string{"type", "client", "tx", "amount"})

	// Deposits and withdrawals take fresh tx ids; the issued slice feeds the
	// dispute-family rows so most references actually resolve.
	var issued []uint32
	nextTx := uint32(1)

	emitFunded := func(kind, client string) {
		w.Write([]string{kind, client, strconv.FormatUint(uint64(nextTx), 10), randAmount(rng)})
		issued = append(issued, nextTx)
		nextTx++
	}

	for i := 0; i < records; i++ {
		client := strconv.Itoa(rng.Intn(clients) + 1)

		switch p := rng.Float32(); {
		case p < 0.55 || len(issued) == 0:
			emitFunded("deposit", client)
		case p < 0.85:
			emitFunded("withdrawal", client)
		case p < 0.93:
			w.Write([]string{"dispute", client, pick(rng, issued)})
		case p < 0.97:
			w.Write([]string{"resolve", client, pick(rng, issued)})
		default:
			w.Write([]string{"chargeback", client, pick(rng, issued)})
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("write output: %v", err)
	}

	log.Printf("Wrote %d transactions for %d clients to %s", records, clients, outPath)
}

func randAmount(rng *rand.Rand) string {
	return fmt.Sprintf("%d.%04d", rng.Intn(500), rng.Intn(10000))
}

func pick(rng *rand.Rand, issued []uint32) string {
	return strconv.FormatUint(uint64(issued[rng.Intn(len(issued))]), 10)
}
