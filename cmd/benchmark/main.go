package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"sodavend/internal/domain"
)

var (
	targetURL   string
	concurrency int
	duration    time.Duration
	sodaName    string
)

// Outcomes
var (
	totalRequests uint64
	created201    uint64
	notFound404   uint64
	exhausted409  uint64
	failOther     uint64
)

var sodas = []string{"Cola", "Cola Diet", "Fanta", "Sprite"}

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "Order service base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&sodaName, "soda", "", "Reserve only this soda (default: rotate)")
}

func main() {
	flag.Parse()
	log.Printf("Starting reservation load: workers=%d duration=%s", concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}
	wg.Wait()
	printResults(time.Since(start))
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		soda := sodaName
		if soda == "" {
			soda = sodas[rand.Intn(len(sodas))]
		}
		body, _ := json.Marshal(domain.OrderRequest{Soda: soda})

		resp, err := client.Post(targetURL+"/api/sodaorders", "application/json", bytes.NewReader(body))
		atomic.AddUint64(&totalRequests, 1)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			atomic.AddUint64(&created201, 1)
		case http.StatusNotFound:
			atomic.AddUint64(&notFound404, 1)
		case http.StatusConflict:
			// Pin pool exhausted: every further reservation will fail too.
			atomic.AddUint64(&exhausted409, 1)
			return
		default:
			atomic.AddUint64(&failOther, 1)
		}
	}
}

func printResults(elapsed time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	fmt.Println("--- Results ---")
	fmt.Printf("Elapsed:       %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Requests:      %d (%.1f/s)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("Created (201): %d\n", atomic.LoadUint64(&created201))
	fmt.Printf("No soda (404): %d\n", atomic.LoadUint64(&notFound404))
	fmt.Printf("Pins out(409): %d\n", atomic.LoadUint64(&exhausted409))
	fmt.Printf("Other errors:  %d\n", atomic.LoadUint64(&failOther))
}
