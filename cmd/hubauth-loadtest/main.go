package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"

	hubauth "github.com/volunteerhub/hubauth"
	"github.com/volunteerhub/hubauth/internal/backendtest"
)

func main() {
	var (
		workers     = flag.Int("workers", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (steady + storm)")
		baseURL     = flag.String("base-url", "", "target API base URL; if empty, HUBAUTH_BASE_URL or an embedded mock backend is used")
		email       = flag.String("email", "ada@example.org", "login email")
		password    = flag.String("password", "hunter22", "login password")
		expireEvery = flag.Duration("expire-every", 500*time.Millisecond, "how often the storm phase invalidates access tokens (embedded backend only)")
	)
	flag.Parse()

	if *workers <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "workers and ops must be > 0")
		os.Exit(2)
	}

	// Local runs keep HUBAUTH_* settings in a .env file.
	_ = godotenv.Load()

	cfg, err := hubauth.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config from env: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.HTTP.BaseURL = *baseURL
	}

	var backend *backendtest.Server
	if cfg.HTTP.BaseURL == "" || cfg.HTTP.BaseURL == hubauth.DefaultConfig().HTTP.BaseURL {
		backend = backendtest.New()
		defer backend.Close()
		cfg.HTTP.BaseURL = backend.URL()
		fmt.Printf("using embedded mock backend at %s\n", cfg.HTTP.BaseURL)
	} else {
		fmt.Printf("using backend at %s\n", cfg.HTTP.BaseURL)
	}

	client, err := hubauth.New().
		WithConfig(cfg).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()
	if _, err := client.Login(ctx, hubauth.LoginRequest{Email: *email, Password: *password}); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	steady := runPhase(ctx, client, *ops, *workers, nil)

	// The storm phase keeps invalidating tokens while the workers hammer the
	// API, exercising the single-flight refresh under contention.
	var stopStorm func()
	if backend != nil {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(*expireEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					backend.ExpireAccessTokens()
				}
			}
		}()
		stopStorm = func() { close(done) }
	}
	storm := runPhase(ctx, client, *ops, *workers, stopStorm)

	fmt.Println("---- results ----")
	printStats("steady", steady)
	printStats("storm", storm)

	snap := client.MetricsSnapshot()
	fmt.Println("---- client metrics ----")
	fmt.Printf("requests=%d failures=%d unauthorized=%d\n",
		snap.Counters[hubauth.MetricRequest],
		snap.Counters[hubauth.MetricRequestFailure],
		snap.Counters[hubauth.MetricRequestUnauthorized],
	)
	fmt.Printf("refresh started=%d coalesced=%d success=%d failure=%d replays=%d\n",
		snap.Counters[hubauth.MetricRefreshStarted],
		snap.Counters[hubauth.MetricRefreshCoalesced],
		snap.Counters[hubauth.MetricRefreshSuccess],
		snap.Counters[hubauth.MetricRefreshFailure],
		snap.Counters[hubauth.MetricReplay],
	)
}

func runPhase(ctx context.Context, client *hubauth.Client, ops, workers int, stop func()) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				_, err := client.CurrentUserRemote(ctx)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if stop != nil {
		stop()
	}
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
