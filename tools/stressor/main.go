// licita/tools/stressor/main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"rgehrsitz/licita/pkg/broker"
	"rgehrsitz/licita/pkg/logging"
	"rgehrsitz/licita/pkg/rules"
	"rgehrsitz/licita/tools/internal/fakedoc"
)

type stressOptions struct {
	redisAddr string
	rate      int
	count     int
	category  string
	coverage  float64
}

type result struct {
	sent     int64
	received int64
	failed   int64
}

// pending holds the ids this run submitted and has not seen answered.
type pending struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (p *pending) add(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[id] = struct{}{}
}

// take removes id and reports whether it was pending.
func (p *pending) take(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ids[id]; !ok {
		return false
	}
	delete(p.ids, id)
	return true
}

func parseFlags(args []string) (stressOptions, error) {
	fs := flag.NewFlagSet("stressor", flag.ContinueOnError)
	opts := stressOptions{}
	fs.StringVar(&opts.redisAddr, "redis", "localhost:6379", "Redis address")
	fs.IntVar(&opts.rate, "rate", 10, "Documents submitted per second")
	fs.IntVar(&opts.count, "count", 0, "Documents to submit (0 runs until interrupted)")
	fs.StringVar(&opts.category, "category", "", "Category for every document (random when empty)")
	fs.Float64Var(&opts.coverage, "coverage", 0.5, "Probability that each applicable clause is included")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.rate <= 0 {
		return opts, fmt.Errorf("rate must be positive")
	}
	return opts, nil
}

// stress submits synthetic documents at opts.rate and counts the responses
// to them until count documents were answered or ctx is done. Responses to
// other clients on the shared channel are ignored.
func stress(ctx context.Context, b *broker.RedisBroker, opts stressOptions) (result, error) {
	var res result

	responses, err := b.SubscribeResponses(ctx)
	if err != nil {
		return res, err
	}
	defer responses.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ours := &pending{ids: make(map[string]struct{})}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range responses.Channel() {
			resp, err := broker.DecodeResponse(msg.Payload)
			if err != nil || !ours.take(resp.ID) {
				continue
			}
			if resp.Error != "" {
				atomic.AddInt64(&res.failed, 1)
			} else {
				atomic.AddInt64(&res.received, 1)
			}
			if opts.count > 0 && atomic.LoadInt64(&res.received)+atomic.LoadInt64(&res.failed) >= int64(opts.count) {
				cancel()
				return
			}
		}
	}()

	g := fakedoc.New(0, opts.coverage)
	ticker := time.NewTicker(time.Second / time.Duration(opts.rate))
	defer ticker.Stop()

	for opts.count == 0 || res.sent < int64(opts.count) {
		select {
		case <-ctx.Done():
			return snapshot(&res), nil
		case <-ticker.C:
		}

		category := rules.Category(opts.category)
		if category == "" {
			category = g.RandomCategory()
		}
		doc := g.Document(category)
		// Registered before publishing so a fast answer is not missed.
		id := uuid.NewString()
		ours.add(id)
		if _, err := b.Submit(ctx, broker.Request{ID: id, Category: string(category), Text: doc.Text}); err != nil {
			ours.take(id)
			logging.LogError(logging.Logger, err)
			continue
		}
		atomic.AddInt64(&res.sent, 1)
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	return snapshot(&res), nil
}

func snapshot(res *result) result {
	return result{
		sent:     atomic.LoadInt64(&res.sent),
		received: atomic.LoadInt64(&res.received),
		failed:   atomic.LoadInt64(&res.failed),
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := broker.NewRedisBroker(ctx, opts.redisAddr, "", 0, broker.DefaultChannels())
	if err != nil {
		fmt.Printf("Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	fmt.Printf("Connected to Redis at %s\n", opts.redisAddr)
	fmt.Printf("Submitting documents at a rate of %d per second\n", opts.rate)

	start := time.Now()
	res, err := stress(ctx, b, opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sent %d, answered %d, failed %d in %s\n", res.sent, res.received, res.failed, time.Since(start).Round(time.Millisecond))
}
