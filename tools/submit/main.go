// licita/tools/submit/main.go

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"rgehrsitz/licita/pkg/broker"
	"rgehrsitz/licita/pkg/document"
)

type submitOptions struct {
	redisAddr string
	file      string
	category  string
	timeout   time.Duration
}

func parseFlags(args []string) (submitOptions, error) {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	opts := submitOptions{}
	fs.StringVar(&opts.redisAddr, "redis", "localhost:6379", "Redis address")
	fs.StringVar(&opts.file, "file", "", "Document to submit")
	fs.StringVar(&opts.category, "category", "", "Procurement category")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "How long to wait for the report")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.file == "" {
		return opts, fmt.Errorf("-file is required")
	}
	return opts, nil
}

// submit extracts the document text, publishes it and waits for the report.
func submit(ctx context.Context, b *broker.RedisBroker, opts submitOptions) (broker.Response, error) {
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return broker.Response{}, err
	}
	text, err := document.ExtractText(opts.file, data)
	if err != nil {
		return broker.Response{}, err
	}

	responses, err := b.SubscribeResponses(ctx)
	if err != nil {
		return broker.Response{}, err
	}
	defer responses.Close()

	id, err := b.Submit(ctx, broker.Request{Category: opts.category, Text: text})
	if err != nil {
		return broker.Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	return broker.AwaitResponse(ctx, responses, id)
}

func printResponse(w io.Writer, resp broker.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	b, err := broker.NewRedisBroker(ctx, opts.redisAddr, "", 0, broker.DefaultChannels())
	if err != nil {
		fmt.Printf("Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	resp, err := submit(ctx, b, opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := printResponse(os.Stdout, resp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if resp.Error != "" {
		os.Exit(1)
	}
}
