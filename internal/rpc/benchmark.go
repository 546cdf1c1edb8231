package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/chain"
)

// Pinger measures a single endpoint.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, uint64, error)
}

// PingerFunc builds a Pinger for a URL.
type PingerFunc func(url string) Pinger

// DefaultPinger pings over JSON-RPC with chain.EVMClient.
func DefaultPinger(url string) Pinger { return chain.NewEVMClient(url) }

// Benchmark pings every URL in parallel and returns one Endpoint per URL in
// input order.
func Benchmark(ctx context.Context, urls []string, newPinger PingerFunc) []Endpoint {
	if newPinger == nil {
		newPinger = DefaultPinger
	}

	endpoints := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			latency, block, err := newPinger(u).Ping(ctx)
			endpoints[idx] = Endpoint{
				URL:         u,
				Latency:     latency,
				BlockNumber: block,
				Healthy:     err == nil,
				Err:         err,
			}
		}(i, url)
	}
	wg.Wait()
	return endpoints
}

// Select returns the URL to use. A single URL is returned without probing.
func Select(ctx context.Context, urls []string, algo Algorithm, newPinger PingerFunc) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	winner, err := NewPicker(algo).Pick(Benchmark(ctx, urls, newPinger))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
