// Package rpc benchmarks the configured JSON-RPC endpoints and picks the one
// the vault client should talk to.
package rpc

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// ParseAlgorithm validates an algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown RPC algorithm %q (want fastest, round-robin or failover)", s)
	}
}

// Endpoint is one RPC URL with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool
	Err         error
}

// Picker selects an endpoint according to its algorithm. It is safe for
// concurrent use; round-robin state is the only thing it remembers.
type Picker struct {
	algo    Algorithm
	mu      sync.Mutex
	rrIndex int
}

// NewPicker creates a Picker for algo.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick chooses among benchmarked endpoints. Unhealthy and stale endpoints are
// never chosen.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	candidates := fresh(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		p.mu.Lock()
		defer p.mu.Unlock()
		e := candidates[p.rrIndex%len(candidates)]
		p.rrIndex = (p.rrIndex + 1) % len(candidates)
		return e, nil
	case AlgorithmFailover:
		// candidates keep configuration order.
		return candidates[0], nil
	default:
		winner := candidates[0]
		for _, e := range candidates[1:] {
			if e.Latency < winner.Latency {
				winner = e
			}
		}
		return winner, nil
	}
}

// fresh returns healthy endpoints within staleBlockThreshold of the best block,
// in their original order.
func fresh(endpoints []Endpoint) []*Endpoint {
	var best uint64
	for _, e := range endpoints {
		if e.Healthy && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}

	var out []*Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy || best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
