package rpc_test

import (
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: true}
}

func TestParseAlgorithm(t *testing.T) {
	a, err := rpc.ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFastest, a)

	a, err = rpc.ParseAlgorithm("failover")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFailover, a)

	_, err = rpc.ParseAlgorithm("random")
	assert.Error(t, err)
}

func TestPickerSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		healthy("http://slow.rpc", 200*time.Millisecond, 100),
		healthy("http://fast.rpc", 30*time.Millisecond, 100),
		healthy("http://medium.rpc", 80*time.Millisecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		healthy("http://fresh.rpc", 50*time.Millisecond, 1000),
		healthy("http://stale.rpc", 10*time.Millisecond, 990), // 10 blocks behind
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL, "stale node should be discarded even if faster")
}

func TestPickerSkipsUnhealthy(t *testing.T) {
	endpoints := []rpc.Endpoint{
		{URL: "http://down.rpc"},
		healthy("http://up.rpc", 90*time.Millisecond, 5),
	}

	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmRoundRobin, rpc.AlgorithmFailover} {
		winner, err := rpc.NewPicker(algo).Pick(endpoints)
		require.NoError(t, err, algo)
		assert.Equal(t, "http://up.rpc", winner.URL, algo)
	}
}

func TestPickerRoundRobin(t *testing.T) {
	endpoints := []rpc.Endpoint{
		healthy("http://rpc1", 0, 100),
		healthy("http://rpc2", 0, 100),
		healthy("http://rpc3", 0, 100),
	}

	picker := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	var urls []string
	for range 4 {
		e, err := picker.Pick(endpoints)
		require.NoError(t, err)
		urls = append(urls, e.URL)
	}
	assert.Equal(t, []string{"http://rpc1", "http://rpc2", "http://rpc3", "http://rpc1"}, urls)
}

func TestPickerFailoverKeepsOrder(t *testing.T) {
	endpoints := []rpc.Endpoint{
		healthy("http://primary", 300*time.Millisecond, 100),
		healthy("http://backup", 10*time.Millisecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFailover).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://primary", winner.URL)
}

func TestPickerNoneHealthy(t *testing.T) {
	_, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick([]rpc.Endpoint{{URL: "http://a"}, {URL: "http://b"}})
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)

	_, err = rpc.NewPicker(rpc.AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}
