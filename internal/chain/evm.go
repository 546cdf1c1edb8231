package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

var (
	// ErrReverted is returned by WaitForReceipt when the mined transaction failed.
	ErrReverted = errors.New("transaction reverted")
	// ErrNoBaseFee is returned by BaseFee when the latest block predates London.
	ErrNoBaseFee = errors.New("latest block has no base fee")
)

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url          string
	client       *http.Client
	pollInterval time.Duration
	nextID       atomic.Int64
}

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash        string
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Option configures an EVMClient.
type Option func(*EVMClient)

// WithPollInterval sets how often WaitForReceipt polls for a receipt.
func WithPollInterval(d time.Duration) Option {
	return func(c *EVMClient) { c.pollInterval = d }
}

// WithHTTPClient replaces the default HTTP client (15s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *EVMClient) { c.client = hc }
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string, opts ...Option) *EVMClient {
	c := &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		pollInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint this client talks to.
func (c *EVMClient) URL() string { return c.url }

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.callQuantity(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callQuantity(ctx, "eth_chainId")
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callQuantity(ctx, "eth_gasPrice")
}

// MaxPriorityFee returns the node's suggested priority fee (tip) per gas.
func (c *EVMClient) MaxPriorityFee(ctx context.Context) (*big.Int, error) {
	return c.callQuantity(ctx, "eth_maxPriorityFeePerGas")
}

// BaseFee returns the base fee per gas of the latest block.
func (c *EVMClient) BaseFee(ctx context.Context) (*big.Int, error) {
	var block *struct {
		BaseFeePerGas string `json:"baseFeePerGas"`
	}
	if err := c.call(ctx, &block, "eth_getBlockByNumber", "latest", false); err != nil {
		return nil, err
	}
	if block == nil {
		return nil, ErrNoBaseFee
	}
	fee, ok := parseBigHex(block.BaseFeePerGas)
	if !ok {
		return nil, ErrNoBaseFee
	}
	return fee, nil
}

// PendingNonce returns the transaction count including queued transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, address string) (uint64, error) {
	n, err := c.callQuantity(ctx, "eth_getTransactionCount", address, "pending")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// EstimateGas estimates gas for a transaction.
func (c *EVMClient) EstimateGas(ctx context.Context, from, to, data string, value *big.Int) (uint64, error) {
	n, err := c.callQuantity(ctx, "eth_estimateGas", txParams(from, to, data, value))
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// CallContract executes a read-only call against toAddr and returns the raw hex result.
func (c *EVMClient) CallContract(ctx context.Context, toAddr, calldata string) (string, error) {
	var out string
	if err := c.call(ctx, &out, "eth_call", txParams("", toAddr, calldata, nil), "latest"); err != nil {
		return "", err
	}
	return out, nil
}

// SendRawTransaction broadcasts a signed raw transaction and returns its hash.
func (c *EVMClient) SendRawTransaction(ctx context.Context, rawTx string) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", rawTx); err != nil {
		return "", err
	}
	return hash, nil
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash string) (*TxReceipt, error) {
	var r *struct {
		Status      string `json:"status"`
		BlockNumber string `json:"blockNumber"`
		GasUsed     string `json:"gasUsed"`
	}
	if err := c.call(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}

	receipt := &TxReceipt{Hash: hash}
	if s, ok := parseBigHex(r.Status); ok {
		receipt.Status = s.Uint64()
	}
	if bn, ok := parseBigHex(r.BlockNumber); ok {
		receipt.BlockNumber = bn.Uint64()
	}
	if gu, ok := parseBigHex(r.GasUsed); ok {
		receipt.GasUsed = gu.Uint64()
	}
	return receipt, nil
}

// WaitForReceipt polls until the transaction is mined, ctx is done or timeout
// expires. A mined but reverted transaction returns the receipt and ErrReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*TxReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("transaction %s not mined within %s: %w", hash, timeout, ctx.Err())
			}
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash)
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined within %s: %w", hash, timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (c *EVMClient) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response (HTTP %d): %w", resp.StatusCode, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

// callQuantity calls a method whose result is a hex-encoded quantity.
func (c *EVMClient) callQuantity(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	var hexStr string
	if err := c.call(ctx, &hexStr, method, params...); err != nil {
		return nil, err
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return nil, fmt.Errorf("could not parse %s result: %q", method, hexStr)
	}
	return n, nil
}

func txParams(from, to, data string, value *big.Int) map[string]string {
	params := map[string]string{"to": to}
	if from != "" {
		params["from"] = from
	}
	if data != "" {
		params["data"] = data
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = "0x" + value.Text(16)
	}
	return params
}

func parseBigHex(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 16)
}
