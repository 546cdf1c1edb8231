package config

import "time"

// GasLimitContractCall is the EstimateGas fallback for vault state-change calls.
// It is a conservative upper bound; actual gas used will be lower.
const GasLimitContractCall = uint64(200_000)

// Timeout constants used across cmd and the server.
const (
	RPCSelectTimeout    = 10 * time.Second // RPC benchmark / selection
	TxConfirmTimeout    = 3 * time.Minute  // vault transaction confirmation wait
	ReceiptPollInterval = 2 * time.Second
)

// Environment names.
const (
	EnvPrefix   = "W3VAULT"
	DirEnvVar   = "W3VAULT_CONFIG_DIR"
	Production  = "production"
	Development = "development"
)
