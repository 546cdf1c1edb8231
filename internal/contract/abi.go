package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ABIEntry is one ABI entry (function, event, etc.).
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// IsReadFunction returns true if the function is read-only (view/pure).
func (e ABIEntry) IsReadFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction returns true if the function modifies state.
func (e ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "nonpayable" || e.StateMutability == "payable")
}

// IsPayable returns true if the function accepts native currency.
func (e ABIEntry) IsPayable() bool {
	return e.Type == "function" && e.StateMutability == "payable"
}

// Signature returns the canonical signature, e.g. "deposit(uint256)".
func (e ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.Type
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector as 0x-prefixed hex.
func (e ABIEntry) Selector() string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(e.Signature()))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// findFunction finds an ABI function entry by name.
func findFunction(abi []ABIEntry, name string) *ABIEntry {
	for i := range abi {
		if abi[i].Type == "function" && abi[i].Name == name {
			return &abi[i]
		}
	}
	return nil
}

// --- ABI encoding (static types only) ---

// encodeCall builds calldata: 4-byte selector + one 32-byte word per arg.
func encodeCall(fn *ABIEntry, args []string) (string, error) {
	if len(args) != len(fn.Inputs) {
		return "", fmt.Errorf("%s expects %d argument(s), got %d", fn.Signature(), len(fn.Inputs), len(args))
	}

	var encoded strings.Builder
	encoded.WriteString(fn.Selector())

	for i, param := range fn.Inputs {
		enc, err := encodeParam(param.Type, args[i])
		if err != nil {
			return "", fmt.Errorf("encoding param %s: %w", param.Name, err)
		}
		encoded.WriteString(enc)
	}

	return encoded.String(), nil
}

// encodeParam encodes a single ABI parameter value as a 32-byte hex word.
func encodeParam(typ, val string) (string, error) {
	switch {
	case typ == "address":
		if !common.IsHexAddress(val) {
			return "", fmt.Errorf("invalid address: %q", val)
		}
		return fmt.Sprintf("%064s", strings.ToLower(strings.TrimPrefix(common.HexToAddress(val).Hex(), "0x"))), nil

	case strings.HasPrefix(typ, "uint"):
		n := new(big.Int)
		if _, ok := n.SetString(val, 0); !ok {
			return "", fmt.Errorf("invalid integer: %q", val)
		}
		if n.Sign() < 0 {
			return "", fmt.Errorf("negative value for %s: %s", typ, val)
		}
		if n.BitLen() > 256 {
			return "", fmt.Errorf("value overflows %s: %s", typ, val)
		}
		return fmt.Sprintf("%064x", n), nil

	case typ == "bool":
		if val == "true" || val == "1" {
			return fmt.Sprintf("%064d", 1), nil
		}
		return fmt.Sprintf("%064d", 0), nil

	default:
		return "", fmt.Errorf("unsupported ABI type %q", typ)
	}
}

// decodeResult decodes the raw hex result into one string per output.
func decodeResult(fn *ABIEntry, hexData string) ([]string, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(hexData, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding hex result: %w", err)
	}
	if len(data) < 32*len(fn.Outputs) {
		return nil, fmt.Errorf("%s returned %d bytes, want %d", fn.Name, len(data), 32*len(fn.Outputs))
	}

	results := make([]string, 0, len(fn.Outputs))
	for i, out := range fn.Outputs {
		val, err := decodeWord(out.Type, data[i*32:(i+1)*32])
		if err != nil {
			return nil, err
		}
		results = append(results, val)
	}
	return results, nil
}

func decodeWord(typ string, word []byte) (string, error) {
	switch {
	case typ == "address":
		return common.BytesToAddress(word[12:]).Hex(), nil

	case strings.HasPrefix(typ, "uint"):
		return new(big.Int).SetBytes(word).String(), nil

	case typ == "bool":
		if word[31] == 1 {
			return "true", nil
		}
		return "false", nil

	default:
		return "", fmt.Errorf("unsupported ABI output type %q", typ)
	}
}
