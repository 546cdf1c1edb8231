// vault-report: queries the vault balance and beneficiary of several
// depositors against every configured RPC endpoint in parallel and prints a
// summary table.
//
// Run from the module root:
//
//	go run ./scripts/vault-report 0xf39F... 0x7099...
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/ethereum/go-ethereum/common"
)

const rpcTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	rpc         string
	depositor   string // short form
	balance     string
	beneficiary string
	err         string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	depositors := os.Args[1:]
	if len(depositors) == 0 {
		fmt.Fprintln(os.Stderr, "usage: vault-report <depositor> [depositor...]")
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	vaultAddr := common.HexToAddress(contract.DefaultVaultAddress)
	if cfg.VaultAddress != "" {
		vaultAddr = common.HexToAddress(cfg.VaultAddress)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, url := range cfg.RPCURLs {
		// Read-only: no accounts, no signer.
		b := bridge.New(nil, contract.NewVault(chain.NewEVMClient(url), vaultAddr, nil))

		for _, depositor := range depositors {
			wg.Add(1)
			go func(url, depositor string) {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
				defer cancel()

				r := result{rpc: url, depositor: ui.TruncateAddr(depositor)}
				res, err := b.Query(ctx, depositor)
				if err != nil {
					r.balance, r.beneficiary = "-", "-"
					r.err = shortErr(err)
				} else {
					r.balance = res.Balance.String()
					r.beneficiary = ui.TruncateAddr(res.Beneficiary.Hex())
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(url, depositor)
		}
	}

	wg.Wait()

	printTable(results)
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.rpc != b.rpc {
			return a.rpc < b.rpc
		}
		return a.depositor < b.depositor
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "RPC\tDEPOSITOR\tBALANCE (WBTC)\tBENEFICIARY\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 12))

	lastRPC := ""
	for _, r := range results {
		if r.rpc != lastRPC {
			if lastRPC != "" {
				fmt.Fprintln(w, "\t\t\t\t") // blank separator between endpoints
			}
			lastRPC = r.rpc
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.rpc, r.depositor, r.balance, r.beneficiary, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortErr(err error) string {
	return truncate(err.Error(), 30)
}

// truncate shortens s to n runes, never splitting a multi-byte character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
