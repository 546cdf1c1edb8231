package bridge_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSurface map[string]bridge.Handler

func (s mapSurface) Bind(form string, h bridge.Handler) { s[form] = h }

func TestWireBindsEveryForm(t *testing.T) {
	vault := &fakeVault{balance: big.NewInt(1), beneficiary: beneficiary}
	surface := mapSurface{}
	newBridge(connected(), vault).Wire(surface)

	for _, form := range bridge.Forms {
		require.Contains(t, surface, form)
	}
	assert.Len(t, surface, 4)

	out := newOutput()
	surface[bridge.FormDeposit](context.Background(), "3", out)
	surface[bridge.FormFundGas](context.Background(), "oops", out)
	surface[bridge.FormWithdrawGas](context.Background(), "1", out)
	surface[bridge.FormQuery](context.Background(), alice.Hex(), out)

	assert.Equal(t, []bridge.Notice{
		success(bridge.MsgDepositOK),
		failure(bridge.MsgFundGasFailed),
		success(bridge.MsgWithdrawGasOK),
	}, out.noticeList())
	assert.Equal(t, "Balance: 0.000000000000000001 WBTC", out.displays[bridge.ElementBalance])
}
