package bridge

import "context"

// Form names bound by Wire.
const (
	FormDeposit     = "deposit"
	FormFundGas     = "fundGas"
	FormWithdrawGas = "withdrawGas"
	FormQuery       = "query"
)

// Display elements written by a successful query.
const (
	ElementBalance     = "balance"
	ElementBeneficiary = "beneficiary"
)

// Forms lists every form in page order.
var Forms = []string{FormDeposit, FormFundGas, FormWithdrawGas, FormQuery}

// Level is the severity of a Notice.
type Level int

const (
	LevelSuccess Level = iota
	LevelFailure
)

func (l Level) String() string {
	if l == LevelSuccess {
		return "success"
	}
	return "failure"
}

// Notice is a modal message shown to the user after an action.
type Notice struct {
	Level   Level
	Message string
}

// Output is where a handler reports back to the surface that invoked it.
type Output interface {
	Notify(Notice)
	Display(element, text string)
}

// Handler serves one form submission.
type Handler func(ctx context.Context, input string, out Output)

// Surface is a UI that can route form submissions to handlers.
type Surface interface {
	Bind(form string, h Handler)
}

// Wire binds the four vault forms of b to s.
func (b *Bridge) Wire(s Surface) {
	s.Bind(FormDeposit, func(ctx context.Context, input string, out Output) {
		_ = b.Deposit(ctx, input, out)
	})
	s.Bind(FormFundGas, func(ctx context.Context, input string, out Output) {
		_ = b.FundGas(ctx, input, out)
	})
	s.Bind(FormWithdrawGas, func(ctx context.Context, input string, out Output) {
		_ = b.WithdrawGas(ctx, input, out)
	})
	s.Bind(FormQuery, func(ctx context.Context, input string, out Output) {
		_ = b.QueryDeposit(ctx, input, out)
	})
}

// Discard is an Output that drops everything.
var Discard Output = discard{}

type discard struct{}

func (discard) Notify(Notice) {}

func (discard) Display(string, string) {}
