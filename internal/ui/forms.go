package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	tea "github.com/charmbracelet/bubbletea"
)

// formDef describes how one form is presented in the terminal.
type formDef struct {
	name  string
	label string
	hint  string
}

var formDefs = []formDef{
	{bridge.FormDeposit, "Deposit", "amount in WBTC, e.g. 1.5"},
	{bridge.FormFundGas, "Fund gas", "amount in ETH, e.g. 0.01"},
	{bridge.FormWithdrawGas, "Withdraw gas", "amount in ETH"},
	{bridge.FormQuery, "Query depositor", "0x address"},
}

// FormSurface is the terminal surface: the four vault forms on one screen.
// Bind handlers, then Run.
type FormSurface struct {
	handlers map[string]bridge.Handler
	warning  string
	vault    string
}

// FormOption configures a FormSurface.
type FormOption func(*FormSurface)

// WithFormWarning shows a persistent banner above the forms.
func WithFormWarning(msg string) FormOption {
	return func(s *FormSurface) { s.warning = msg }
}

// WithFormVault shows the vault address in the header.
func WithFormVault(addr string) FormOption {
	return func(s *FormSurface) { s.vault = addr }
}

// NewFormSurface creates an empty terminal surface.
func NewFormSurface(opts ...FormOption) *FormSurface {
	s := &FormSurface{handlers: make(map[string]bridge.Handler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind implements bridge.Surface.
func (s *FormSurface) Bind(form string, h bridge.Handler) {
	s.handlers[form] = h
}

// Model returns the Bubble Tea model; handlers run with ctx.
func (s *FormSurface) Model(ctx context.Context) FormModel {
	fields := make([]formField, len(formDefs))
	for i, def := range formDefs {
		fields[i] = formField{def: def}
	}
	return FormModel{
		ctx:      ctx,
		handlers: s.handlers,
		fields:   fields,
		displays: make(map[string]string),
		warning:  s.warning,
		vault:    s.vault,
	}
}

// Run shows the forms until the user quits.
func (s *FormSurface) Run(ctx context.Context, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(s.Model(ctx), opts...).Run(); err != nil {
		return fmt.Errorf("terminal surface: %w", err)
	}
	return nil
}

type formField struct {
	def   formDef
	value string
}

// submissionDoneMsg carries what a handler reported once it returns.
type submissionDoneMsg struct {
	form     string
	notices  []bridge.Notice
	displays [][2]string
}

// collectOutput buffers a handler's output; the model applies it on completion.
type collectOutput struct {
	notices  []bridge.Notice
	displays [][2]string
}

func (o *collectOutput) Notify(n bridge.Notice) { o.notices = append(o.notices, n) }

func (o *collectOutput) Display(element, text string) {
	o.displays = append(o.displays, [2]string{element, text})
}

// FormModel is the Bubble Tea model behind FormSurface. Every submission
// runs as its own tea.Cmd, so several may be in flight at once.
type FormModel struct {
	ctx      context.Context
	handlers map[string]bridge.Handler
	fields   []formField
	focus    int
	displays map[string]string
	modal    []bridge.Notice
	pending  int
	warning  string
	vault    string
}

func (m FormModel) Init() tea.Cmd { return nil }

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submissionDoneMsg:
		m.pending--
		for _, d := range msg.displays {
			m.displays[d[0]] = d[1]
		}
		m.modal = append(m.modal, msg.notices...)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if len(m.modal) > 0 {
			switch msg.String() {
			case "enter", "esc", " ":
				m.modal = m.modal[1:]
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m FormModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.fields)
	case "shift+tab", "up":
		m.focus = (m.focus + len(m.fields) - 1) % len(m.fields)
	case "backspace":
		v := []rune(m.fields[m.focus].value)
		if len(v) > 0 {
			m.fields[m.focus].value = string(v[:len(v)-1])
		}
	case "ctrl+u":
		m.fields[m.focus].value = ""
	case "enter":
		return m.submit()
	default:
		if msg.Type == tea.KeyRunes {
			m.fields[m.focus].value += string(msg.Runes)
		}
	}
	return m, nil
}

func (m FormModel) submit() (tea.Model, tea.Cmd) {
	field := m.fields[m.focus]
	h, ok := m.handlers[field.def.name]
	if !ok {
		return m, nil
	}
	m.pending++
	ctx, form, input := m.ctx, field.def.name, field.value
	return m, func() tea.Msg {
		out := &collectOutput{}
		h(ctx, input, out)
		return submissionDoneMsg{form: form, notices: out.notices, displays: out.displays}
	}
}

func (m FormModel) View() string {
	var sb strings.Builder
	sb.WriteString(Banner() + "\n")
	if m.vault != "" {
		sb.WriteString(Meta("vault "+m.vault) + "\n")
	}
	if m.warning != "" {
		sb.WriteString(Warn(m.warning) + "\n")
	}
	sb.WriteString("\n")

	for i, f := range m.fields {
		body := StyleValue.Render(f.def.label) + "\n"
		if i == m.focus {
			body += "> " + f.value + "█"
			sb.WriteString(StyleFocused.Render(body) + "\n")
		} else {
			if f.value == "" {
				body += Meta(f.def.hint)
			} else {
				body += f.value
			}
			sb.WriteString(StyleBorder.Render(body) + "\n")
		}
	}

	for _, el := range []string{bridge.ElementBalance, bridge.ElementBeneficiary} {
		if text, ok := m.displays[el]; ok {
			sb.WriteString("  " + Val(text) + "\n")
		}
	}
	if m.pending > 0 {
		sb.WriteString(Warn(fmt.Sprintf("%d submission(s) in flight", m.pending)) + "\n")
	}

	if len(m.modal) > 0 {
		n := m.modal[0]
		border := ColorSuccess
		if n.Level == bridge.LevelFailure {
			border = ColorError
		}
		sb.WriteString("\n" + StyleModal.BorderForeground(border).Render(Notice(n)+"\n\n"+Meta("Enter to dismiss")) + "\n")
	}

	sb.WriteString("\n" + Meta("[ Tab/↑↓ ] switch form   [ Enter ] submit   [ Esc ] quit") + "\n")
	return sb.String()
}

// Value returns the current text of form.
func (m FormModel) Value(form string) string {
	for _, f := range m.fields {
		if f.def.name == form {
			return f.value
		}
	}
	return ""
}

// Focused returns the name of the focused form.
func (m FormModel) Focused() string { return m.fields[m.focus].def.name }

// Notices returns the notices waiting to be dismissed, oldest first.
func (m FormModel) Notices() []bridge.Notice { return append([]bridge.Notice(nil), m.modal...) }

// Display returns the text of a display element.
func (m FormModel) Display(element string) string { return m.displays[element] }

// Pending returns the number of submissions still running.
func (m FormModel) Pending() int { return m.pending }
