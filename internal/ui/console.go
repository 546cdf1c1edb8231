package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
)

// Console is a bridge.Output that prints notices and display updates as lines.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole writes to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Notify prints the notice in its level's colour.
func (c *Console) Notify(n bridge.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, Notice(n))
}

// Display prints the element text; addresses in the text keep their own colour.
func (c *Console) Display(element, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if element == bridge.ElementBeneficiary {
		fmt.Fprintln(c.out, "  "+Addr(text))
		return
	}
	fmt.Fprintln(c.out, "  "+Val(text))
}
