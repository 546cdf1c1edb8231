package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm writes a yes/no question to out and reads one line from in.
// Returns true for "y" or "yes"; anything else, including EOF, is no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", StyleWarning.Render(prompt))
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
