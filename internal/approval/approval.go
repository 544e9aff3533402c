// Package approval gates sandbox execution on a human look at the generated
// code. Non-interactive sessions auto-deny unless the run was started with
// an explicit bypass flag.
package approval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type Result struct {
	Approved   bool
	UserAction string
}

// Prompt describes one pending execution.
type Prompt struct {
	Query string
	Code  string
	Model string
}

// Options steer how the gate behaves.
type Options struct {
	// AutoApprove skips the prompt entirely (the --yes flag).
	AutoApprove bool

	// In and Out default to stdin/stderr; tests substitute buffers.
	In  io.Reader
	Out io.Writer

	// Interactive overrides terminal detection when non-nil.
	Interactive *bool
}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask shows the generated code and waits for a verdict.
func Ask(p Prompt, opts Options) Result {
	if opts.AutoApprove {
		return Result{Approved: true, UserAction: "auto_approve_flag"}
	}

	interactive := IsInteractive()
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}
	if !interactive {
		return Result{Approved: false, UserAction: "auto_deny_non_interactive"}
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "The model generated the following analysis code:")
	fmt.Fprintln(out, "")
	for _, line := range strings.Split(strings.TrimRight(p.Code, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "Question: %s\n", p.Query)
	if p.Model != "" {
		fmt.Fprintf(out, "Model:    %s\n", p.Model)
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	fmt.Fprintln(out, "  [a] Approve - run this code in the sandbox")
	fmt.Fprintln(out, "  [d] Deny - skip execution")
	fmt.Fprintln(out, "")

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{Approved: false, UserAction: "error_reading_input"}
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "a", "approve", "yes", "y":
			return Result{Approved: true, UserAction: "approve_once"}
		case "d", "deny", "no", "n":
			return Result{Approved: false, UserAction: "deny"}
		default:
			fmt.Fprintln(out, "Invalid input. Please enter 'a' to approve or 'd' to deny.")
		}
	}
}
