// Package format turns compiler service results into chat replies.
package format

import (
	"fmt"
	"strings"

	"github.com/gsarma/boltbot/internal/godbolt"
)

const (
	// DefaultLimit caps stdout and stderr blocks.
	DefaultLimit = 500
	// AsmLimit caps disassembly output blocks.
	AsmLimit = 1500
	// Empty replaces a block with no fragments.
	Empty = "EMPTY"
)

const (
	StatusExecuted       = "Execution successful"
	StatusCompiled       = "Compilation successful"
	StatusCompileFailed  = "Compilation failed"
	failedStatusMarkdown = "**" + StatusCompileFailed + "**"
)

// CodeBlock joins the fragment texts with newlines, keeps the first limit
// characters and fences the result. No fragments yields "".
func CodeBlock(frags []godbolt.Fragment, limit int) string {
	if len(frags) == 0 {
		return ""
	}
	lines := make([]string, len(frags))
	for i, f := range frags {
		lines[i] = f.Text
	}
	return "```\n" + truncate(strings.Join(lines, "\n"), limit) + "```"
}

// truncate keeps the first limit runes of s.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func orEmpty(s string) string {
	if s == "" {
		return Empty
	}
	return s
}

// Execution is the interpreted outcome of an execute request.
type Execution struct {
	Status   string
	ExitCode int
	Stdout   string
	Stderr   string
}

// InterpretExecution picks the run streams when the program executed and
// the build streams otherwise.
func InterpretExecution(res *godbolt.CompileResult) Execution {
	if res.DidExecute {
		return Execution{
			Status:   StatusExecuted,
			ExitCode: res.Code,
			Stdout:   orEmpty(CodeBlock(res.Stdout, DefaultLimit)),
			Stderr:   orEmpty(CodeBlock(res.Stderr, DefaultLimit)),
		}
	}
	var build godbolt.BuildResult
	if res.BuildResult != nil {
		build = *res.BuildResult
	}
	return Execution{
		Status:   StatusCompileFailed,
		ExitCode: build.Code,
		Stdout:   orEmpty(CodeBlock(build.Stdout, DefaultLimit)),
		Stderr:   orEmpty(CodeBlock(build.Stderr, DefaultLimit)),
	}
}

// String renders the reply sent back to the user.
func (e Execution) String() string {
	return fmt.Sprintf("%s. Exit code: `%d`\nstdout:\n%s\nstderr:\n%s",
		markStatus(e.Status), e.ExitCode, e.Stdout, e.Stderr)
}

// Disassembly is the interpreted outcome of a disassemble request.
type Disassembly struct {
	Status string
	Output string
}

// InterpretDisassembly shows the assembly on exit code 0 and the compiler
// diagnostics otherwise.
func InterpretDisassembly(res *godbolt.CompileResult) Disassembly {
	if res.Code == 0 {
		return Disassembly{Status: StatusCompiled, Output: orEmpty(CodeBlock(res.Asm, AsmLimit))}
	}
	return Disassembly{Status: StatusCompileFailed, Output: orEmpty(CodeBlock(res.Stderr, AsmLimit))}
}

func (d Disassembly) String() string {
	return fmt.Sprintf("%s.\n%s", markStatus(d.Status), d.Output)
}

func markStatus(status string) string {
	if status == StatusCompileFailed {
		return failedStatusMarkdown
	}
	return status
}
