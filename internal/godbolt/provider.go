package godbolt

import "context"

// Fragment is one line of output as returned by the compiler service.
type Fragment struct {
	Text string `json:"text"`
}

// Language is an entry of GET /api/languages.
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Compiler is an entry of GET /api/compilers/{language}.
type Compiler struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lang string `json:"lang,omitempty"`
}

// BuildResult is the compile step of an execution request that never ran.
type BuildResult struct {
	Stdout []Fragment `json:"stdout"`
	Stderr []Fragment `json:"stderr"`
	Code   int        `json:"code"`
}

// CompileResult is the response of POST /api/compiler/{id}/compile.
// Execution requests populate DidExecute and either the top-level streams
// or BuildResult; disassembly requests populate Code and Asm or Stderr.
type CompileResult struct {
	DidExecute  bool         `json:"didExecute"`
	Code        int          `json:"code"`
	Stdout      []Fragment   `json:"stdout"`
	Stderr      []Fragment   `json:"stderr"`
	Asm         []Fragment   `json:"asm"`
	BuildResult *BuildResult `json:"buildResult,omitempty"`
}

// Provider is the remote compiler service as seen by the command dispatcher.
type Provider interface {
	Languages(ctx context.Context) ([]Language, error)
	Compilers(ctx context.Context, language string) ([]Compiler, error)
	Compile(ctx context.Context, req CompileRequest) (*CompileResult, error)
}
