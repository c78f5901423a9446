package godbolt

import "github.com/gsarma/boltbot/internal/codeblock"

// Preset selects one of the two fixed request configurations.
type Preset int

const (
	// PresetExecute compiles and runs the program.
	PresetExecute Preset = iota
	// PresetDisassemble compiles to annotated assembly without running.
	PresetDisassemble
)

func (p Preset) String() string {
	switch p {
	case PresetExecute:
		return "execute"
	case PresetDisassemble:
		return "disassemble"
	default:
		return "unknown"
	}
}

// CompilerOptions is the "compilerOptions" object of a compile request.
type CompilerOptions struct {
	SkipAsm         *bool `json:"skipAsm,omitempty"`
	ExecutorRequest bool  `json:"executorRequest"`
}

// Filters is the "filters" object of a compile request. Nil fields are
// left to the service default.
type Filters struct {
	Binary      *bool `json:"binary,omitempty"`
	CommentOnly *bool `json:"commentOnly,omitempty"`
	Demangle    *bool `json:"demangle,omitempty"`
	Directives  *bool `json:"directives,omitempty"`
	Execute     bool  `json:"execute"`
	Intel       *bool `json:"intel,omitempty"`
	Labels      *bool `json:"labels,omitempty"`
	LibraryCode *bool `json:"libraryCode,omitempty"`
	Trim        *bool `json:"trim,omitempty"`
}

// Options is the "options" object of a compile request.
type Options struct {
	CompilerOptions CompilerOptions `json:"compilerOptions"`
	Filters         Filters         `json:"filters"`
	UserArguments   string          `json:"userArguments"`
	Tools           []string        `json:"tools"`
	Libraries       []string        `json:"libraries"`
}

// CompileRequest is the body of POST /api/compiler/{id}/compile.
type CompileRequest struct {
	Source              string  `json:"source"`
	Compiler            string  `json:"compiler"`
	Lang                string  `json:"lang"`
	Options             Options `json:"options"`
	AllowStoreCodeDebug bool    `json:"allowStoreCodeDebug"`

	// Preset decides which response schema the client expects.
	Preset Preset `json:"-"`
}

// NewOptions returns the fixed options for preset. userArgs is only used
// by PresetExecute; disassembly never forwards compiler arguments.
func NewOptions(preset Preset, userArgs string) Options {
	if preset == PresetDisassemble {
		return Options{
			CompilerOptions: CompilerOptions{
				SkipAsm:         flag(false),
				ExecutorRequest: false,
			},
			Filters: Filters{
				Binary:      flag(false),
				CommentOnly: flag(true),
				Demangle:    flag(true),
				Directives:  flag(true),
				Execute:     false,
				Intel:       flag(true),
				Labels:      flag(true),
				LibraryCode: flag(false),
				Trim:        flag(false),
			},
			Tools:     []string{},
			Libraries: []string{},
		}
	}
	return Options{
		CompilerOptions: CompilerOptions{ExecutorRequest: true},
		Filters:         Filters{Execute: true},
		UserArguments:   userArgs,
		Tools:           []string{},
		Libraries:       []string{},
	}
}

// BuildRequest shapes a parsed submission into a compile request for compilerID.
func BuildRequest(sub codeblock.Submission, compilerID string, preset Preset) CompileRequest {
	return CompileRequest{
		Source:   sub.Source,
		Compiler: compilerID,
		Lang:     sub.Language,
		Options:  NewOptions(preset, sub.PrecedingArgs),
		Preset:   preset,
	}
}

func flag(b bool) *bool {
	return &b
}
