package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsarma/boltbot/internal/config"
	"github.com/gsarma/boltbot/internal/godbolt"
)

type fakeProvider struct {
	last godbolt.CompileRequest
}

func (f *fakeProvider) Languages(context.Context) ([]godbolt.Language, error) {
	return []godbolt.Language{{ID: "c", Name: "C"}, {ID: "rust", Name: "Rust"}}, nil
}

func (f *fakeProvider) Compilers(_ context.Context, language string) ([]godbolt.Compiler, error) {
	return []godbolt.Compiler{{ID: "g132", Name: "x86-64 gcc 13.2 (" + language + ")"}}, nil
}

func (f *fakeProvider) Compile(_ context.Context, req godbolt.CompileRequest) (*godbolt.CompileResult, error) {
	f.last = req
	if req.Preset == godbolt.PresetDisassemble {
		return &godbolt.CompileResult{Asm: []godbolt.Fragment{{Text: "main:"}, {Text: "  ret"}}}, nil
	}
	return &godbolt.CompileResult{DidExecute: true, Stdout: []godbolt.Fragment{{Text: "42"}}}, nil
}

func execute(t *testing.T, stdin string, args ...string) (string, *fakeProvider, error) {
	t.Helper()
	t.Setenv("BOLTBOT_CONFIG", "")
	configPath, verbose = "", false

	fake := &fakeProvider{}
	prev := newProvider
	newProvider = func(*config.Config) godbolt.Provider { return fake }
	t.Cleanup(func() { newProvider = prev })

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), fake, err
}

func TestLanguagesCmd(t *testing.T) {
	out, _, err := execute(t, "", "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "**Available Languages**")
	assert.Contains(t, out, "2. rust - Rust")
}

func TestCompilersCmd(t *testing.T) {
	out, _, err := execute(t, "", "compilers", "c", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1. g132 - x86-64 gcc 13.2 (c)")
}

func TestRunCmd_Stdin(t *testing.T) {
	out, fake, err := execute(t, "-O2 ```c\nint main() { return 42; }\n```\n", "run", "g132", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Execution successful. Exit code: `0`")
	assert.Equal(t, "g132", fake.last.Compiler)
	assert.Equal(t, "-O2 ", fake.last.Options.UserArguments)
	assert.Equal(t, "int main() { return 42; }", fake.last.Source)
}

func TestRunCmd_ArgsAfterSeparator(t *testing.T) {
	_, fake, err := execute(t, "", "run", "g132", "--", "-O3", "```c\nint main() {}\n```")
	require.NoError(t, err)
	assert.Equal(t, "-O3 ", fake.last.Options.UserArguments)
}

func TestAsmCmd_Alias(t *testing.T) {
	out, fake, err := execute(t, "", "disas", "g132", "```c\nint main() {}\n```")
	require.NoError(t, err)
	assert.Equal(t, godbolt.PresetDisassemble, fake.last.Preset)
	assert.Contains(t, out, "Compilation successful.\n```\nmain:\n  ret```")
}

func TestRunCmd_MalformedInput(t *testing.T) {
	out, _, err := execute(t, "", "run", "g132", "int main() {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_input")
	assert.Contains(t, out, "Error in formatting. missing opening fence.")
}

func TestConfigFlag_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "--config", "/does/not/exist.yaml", "languages")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
