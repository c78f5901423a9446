package codeblock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PrefixLanguageSource(t *testing.T) {
	sub, err := Parse("prefix ```lang\nSOURCE```")
	require.NoError(t, err)
	assert.Equal(t, "prefix ", sub.PrecedingArgs)
	assert.Equal(t, "lang", sub.Language)
	assert.Equal(t, "SOURCE", sub.Source)
}

func TestParse_MultilineSourceKeptVerbatim(t *testing.T) {
	raw := "-O3 -Wall ```cpp\n#include <cstdio>\n\nint main() {\n\tputs(\"hi\");\n}\n```"
	sub, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "-O3 -Wall ", sub.PrecedingArgs)
	assert.Equal(t, "cpp", sub.Language)
	assert.Equal(t, "#include <cstdio>\n\nint main() {\n\tputs(\"hi\");\n}", sub.Source)
}

func TestParse_EmptySource(t *testing.T) {
	sub, err := Parse("```x\n\n```")
	require.NoError(t, err)
	assert.Equal(t, "x", sub.Language)
	assert.Equal(t, "", sub.Source)
	assert.Equal(t, "", sub.PrecedingArgs)
}

func TestParse_LanguageStopsAtNonWordRune(t *testing.T) {
	sub, err := Parse("```c++\nint x;\n```")
	require.NoError(t, err)
	assert.Equal(t, "c", sub.Language)
	// the separator skipped is the first '+'
	assert.Equal(t, "+\nint x;", sub.Source)
}

func TestParse_TextAfterClosingFenceIgnored(t *testing.T) {
	sub, err := Parse("```go\npackage main\n``` trailing words")
	require.NoError(t, err)
	assert.Equal(t, "package main", sub.Source)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{"no fence", "int main() {}", "missing opening fence"},
		{"empty", "", "missing opening fence"},
		{"only opening fence", "-O2 ```c\nint main() {}", "missing closing fence"},
		{"no language", "```\nint main() {}\n```", "missing language tag"},
		{"space before language", "``` c\nint x;\n```", "missing language tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			var mie *MalformedInputError
			require.True(t, errors.As(err, &mie))
			assert.Equal(t, tt.reason, mie.Reason)
		})
	}
}
