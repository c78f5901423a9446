// Package codeblock extracts a fenced code block from free-form chat text.
//
// A submission looks like
//
//	-O2 -Wall ```c
//	int main() { return 0; }
//	```
//
// where everything before the opening fence is passed through as compiler
// arguments and the word right after the fence names the language.
package codeblock

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const fence = "```"

// Submission is a parsed chat submission.
type Submission struct {
	Language      string
	PrecedingArgs string
	Source        string
}

// MalformedInputError reports why a submission could not be parsed.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// Parse splits raw into its preceding arguments, language tag and source.
func Parse(raw string) (Submission, error) {
	open := strings.Index(raw, fence)
	if open < 0 {
		return Submission{}, &MalformedInputError{Reason: "missing opening fence"}
	}
	bodyStart := open + len(fence)

	rel := strings.Index(raw[bodyStart:], fence)
	if rel < 0 {
		return Submission{}, &MalformedInputError{Reason: "missing closing fence"}
	}
	body := raw[bodyStart : bodyStart+rel]

	langEnd := wordPrefixLen(body)
	if langEnd == 0 {
		return Submission{}, &MalformedInputError{Reason: "missing language tag"}
	}

	// skip the single separator after the tag, usually '\n'
	source := body[langEnd:]
	if _, size := utf8.DecodeRuneInString(source); size > 0 {
		source = source[size:]
	}
	// the newline before the closing fence belongs to the fence line
	source = strings.TrimSuffix(source, "\n")

	return Submission{
		Language:      body[:langEnd],
		PrecedingArgs: raw[:open],
		Source:        source,
	}, nil
}

// wordPrefixLen returns the byte length of the leading run of letters,
// digits and underscores in s.
func wordPrefixLen(s string) int {
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return i
		}
	}
	return len(s)
}
