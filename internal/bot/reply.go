package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gsarma/boltbot/internal/codeblock"
	"github.com/gsarma/boltbot/internal/godbolt"
)

// Status classifies a reply for hosts that need more than the text.
type Status string

const (
	StatusOK          Status = "ok"
	StatusBadInput    Status = "bad_input"
	StatusCooldown    Status = "cooldown"
	StatusUnavailable Status = "unavailable"
	StatusInternal    Status = "internal_error"
)

// Reply is what the host sends back to the user.
type Reply struct {
	RequestID string `json:"request_id"`
	Status    Status `json:"status"`
	Content   string `json:"content"`
	Page      int    `json:"page,omitempty"`
	Pages     int    `json:"pages,omitempty"`
}

const formatHint = "Put the source in a code block: ```<language>\\n<source>\\n```"

// ErrorReply converts any command error into a user-facing reply.
func ErrorReply(err error) Reply {
	var mie *codeblock.MalformedInputError
	var rse *godbolt.RemoteServiceError
	switch {
	case errors.As(err, &mie):
		return Reply{Status: StatusBadInput, Content: fmt.Sprintf("Error in formatting. %s.\n%s", mie.Reason, formatHint)}
	case errors.As(err, &rse):
		return Reply{Status: StatusUnavailable, Content: "Compiler service unavailable: " + rse.Error()}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Reply{Status: StatusUnavailable, Content: "Compiler service unavailable: request timed out"}
	default:
		return Reply{Status: StatusInternal, Content: "Internal error, the command was not completed."}
	}
}

func usageReply(msg string) Reply {
	content := usage
	if msg != "" {
		content = msg + "\n\n" + usage
	}
	return Reply{Status: StatusBadInput, Content: content}
}

func cooldownReply(wait time.Duration) Reply {
	wait = wait.Round(100 * time.Millisecond)
	if wait <= 0 {
		wait = 100 * time.Millisecond
	}
	return Reply{Status: StatusCooldown, Content: fmt.Sprintf("Slow down! Try again in %s.", wait)}
}

var usage = "Commands:\n" +
	"  languages [page] - list language ids\n" +
	"  compilers <language> [page] - list compiler ids for a language\n" +
	"  run <compiler> [args] ```<language>\\n<source>\\n``` - compile and execute\n" +
	"  asm <compiler> ```<language>\\n<source>\\n``` - show the assembly (aliases: disas, disassemble)"
