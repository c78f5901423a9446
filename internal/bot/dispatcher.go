// Package bot implements the chat command surface on top of the compiler
// service: it parses command text, calls the service once per command and
// renders the reply.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/gsarma/boltbot/internal/codeblock"
	"github.com/gsarma/boltbot/internal/cooldown"
	"github.com/gsarma/boltbot/internal/format"
	"github.com/gsarma/boltbot/internal/godbolt"
	"github.com/gsarma/boltbot/internal/logger"
	"github.com/gsarma/boltbot/internal/paginate"
)

// Config tunes a Dispatcher.
type Config struct {
	Prefix   string
	Cooldown time.Duration
	// GlobalCooldown shares one cooldown bucket between all users
	// instead of keeping one per user.
	GlobalCooldown bool
	MaxConcurrent  int64
	PageSize       int
}

// Invocation is one chat message addressed to the bot.
type Invocation struct {
	User string
	Text string
}

// Dispatcher routes command text to the matching command.
type Dispatcher struct {
	provider godbolt.Provider
	prefix   string
	pageSize int
	limiter  *cooldown.Limiter
	global   bool
	sem      *semaphore.Weighted
}

// New creates a Dispatcher backed by provider.
func New(provider godbolt.Provider, cfg Config) *Dispatcher {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = paginate.DefaultPerPage
	}
	return &Dispatcher{
		provider: provider,
		prefix:   cfg.Prefix,
		pageSize: cfg.PageSize,
		limiter:  cooldown.New(cfg.Cooldown),
		global:   cfg.GlobalCooldown,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Handle runs one invocation. It never fails: every error becomes a reply.
func (d *Dispatcher) Handle(ctx context.Context, inv Invocation) (reply Reply) {
	requestID := uuid.NewString()
	start := time.Now()
	name := ""

	defer func() {
		if r := recover(); r != nil {
			logger.Error("command panicked", "request_id", requestID, "command", name, "panic", r)
			reply = ErrorReply(fmt.Errorf("panic: %v", r))
		}
		reply.RequestID = requestID
		logger.Info("command handled",
			"request_id", requestID,
			"user", inv.User,
			"command", name,
			"status", reply.Status,
			"elapsed", time.Since(start),
		)
	}()

	name, rest := nextField(d.stripPrefix(inv.Text))
	name = strings.ToLower(name)
	if name == "" || name == "help" {
		return Reply{Status: StatusOK, Content: usage}
	}

	if ok, wait := d.limiter.Allow(d.cooldownKey(inv.User)); !ok {
		return cooldownReply(wait)
	}

	reply, err := d.dispatch(ctx, name, rest)
	if err != nil {
		logger.Warn("command failed", "request_id", requestID, "command", name, "error", err)
		return ErrorReply(err)
	}
	return reply
}

func (d *Dispatcher) dispatch(ctx context.Context, name, rest string) (Reply, error) {
	switch name {
	case "languages":
		page, ok := parsePage(rest)
		if !ok {
			return usageReply(fmt.Sprintf("Invalid page %q.", strings.TrimSpace(rest))), nil
		}
		return d.ListLanguages(ctx, page)
	case "compilers":
		language, rest := nextField(rest)
		if language == "" {
			return usageReply("Missing language id."), nil
		}
		page, ok := parsePage(rest)
		if !ok {
			return usageReply(fmt.Sprintf("Invalid page %q.", strings.TrimSpace(rest))), nil
		}
		return d.ListCompilers(ctx, language, page)
	case "run":
		compilerID, raw, ok := splitCompiler(rest)
		if !ok {
			return usageReply("Missing compiler id."), nil
		}
		return d.Run(ctx, compilerID, raw)
	case "asm", "disas", "disassemble", "dissassemble":
		compilerID, raw, ok := splitCompiler(rest)
		if !ok {
			return usageReply("Missing compiler id."), nil
		}
		return d.Disassemble(ctx, compilerID, raw)
	default:
		return usageReply(fmt.Sprintf("Unknown command %q.", name)), nil
	}
}

// ListLanguages renders one page of the language listing.
func (d *Dispatcher) ListLanguages(ctx context.Context, page int) (Reply, error) {
	if err := d.acquire(ctx); err != nil {
		return Reply{}, err
	}
	defer d.sem.Release(1)

	langs, err := d.provider.Languages(ctx)
	if err != nil {
		return Reply{}, err
	}

	entries := make([]string, len(langs))
	for i, l := range langs {
		entries[i] = l.ID + " - " + l.Name
	}
	return d.listing(&paginate.Pages{
		Title:       "Available Languages",
		Description: "Listed id - language. Use the ID for other commands.",
		Entries:     entries,
	}, page), nil
}

// ListCompilers renders one page of the compilers for language.
func (d *Dispatcher) ListCompilers(ctx context.Context, language string, page int) (Reply, error) {
	if err := d.acquire(ctx); err != nil {
		return Reply{}, err
	}
	defer d.sem.Release(1)

	comps, err := d.provider.Compilers(ctx, language)
	if err != nil {
		return Reply{}, err
	}

	entries := make([]string, len(comps))
	for i, c := range comps {
		entries[i] = c.ID + " - " + c.Name
	}
	return d.listing(&paginate.Pages{
		Title:       fmt.Sprintf("Available Compilers (%s)", language),
		Description: "Listed id - compiler name. Use the ID for other commands.",
		Entries:     entries,
	}, page), nil
}

func (d *Dispatcher) listing(p *paginate.Pages, page int) Reply {
	p.PerPage = d.pageSize
	page = p.Clamp(page)
	return Reply{Status: StatusOK, Content: p.Render(page), Page: page, Pages: p.Count()}
}

// Run compiles and executes the code block in raw with compilerID. Text in
// raw before the code block is passed to the compiler as arguments.
func (d *Dispatcher) Run(ctx context.Context, compilerID, raw string) (Reply, error) {
	sub, err := codeblock.Parse(raw)
	if err != nil {
		return ErrorReply(err), nil
	}

	res, err := d.compile(ctx, godbolt.BuildRequest(sub, compilerID, godbolt.PresetExecute))
	if err != nil {
		return Reply{}, err
	}
	return Reply{Status: StatusOK, Content: format.InterpretExecution(res).String()}, nil
}

// Disassemble compiles the code block in raw with compilerID and shows the
// assembly. Arguments before the code block are not forwarded.
func (d *Dispatcher) Disassemble(ctx context.Context, compilerID, raw string) (Reply, error) {
	sub, err := codeblock.Parse(raw)
	if err != nil {
		return ErrorReply(err), nil
	}
	if args := strings.TrimSpace(sub.PrecedingArgs); args != "" {
		logger.Debug("ignoring compiler arguments for disassembly", "compiler", compilerID, "args", args)
	}

	res, err := d.compile(ctx, godbolt.BuildRequest(sub, compilerID, godbolt.PresetDisassemble))
	if err != nil {
		return Reply{}, err
	}
	return Reply{Status: StatusOK, Content: format.InterpretDisassembly(res).String()}, nil
}

func (d *Dispatcher) compile(ctx context.Context, req godbolt.CompileRequest) (*godbolt.CompileResult, error) {
	if err := d.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.sem.Release(1)
	return d.provider.Compile(ctx, req)
}

func (d *Dispatcher) cooldownKey(user string) string {
	if d.global {
		return ""
	}
	return user
}

func (d *Dispatcher) acquire(ctx context.Context) error {
	return d.sem.Acquire(ctx, 1)
}

func (d *Dispatcher) stripPrefix(text string) string {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	if d.prefix == "" || !strings.HasPrefix(text, d.prefix) {
		return text
	}
	// the prefix must be a word of its own: "!godboltx" is not addressed to us
	rest := text[len(d.prefix):]
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && !unicode.IsSpace(r) {
		return text
	}
	return rest
}

// nextField splits off the first whitespace-delimited word of s. The rest
// keeps its inner formatting but loses leading whitespace.
func nextField(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

func splitCompiler(rest string) (compilerID, raw string, ok bool) {
	compilerID, raw = nextField(rest)
	if compilerID == "" || strings.Contains(compilerID, "`") {
		return "", "", false
	}
	return compilerID, raw, true
}

func parsePage(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
