// Package filter selects chats with expr-lang expressions.
//
// An expression sees the chat's fields as variables (Title, Network,
// AccountID, Type, UnreadCount, IsArchived, IsMuted, IsPinned, LastActivity,
// Participants, ParticipantCount) plus helpers such as hasParticipant,
// isGroup, inactiveDays, daysAgo and contains:
//
//	UnreadCount > 0 and not IsMuted
//	isGroup() and LastActivity < daysAgo(90)
//	Network == "WhatsApp" and hasParticipant("Ada Lovelace")
package filter

import (
	"context"
	"errors"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/beeperdesk/beeper"
)

// Filter is a compiled chat expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables caching of compiled filters with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*Filter](size)
		}
	}
}

// Compiler compiles expressions into filters
type Compiler struct {
	cache *lruCache[*Filter]
}

// NewCompiler creates a new compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile parses and type-checks an expression
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := compileProgram(expression)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{expression: expression, program: program}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// CacheSize returns the number of cached filters
func (c *Compiler) CacheSize() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

var defaultCompiler = NewCompiler(WithCache(64))

// Compile compiles an expression with the shared caching compiler
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Validate reports whether expression compiles
func Validate(expression string) error {
	_, err := Compile(expression)
	return err
}

// Expression returns the source expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against one chat
func (f *Filter) Match(chat beeper.Chat) (bool, error) {
	result, err := expr.Run(f.program, chatEnvironment(chat))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ChatID:     chat.ID,
			ChatTitle:  chat.Title,
			Err:        err,
		}
	}
	return result.(bool), nil
}

// Apply returns the chats that match, in their original order. Chats that
// fail to evaluate are left out and their errors joined into the returned
// error; the matches are still valid in that case.
func (f *Filter) Apply(ctx context.Context, chats []beeper.Chat) ([]beeper.Chat, error) {
	matches := make([]beeper.Chat, 0, len(chats))
	var errs []error

	for _, chat := range chats {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		ok, err := f.Match(chat)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			matches = append(matches, chat)
		}
	}

	return matches, errors.Join(errs...)
}
