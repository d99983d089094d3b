package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/document"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// maxVisits bounds a walk so a cyclic document cannot loop forever.
const maxVisits = 1000

// ErrCyclicWalk is returned when the visit bound trips.
var ErrCyclicWalk = errors.New("prompt: walk exceeded the visit bound, document likely cycles")

// Walker prompts through a document block by block. Error-severity
// failures re-prompt the same block; warnings print and move on.
type Walker struct {
	tree     *document.Tree
	driver   Driver
	resolver *navigation.Resolver
	engine   *validation.Engine
	logger   *slog.Logger
}

// Option customises a Walker.
type Option func(*Walker)

// WithDriver swaps the terminal driver; used by tests.
func WithDriver(driver Driver) Option {
	return func(w *Walker) {
		if driver != nil {
			w.driver = driver
		}
	}
}

// WithLogger injects the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWalker binds a walk to a tree snapshot.
func NewWalker(tree *document.Tree, opts ...Option) *Walker {
	w := &Walker{
		tree:   tree,
		driver: NewSurveyDriver(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.resolver = navigation.NewResolver(tree, navigation.WithLogger(w.logger))
	w.engine = validation.New(validation.WithLogger(w.logger))
	return w
}

// Run walks the document from its first block to submit and returns the
// collected values keyed by field name.
func (w *Walker) Run(ctx context.Context) (map[string]any, error) {
	values := map[string]any{}
	current, ok := w.firstBlock()
	if !ok {
		return values, nil
	}

	for visits := 0; ; visits++ {
		if visits >= maxVisits {
			return values, ErrCyclicWalk
		}
		if err := ctx.Err(); err != nil {
			return values, err
		}

		block, ok := w.tree.Node(current)
		if !ok {
			return values, fmt.Errorf("prompt: block %q vanished mid-walk", current)
		}

		if err := w.ask(ctx, block, values); err != nil {
			return values, err
		}

		res := w.resolver.Next(current, values)
		if res.Terminal {
			return values, nil
		}
		next := res.Target
		if res.IsPage {
			blocks := w.tree.BlockIDs(res.Target)
			if len(blocks) == 0 {
				// An empty page has nothing to ask; fall through to its
				// sequential successor.
				res = w.resolver.Next(res.Target, values)
				if res.Terminal {
					return values, nil
				}
				next = res.Target
			} else {
				next = blocks[0]
			}
		}
		current = next
	}
}

// ask prompts for one block until its error-severity rules pass.
func (w *Walker) ask(ctx context.Context, block document.Node, values map[string]any) error {
	field := block.FieldName
	if field == "" {
		field = block.ID
	}
	message := block.Label
	if message == "" {
		message = block.Name
	}
	if message == "" {
		message = field
	}

	for {
		answer, err := w.driver.Input(ctx, message, "")
		if err != nil {
			return err
		}
		values[field] = answer

		failures := w.engine.EvaluateAll(block.ValidationRules, values[field], values)
		retry := false
		for _, failure := range failures {
			if err := w.driver.Info(ctx, failure.Message); err != nil {
				return err
			}
			if failure.Severity == document.SeverityError {
				retry = true
			}
		}
		if !retry {
			return nil
		}
	}
}

// firstBlock finds the entry point: the first block of the first page.
func (w *Walker) firstBlock() (string, bool) {
	for _, pageID := range w.tree.PageIDs() {
		if blocks := w.tree.BlockIDs(pageID); len(blocks) > 0 {
			return blocks[0], true
		}
	}
	return "", false
}
