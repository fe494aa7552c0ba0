package postprocess

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/hybridrag/core"
)

// DefaultMaxChars is the default context budget in characters.
const DefaultMaxChars = 3000

// Strategy selects the single ranking path a query goes through.
type Strategy int

const (
	// StrategyHybrid ranks by alpha-weighted fusion, then deduplicates and truncates.
	StrategyHybrid Strategy = iota

	// StrategyRerank ranks semantically (alpha forced to 1), then
	// deduplicates, reranks by keyword overlap and truncates.
	StrategyRerank
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyHybrid:
		return "hybrid"
	case StrategyRerank:
		return "rerank"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a configuration name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "hybrid":
		return StrategyHybrid, nil
	case "rerank":
		return StrategyRerank, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", core.ErrInvalidParameter, name)
	}
}

// Processor applies the post-ranking stages for one strategy.
type Processor struct {
	strategy Strategy
	maxChars int
	logger   *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithStrategy selects the ranking strategy.
// Default is StrategyHybrid.
func WithStrategy(strategy Strategy) Option {
	return func(p *Processor) error {
		if strategy != StrategyHybrid && strategy != StrategyRerank {
			return fmt.Errorf("%w: unknown strategy %d", core.ErrInvalidParameter, int(strategy))
		}
		p.strategy = strategy
		return nil
	}
}

// WithMaxChars sets the context budget.
// Default is DefaultMaxChars.
func WithMaxChars(maxChars int) Option {
	return func(p *Processor) error {
		if maxChars < 0 {
			return fmt.Errorf("%w: maxChars %d is negative", core.ErrInvalidParameter, maxChars)
		}
		p.maxChars = maxChars
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewProcessor creates a processor.
func NewProcessor(opts ...Option) (*Processor, error) {
	p := &Processor{
		strategy: StrategyHybrid,
		maxChars: DefaultMaxChars,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Strategy returns the configured strategy.
func (p *Processor) Strategy() Strategy {
	return p.strategy
}

// MaxChars returns the configured context budget.
func (p *Processor) MaxChars() int {
	return p.maxChars
}

// SearchAlpha returns the fusion weight the search should use. Under
// StrategyRerank the search is purely semantic regardless of alpha.
func (p *Processor) SearchAlpha(alpha float64) float64 {
	if p.strategy == StrategyRerank {
		return 1.0
	}
	return alpha
}

// Process runs the stages for the configured strategy. query is only used
// by StrategyRerank.
func (p *Processor) Process(chunks []core.ScoredChunk, query string) []core.ScoredChunk {
	out := Deduplicate(chunks)
	if p.strategy == StrategyRerank {
		out = Rerank(out, query)
	}
	out = Truncate(out, p.maxChars)

	p.logger.Debug("post-processed chunks",
		"strategy", p.strategy.String(),
		"in", len(chunks),
		"out", len(out))
	return out
}
