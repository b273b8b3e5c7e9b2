// Package engine drives incremental compilation for one expression
// node: it owns the last good graph, recompiles on source changes, and
// hands minimal edit scripts to a materializer.
package engine

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/delta"
	"github.com/gonodes/exprgraph/expr"
	"github.com/gonodes/exprgraph/ir"
)

// State tracks how far the current source has progressed through the
// pipeline.
type State uint8

const (
	StateUninitialized State = iota
	StateParsed
	StateTypeResolved
	StateSynthesized
	StateApplied
	StateErrored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateParsed:
		return "parsed"
	case StateTypeResolved:
		return "type_resolved"
	case StateSynthesized:
		return "synthesized"
	case StateApplied:
		return "applied"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Materializer applies an edit script to a live node tree. The engine
// never talks to the host editor directly; this is the only boundary.
type Materializer interface {
	Apply(script *delta.Script) error
}

// ErrApplyInProgress is returned when Compile is re-entered while a
// materializer callback is still running.
var ErrApplyInProgress = errors.New("engine: apply already in progress")

// Config configures a compile unit.
type Config struct {
	Flavor   catalog.Flavor
	MaxDepth int `validate:"gte=0,lte=4096"`
	Inputs   []expr.InputDecl
	Logger   zerolog.Logger
}

var validate = validator.New()

func (c *Config) check() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("engine: invalid config: %w", err)
	}
	if !c.Flavor.Valid() {
		return fmt.Errorf("engine: invalid flavor %d", c.Flavor)
	}
	for _, in := range c.Inputs {
		if !validIdent(in.Name) {
			return fmt.Errorf("engine: invalid input name %q", in.Name)
		}
		if in.Type == ir.TypeUnknown {
			return fmt.Errorf("engine: input %q has no type", in.Name)
		}
	}
	return nil
}

func validIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// Unit is one expression node's compile state. All methods are safe
// for concurrent use.
type Unit struct {
	id  uuid.UUID
	cfg Config
	env *expr.Environment
	log zerolog.Logger

	mu       sync.Mutex
	state    State
	lastHash [sha256.Size]byte
	baseline *ir.Graph
	pending  *ir.Graph
	applying bool
}

// New creates a compile unit.
func New(cfg Config) (*Unit, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	env := expr.NewEnvironment()
	for _, in := range cfg.Inputs {
		if err := env.Declare(in.Name, in.Type); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	id := uuid.New()
	return &Unit{
		id:    id,
		cfg:   cfg,
		env:   env,
		log:   cfg.Logger.With().Str("unit", id.String()).Str("flavor", cfg.Flavor.String()).Logger(),
		state: StateUninitialized,
	}, nil
}

// ID returns the unit's identifier.
func (u *Unit) ID() uuid.UUID { return u.id }

// State returns the current pipeline state.
func (u *Unit) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Baseline returns the last successfully applied graph, or nil.
func (u *Unit) Baseline() *ir.Graph {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.baseline
}

// SetBaseline seeds the unit with a previously persisted graph so the
// first recompile diffs against it instead of rebuilding.
func (u *Unit) SetBaseline(g *ir.Graph) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.baseline = g
	if g != nil {
		u.state = StateApplied
	}
}

// Compile runs the pipeline on source and, if mat is non-nil, applies
// the resulting edit script. Unchanged source that already applied
// short-circuits to an empty script.
//
// On any failure the previous baseline is retained untouched, so the
// live node tree keeps showing the last good result.
func (u *Unit) Compile(source string, mat Materializer) (*delta.Script, error) {
	u.mu.Lock()
	if u.applying {
		u.mu.Unlock()
		return nil, ErrApplyInProgress
	}

	hash := sha256.Sum256([]byte(source))
	if hash == u.lastHash && u.state == StateApplied {
		u.mu.Unlock()
		u.log.Debug().Msg("source unchanged, skipping compile")
		return &delta.Script{}, nil
	}

	script, err := u.compileLocked(source)
	if err != nil {
		u.state = StateErrored
		u.mu.Unlock()
		u.log.Debug().Err(err).Msg("compile failed")
		return nil, err
	}
	graph := u.pending

	if mat != nil {
		// The lock is dropped around the callback so it can observe
		// the unit, but the applying flag rejects re-entrant compiles.
		u.applying = true
		u.mu.Unlock()
		err := mat.Apply(script)
		u.mu.Lock()
		u.applying = false
		if err != nil {
			u.state = StateErrored
			u.mu.Unlock()
			u.log.Debug().Err(err).Msg("apply failed, baseline retained")
			return nil, fmt.Errorf("engine: apply: %w", err)
		}
	}

	u.baseline = graph
	u.lastHash = hash
	u.state = StateApplied
	u.mu.Unlock()
	u.log.Debug().Str("edits", script.Summary()).Int("nodes", graph.NodeCount()).Msg("applied")
	return script, nil
}

// compileLocked runs the pipeline stage by stage, advancing the state
// as each stage succeeds. The produced graph lands in u.pending so
// Compile commits it only after the materializer succeeds.
func (u *Unit) compileLocked(source string) (*delta.Script, error) {
	script, err := expr.NewParser(source, u.cfg.MaxDepth).Parse()
	if err != nil {
		return nil, err
	}
	u.state = StateParsed

	if err := expr.ResolveScript(script, u.env, u.cfg.Flavor, source); err != nil {
		return nil, err
	}
	u.state = StateTypeResolved

	graph, err := expr.Synthesize(script, u.env, u.cfg.Flavor)
	if err != nil {
		return nil, err
	}
	u.state = StateSynthesized

	u.pending = graph
	return delta.Diff(u.baseline, graph), nil
}
