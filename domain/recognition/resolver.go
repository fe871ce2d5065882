package recognition

import (
	"context"
	"fmt"
	"image"

	"poke-battle-logger/domain/battle"
)

// Result is the outcome of one identification strategy: either a resolved
// name or unresolved
type Result struct {
	name     string
	resolved bool
}

// Resolved wraps a successfully identified name
func Resolved(name string) Result {
	return Result{name: name, resolved: true}
}

// Unresolved reports that a strategy could not identify the crop
var Unresolved = Result{}

// Get returns the name and whether the strategy resolved it
func (r Result) Get() (string, bool) {
	return r.name, r.resolved
}

// Resolver is one identification strategy
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, crop image.Image) (Result, error)
}

// UnknownSink stores crops nobody could identify so a person can label them.
// It is write-only for the pipeline.
type UnknownSink interface {
	Save(ctx context.Context, kind string, crop image.Image) (string, error)
}

// Identity is the final answer for one crop
type Identity struct {
	Name    string
	Unknown bool
	// Source names the strategy that resolved it, or the saved crop path when unknown
	Source string
	// Failures collects strategy errors that were skipped over
	Failures []error
}

// Chain tries its resolvers in order and stops at the first resolved result.
// When every resolver fails the crop goes to the sink and the identity is unknown.
type Chain struct {
	kind      string
	resolvers []Resolver
	sink      UnknownSink
}

// NewChain creates a chain for one kind of crop ("pokemon", "name_window")
func NewChain(kind string, sink UnknownSink, resolvers ...Resolver) *Chain {
	return &Chain{kind: kind, resolvers: resolvers, sink: sink}
}

// Identify runs the chain. Strategy errors never abort it; only a failing
// sink is returned as an error.
func (c *Chain) Identify(ctx context.Context, crop image.Image) (Identity, error) {
	var failures []error
	for _, r := range c.resolvers {
		res, err := r.Resolve(ctx, crop)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		if name, ok := res.Get(); ok {
			return Identity{Name: battle.LabelName(name), Source: r.Name(), Failures: failures}, nil
		}
	}

	id := Identity{Name: battle.UnknownPokemon, Unknown: true, Failures: failures}
	if c.sink == nil {
		return id, nil
	}
	path, err := c.sink.Save(ctx, c.kind, crop)
	if err != nil {
		return id, fmt.Errorf("failed to save unknown %s crop: %w", c.kind, err)
	}
	id.Source = path
	return id, nil
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc struct {
	Label string
	Fn    func(ctx context.Context, crop image.Image) (Result, error)
}

// Name implements Resolver
func (f ResolverFunc) Name() string { return f.Label }

// Resolve implements Resolver
func (f ResolverFunc) Resolve(ctx context.Context, crop image.Image) (Result, error) {
	return f.Fn(ctx, crop)
}
