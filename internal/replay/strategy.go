package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/memkit/alloc"
)

// ErrUnknownStrategy is returned by ParseStrategy and New.
var ErrUnknownStrategy = errors.New("replay: unknown strategy")

// Strategy names one of the four allocators.
type Strategy string

const (
	Linear   Strategy = "linear"
	Stack    Strategy = "stack"
	Pool     Strategy = "pool"
	FreeList Strategy = "freelist"
)

// Strategies lists every valid Strategy in display order.
var Strategies = []Strategy{Linear, Stack, Pool, FreeList}

// ParseStrategy accepts a strategy name case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Strategies {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Config selects and sizes the allocator a Runner drives.
type Config struct {
	Strategy Strategy

	// Capacity is the region size for linear, stack and freelist.
	Capacity int

	// BlockSize and BlockCount size the pool.
	BlockSize  int
	BlockCount int

	// Options is passed through to the allocator constructor.
	Options *alloc.Options
}

// target adapts the allocators to one surface. Pool ignores size and
// alignment beyond checking that the request fits a block.
type target interface {
	allocate(size, alignment int) (alloc.Ref, error)
	free(ref alloc.Ref)
	reset()
	stats() alloc.Stats
	close() error
}

type arenaTarget struct {
	a alloc.Arena
}

func (t arenaTarget) allocate(size, alignment int) (alloc.Ref, error) {
	ref, _, err := t.a.Allocate(size, alignment)
	return ref, err
}

// free forwards to Deallocate when the arena has one. Linear has none, so the
// request is dropped and the bytes come back on the next reset.
func (t arenaTarget) free(ref alloc.Ref) {
	if f, ok := t.a.(alloc.Freer); ok {
		f.Deallocate(ref)
	}
}

func (t arenaTarget) reset() { t.a.Reset() }
func (t arenaTarget) stats() alloc.Stats { return t.a.Stats() }
func (t arenaTarget) close() error { return t.a.Close() }

type poolTarget struct {
	p *alloc.PoolAllocator
}

func (t poolTarget) allocate(size, alignment int) (alloc.Ref, error) {
	if size > t.p.BlockSize() {
		return 0, fmt.Errorf("%w: %d bytes exceeds block size %d", alloc.ErrInvalidSize, size, t.p.BlockSize())
	}
	ref, _, err := t.p.Allocate()
	return ref, err
}

func (t poolTarget) free(ref alloc.Ref) { t.p.Deallocate(ref) }
func (t poolTarget) reset() { t.p.Reset() }
func (t poolTarget) stats() alloc.Stats { return t.p.Stats() }
func (t poolTarget) close() error { return t.p.Close() }

// build constructs the allocator named by cfg.
func build(cfg Config) (target, *alloc.StackAllocator, error) {
	switch cfg.Strategy {
	case Linear:
		a, err := alloc.NewLinear(cfg.Capacity, cfg.Options)
		if err != nil {
			return nil, nil, err
		}
		return arenaTarget{a}, nil, nil
	case Stack:
		a, err := alloc.NewStack(cfg.Capacity, cfg.Options)
		if err != nil {
			return nil, nil, err
		}
		return arenaTarget{a}, a, nil
	case Pool:
		p, err := alloc.NewPool(cfg.BlockSize, cfg.BlockCount, cfg.Options)
		if err != nil {
			return nil, nil, err
		}
		return poolTarget{p}, nil, nil
	case FreeList:
		a, err := alloc.NewFreeList(cfg.Capacity, cfg.Options)
		if err != nil {
			return nil, nil, err
		}
		return arenaTarget{a}, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Strategy)
	}
}
