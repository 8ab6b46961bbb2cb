// Package allocation hands out globally unique keys (coordinate slots,
// player names) with compare-and-swap claims on the shared store.
package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/repository"
)

const (
	NamespaceCoordinates = "coordinates"
	NamespaceNames       = "names"

	// MaxAttempts bounds ClaimRandom. A galaxy that is nearly full will start
	// returning ErrExhausted long before every slot is taken.
	MaxAttempts = 10

	maxNameLength = 24
)

// Claim is an allocation record. It never changes once committed.
type Claim struct {
	Namespace string          `json:"namespace"`
	Key       string          `json:"key"`
	OwnerID   string          `json:"owner_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ClaimedAt time.Time       `json:"claimed_at"`
}

// Result reports whether a claim committed. Claim is the stored record,
// the caller's on success and the existing holder's otherwise.
type Result struct {
	Committed bool
	Claim     Claim
}

// Allocator claims keys in the allocation namespaces.
type Allocator struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// WithRand sets the random source used to draw candidates.
func WithRand(r *rand.Rand) Option {
	return func(a *Allocator) { a.rng = r }
}

// NewAllocator creates an allocator over store.
func NewAllocator(store repository.Store, logger *slog.Logger, opts ...Option) *Allocator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &Allocator{
		store:  store,
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NormalizeKey validates key for namespace and returns its canonical form.
// Names are case-folded so "Vega" and "vega" collide.
func NormalizeKey(namespace, key string) (string, error) {
	switch namespace {
	case NamespaceCoordinates:
		c, err := galaxy.Parse(key)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return c.String(), nil
	case NamespaceNames:
		name := strings.ToLower(strings.TrimSpace(key))
		if name == "" || utf8.RuneCountInString(name) > maxNameLength || strings.ContainsAny(name, "/\\") {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNamespace, namespace)
	}
}

// Claim stores claim under namespace/key unless the key is already held.
// Losing a race is not an error: Result.Committed is false and Result.Claim
// holds the winner.
func (a *Allocator) Claim(ctx context.Context, namespace, key string, claim Claim) (Result, error) {
	canonical, err := NormalizeKey(namespace, key)
	if err != nil {
		return Result{}, err
	}
	claim.Namespace = namespace
	claim.Key = canonical
	claim.ClaimedAt = a.now().UTC()

	encoded, err := json.Marshal(claim)
	if err != nil {
		return Result{}, fmt.Errorf("encoding claim: %w", err)
	}

	path := repository.ClaimPath(namespace, canonical)
	res, err := a.store.TransactionalUpdate(ctx, path, func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, repository.ErrAbort
		}
		return encoded, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("claiming %s: %w", path, err)
	}

	if res.Committed {
		a.logger.Debug("claim committed", "namespace", namespace, "key", canonical, "owner", claim.OwnerID)
		return Result{Committed: true, Claim: claim}, nil
	}

	var holder Claim
	if err := json.Unmarshal(res.Value, &holder); err != nil {
		return Result{}, fmt.Errorf("decoding claim %s: %w", path, err)
	}
	return Result{Committed: false, Claim: holder}, nil
}

// ClaimRandom draws up to MaxAttempts candidates and claims the first free
// one. A key that lost is never tried again in the same call.
func (a *Allocator) ClaimRandom(ctx context.Context, namespace string, candidate func(*rand.Rand) string, claim Claim) (Result, error) {
	tried := make(map[string]struct{}, MaxAttempts)

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		a.mu.Lock()
		key := candidate(a.rng)
		a.mu.Unlock()

		canonical, err := NormalizeKey(namespace, key)
		if err != nil {
			return Result{}, err
		}
		if _, seen := tried[canonical]; seen {
			continue
		}
		tried[canonical] = struct{}{}

		res, err := a.Claim(ctx, namespace, canonical, claim)
		if err != nil {
			return Result{}, err
		}
		if res.Committed {
			return res, nil
		}
		a.logger.Debug("claim candidate taken", "namespace", namespace, "key", canonical, "attempt", attempt+1)
	}

	a.logger.Warn("allocation exhausted", "namespace", namespace, "attempts", MaxAttempts)
	return Result{}, ErrExhausted
}

// Lookup returns the claim held on namespace/key, if any.
func (a *Allocator) Lookup(ctx context.Context, namespace, key string) (Claim, bool, error) {
	canonical, err := NormalizeKey(namespace, key)
	if err != nil {
		return Claim{}, false, err
	}

	path := repository.ClaimPath(namespace, canonical)
	data, err := a.store.Read(ctx, path)
	if errors.Is(err, repository.ErrNotFound) {
		return Claim{}, false, nil
	}
	if err != nil {
		return Claim{}, false, fmt.Errorf("reading %s: %w", path, err)
	}

	var claim Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return Claim{}, false, fmt.Errorf("decoding claim %s: %w", path, err)
	}
	return claim, true, nil
}

// RandomCoordinate is a ClaimRandom candidate source over the whole galaxy.
func RandomCoordinate(r *rand.Rand) string {
	return galaxy.Random(r).String()
}
