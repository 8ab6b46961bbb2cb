package repository

import "context"

// Entry is a stored value with its path and write version.
type Entry struct {
	Path    string
	Value   []byte
	Version int64
}

// UpdateResult reports the outcome of a TransactionalUpdate.
// Value holds the stored value after the call, whether or not it committed.
type UpdateResult struct {
	Committed bool
	Value     []byte
}

// UpdateFunc computes the next value from the current one. current is nil
// when nothing is stored. Returning ErrAbort leaves the key untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// Txn is a multi-key unit of work handed to Store.Atomic. Writes are
// buffered and applied only when the callback returns nil.
type Txn interface {
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Entry, error)
	Put(path string, value []byte)
	Delete(path string)
}

// Store is the hierarchical key-value store the engine persists to.
type Store interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, value []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]Entry, error)
	Keys(ctx context.Context, prefix string) ([]string, error)

	// TransactionalUpdate applies fn to the value at path with compare-and-swap
	// semantics. A lost race re-runs fn against the fresh value.
	TransactionalUpdate(ctx context.Context, path string, fn UpdateFunc) (UpdateResult, error)

	// BatchUpdate writes every path in one atomic step. A nil value deletes.
	BatchUpdate(ctx context.Context, writes map[string][]byte) error

	// Atomic runs fn in an optimistic multi-key transaction, retrying it
	// when a read key changed before commit.
	Atomic(ctx context.Context, fn func(txn Txn) error) error
}
