package ledger

import "context"

// Store persists the ledger. Implementations must make Update atomic with
// respect to other Update and Write calls on the same backend.
type Store interface {
	Read(ctx context.Context) (*Ledger, error)
	Write(ctx context.Context, l *Ledger) error
	// Update reads the ledger, applies fn and writes the result back when
	// fn reports a change. Nothing is written if fn returns an error.
	Update(ctx context.Context, fn func(l *Ledger) (bool, error)) error
}
