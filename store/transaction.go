package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner runs a function inside one atomic write scope. Repositories
// called with the context it passes down participate in the same
// transaction.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type sessionRunner struct {
	client *mongo.Client
}

// NewTxnRunner returns a session-backed runner when useTransactions is set,
// otherwise a pass-through runner. Against a standalone mongod the
// pass-through still preserves the stock invariant: decrements are
// conditional single-document updates and the workflow compensates on
// failure.
func NewTxnRunner(client *mongo.Client, useTransactions bool) TxnRunner {
	if useTransactions {
		return &sessionRunner{client: client}
	}
	return passthroughRunner{}
}

func (r *sessionRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

type passthroughRunner struct{}

func (passthroughRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
