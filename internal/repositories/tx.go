package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner executes a function within a single transaction boundary. The post
// mutation and its ledger adjustments run under one boundary so a failed
// counter update aborts the post write too, instead of leaving the ledger out
// of step with the live posts.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxRunner runs the function inside a MongoDB session transaction
// spanning the posts and tags collections. Requires the server to be a
// replica set or sharded cluster.
type MongoTxRunner struct {
	client *mongo.Client
}

// NewMongoTxRunner creates a new MongoTxRunner
func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

// RunInTransaction starts a session and runs fn inside a transaction,
// committing on nil and aborting on error. The session context is handed to
// fn so repository calls made with it join the transaction.
func (r *MongoTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
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

// PlainTxRunner executes the function directly, with no transaction. Used
// against standalone MongoDB servers, where a failed ledger step still fails
// the whole operation but the post write is not rolled back.
type PlainTxRunner struct{}

// NewPlainTxRunner creates a new PlainTxRunner
func NewPlainTxRunner() *PlainTxRunner {
	return &PlainTxRunner{}
}

// RunInTransaction runs fn with the caller's context unchanged
func (r *PlainTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
