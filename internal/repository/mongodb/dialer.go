package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Dialer hands out the files collection for the duration of one repository call.
// The returned release func must be called exactly once, on every exit path.
type Dialer interface {
	Dial(ctx context.Context) (*mongo.Collection, func(context.Context), error)
}

// PerCallDialer opens a new client for every call and disconnects it on release.
type PerCallDialer struct {
	opts       *options.ClientOptions
	database   string
	collection string
	log        *zap.Logger
}

// NewPerCallDialer returns a Dialer that connects with opts on every Dial.
func NewPerCallDialer(opts *options.ClientOptions, database, collection string, log *zap.Logger) *PerCallDialer {
	return &PerCallDialer{opts: opts, database: database, collection: collection, log: log}
}

// Dial connects a fresh client.
func (d *PerCallDialer) Dial(ctx context.Context) (*mongo.Collection, func(context.Context), error) {
	cli, err := mongo.Connect(ctx, d.opts)
	if err != nil {
		return nil, nil, err
	}
	release := func(ctx context.Context) {
		if err := cli.Disconnect(context.WithoutCancel(ctx)); err != nil {
			d.log.Warn("mongo_disconnect_failed", zap.Error(err))
		}
	}
	return cli.Database(d.database).Collection(d.collection), release, nil
}

// SharedDialer reuses one pooled client; release is a no-op because the
// driver returns pooled connections as soon as each operation finishes.
type SharedDialer struct {
	coll *mongo.Collection
}

// NewSharedDialer returns a Dialer backed by an already connected client.
func NewSharedDialer(cli *mongo.Client, database, collection string) *SharedDialer {
	return &SharedDialer{coll: cli.Database(database).Collection(collection)}
}

// Dial returns the shared collection handle.
func (d *SharedDialer) Dial(context.Context) (*mongo.Collection, func(context.Context), error) {
	return d.coll, func(context.Context) {}, nil
}
