// Package mongo stores the snapshot as a single document keyed by the store
// path. Writes bump a version field; change streams announce writes, with
// polling as the fallback for deployments without a replica set.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const CollectionName = "Reservation_snapshots"

type document struct {
	ID        string         `bson:"_id"`
	Slots     model.Snapshot `bson:"slots"`
	Version   int64          `bson:"version"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type changeEvent struct {
	FullDocument *document `bson:"fullDocument"`
}

type Store struct {
	coll         *mongo.Collection
	path         string
	pollInterval time.Duration
	log          *logger.Logger
}

func New(db *mongo.Database, path string, pollInterval time.Duration, log *logger.Logger) *Store {
	return &Store{
		coll:         db.Collection(CollectionName),
		path:         path,
		pollInterval: pollInterval,
		log:          log,
	}
}

func (s *Store) Load(ctx context.Context) (store.Versioned, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": s.path}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Versioned{Snapshot: model.Snapshot{}, Version: "0"}, nil
	}
	if err != nil {
		return store.Versioned{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return toVersioned(&doc), nil
}

func (s *Store) Replace(ctx context.Context, snap model.Snapshot) (string, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc document
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": s.path}, update(snap), opts).Decode(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return strconv.FormatInt(doc.Version, 10), nil
}

// ReplaceIfUnchanged filters on the version it was given. Version "0" also
// matches a missing document, which is then created.
func (s *Store) ReplaceIfUnchanged(ctx context.Context, version string, snap model.Snapshot) (string, error) {
	expected, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return "", store.ErrVersionMismatch
	}

	opts := options.FindOneAndUpdate().SetUpsert(expected == 0).SetReturnDocument(options.After)

	var doc document
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": s.path, "version": expected}, update(snap), opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments), mongo.IsDuplicateKeyError(err):
		return "", store.ErrVersionMismatch
	case err != nil:
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return strconv.FormatInt(doc.Version, 10), nil
}

func (s *Store) Subscribe(ctx context.Context) (store.Subscription, error) {
	watchCtx, cancel := context.WithCancel(context.Background())

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"documentKey._id": s.path}}}}
	stream, watchErr := s.coll.Watch(watchCtx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))

	initial, err := s.Load(ctx)
	if err != nil {
		if stream != nil {
			_ = stream.Close(context.Background())
		}
		cancel()
		return nil, err
	}

	feed := store.NewFeed(cancel)
	feed.Push(initial)

	if watchErr != nil {
		s.log.Warn("Change streams unavailable, polling for snapshot changes",
			"collection", CollectionName,
			"poll_interval", s.pollInterval,
			"error", watchErr,
		)
		go s.poll(watchCtx, feed, initial.Version)
		return feed, nil
	}

	go s.follow(watchCtx, stream, feed, initial.Version)
	return feed, nil
}

func (s *Store) follow(ctx context.Context, stream *mongo.ChangeStream, feed *store.Feed, version string) {
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var event changeEvent
		if err := stream.Decode(&event); err != nil {
			s.log.Error("Failed to decode change event", "collection", CollectionName, "error", err)
			continue
		}
		v := store.Versioned{Snapshot: model.Snapshot{}, Version: "0"}
		if event.FullDocument != nil {
			v = toVersioned(event.FullDocument)
		}
		version = v.Version
		feed.Push(v)
	}

	if ctx.Err() != nil {
		return
	}
	s.log.Warn("Change stream ended, falling back to polling", "collection", CollectionName, "error", stream.Err())
	s.poll(ctx, feed, version)
}

func (s *Store) poll(ctx context.Context, feed *store.Feed, version string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v, err := s.Load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("Failed to poll snapshot", "collection", CollectionName, "error", err)
				}
				continue
			}
			if v.Version != version {
				version = v.Version
				feed.Push(v)
			}
		}
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// Close is a no-op; the client belongs to the caller.
func (s *Store) Close() error {
	return nil
}

func update(snap model.Snapshot) bson.M {
	return bson.M{
		"$set": bson.M{"slots": snap.Normalize(), "updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": int64(1)},
	}
}

func toVersioned(doc *document) store.Versioned {
	return store.Versioned{
		Snapshot: doc.Slots.Normalize(),
		Version:  strconv.FormatInt(doc.Version, 10),
	}
}
