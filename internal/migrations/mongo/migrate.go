package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotbook/internal/migrations/mongo/validators"
	"slotbook/pkg/logger"
	mongostore "slotbook/pkg/store/mongo"
)

var SnapshotIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "updated_at", Value: -1}}},
}

// RunMigration creates the snapshot collection with its schema validator and
// seeds an empty snapshot at path so the first conditional write has a
// version to compare against.
func RunMigration(ctx context.Context, db *mongo.Database, path string, log *logger.Logger) error {
	log.Info("Running slotbook Mongo migrations", "database", db.Name())

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		mongostore.CollectionName: {
			Indexes:   SnapshotIndexes,
			Validator: validators.ReservationSnapshotValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := seedSnapshot(ctx, db, path, log); err != nil {
		return fmt.Errorf("failed to seed snapshot %s: %w", path, err)
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name)
	return nil
}

func seedSnapshot(ctx context.Context, db *mongo.Database, path string, log *logger.Logger) error {
	res, err := db.Collection(mongostore.CollectionName).UpdateOne(ctx,
		bson.M{"_id": path},
		bson.M{"$setOnInsert": bson.M{
			"slots":      bson.M{},
			"version":    int64(0),
			"updated_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if res.UpsertedCount > 0 {
		log.Info("Seeded empty snapshot", "path", path)
	}
	return nil
}
