// internal/app/store/kv/mongo.go
package kv

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on a single MongoDB collection, one document per
// key. The key is stored as _id, so point lookups and prefix scans ride
// the primary index and stay in key order. Only single-document operations
// are used; the Store contract exposes nothing transactional.
type Mongo struct {
	c *mongo.Collection
}

type kvDoc struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// NewMongo returns a Store backed by the named collection.
func NewMongo(db *mongo.Database, collection string) *Mongo {
	return &Mongo{c: db.Collection(collection)}
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDoc
	err := m.c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (m *Mongo) Put(ctx context.Context, key string, value []byte) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.c.ReplaceOne(ctx, bson.M{"_id": key}, kvDoc{Key: key, Value: value}, opts)
	return err
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.c.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *Mongo) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	filter := bson.M{}
	if prefix != "" {
		// [prefix, prefix+0xFF) covers every key that starts with prefix.
		filter["_id"] = bson.M{"$gte": prefix, "$lt": prefix + "\xff"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []Entry
	for cur.Next(ctx) {
		var doc kvDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: doc.Key, Value: doc.Value})
	}
	return entries, cur.Err()
}
