package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoBackend keeps one collection per resource; the record id is _id.
type MongoBackend struct {
	Database *mongo.Database
}

func ConnectMongo(ctx context.Context, uri, database string) (*MongoBackend, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &MongoBackend{Database: client.Database(database)}, nil
}

func (m *MongoBackend) collection(res Resource) *mongo.Collection {
	return m.Database.Collection(string(res))
}

func (m *MongoBackend) Get(ctx context.Context, res Resource, id string, out any) error {
	err := m.collection(res).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	return err
}

func (m *MongoBackend) List(ctx context.Context, res Resource, filter Filter, out any) error {
	query := bson.M{}
	for k, v := range filter {
		if k == "id" {
			k = "_id"
		}
		query[k] = v
	}
	cursor, err := m.collection(res).Find(ctx, query)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (m *MongoBackend) Create(ctx context.Context, res Resource, record any) error {
	_, err := m.collection(res).InsertOne(ctx, record)
	return err
}

func (m *MongoBackend) Put(ctx context.Context, res Resource, record any) error {
	id, err := recordID(record)
	if err != nil {
		return err
	}
	_, err = m.collection(res).ReplaceOne(ctx, bson.M{"_id": id}, record, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoBackend) Update(ctx context.Context, res Resource, id string, fields map[string]any) error {
	result, err := m.collection(res).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	return nil
}

func (m *MongoBackend) Delete(ctx context.Context, res Resource, id string) error {
	result, err := m.collection(res).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	return nil
}

func (m *MongoBackend) Ping(ctx context.Context) error {
	return m.Database.Client().Ping(ctx, readpref.Primary())
}
