package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrUnknownEntity is returned when no collection is configured for an entity.
	ErrUnknownEntity = errors.New("no collection configured for entity")
	// ErrStoreUnavailable is returned when the gateway has no database handle.
	ErrStoreUnavailable = errors.New("document store not initialized")
	// ErrNilDocument is returned when asked to insert nothing.
	ErrNilDocument = errors.New("document is nil")
)

// Collections maps logical entity names to the collection that stores them.
// It is built once at startup and never inferred from Go type names.
type Collections map[string]string

// Resolve returns the collection configured for entity.
func (c Collections) Resolve(entity string) (string, error) {
	name, ok := c[entity]
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return name, nil
}

// Names returns the configured collection names.
func (c Collections) Names() []string {
	names := make([]string, 0, len(c))
	for _, name := range c {
		names = append(names, name)
	}
	return names
}

// InsertionError reports a failed insert. It unwraps to the underlying cause.
type InsertionError struct {
	Entity     string
	Collection string
	Err        error
}

func (e *InsertionError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("insert %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("insert %s into %s: %v", e.Entity, e.Collection, e.Err)
}

func (e *InsertionError) Unwrap() error {
	return e.Err
}

// IDocumentStore persists schema-agnostic records.
type IDocumentStore interface {
	// InsertDocument stores document under entity and returns the generated identifier.
	InsertDocument(ctx context.Context, entity string, document interface{}) (string, error)
}

// MongoDocumentStore implements IDocumentStore on a MongoDB database.
type MongoDocumentStore struct {
	db          *mongo.Database
	collections Collections
}

// NewMongoDocumentStore creates a gateway writing to db using the given entity mapping.
func NewMongoDocumentStore(db *mongo.Database, collections Collections) *MongoDocumentStore {
	return &MongoDocumentStore{db: db, collections: collections}
}

// InsertDocument serializes document to BSON and performs a single insert.
// Failures are returned as *InsertionError; nothing is retried.
func (s *MongoDocumentStore) InsertDocument(ctx context.Context, entity string, document interface{}) (string, error) {
	collection, err := s.collections.Resolve(entity)
	if err != nil {
		return "", &InsertionError{Entity: entity, Err: err}
	}
	fail := func(err error) (string, error) {
		return "", &InsertionError{Entity: entity, Collection: collection, Err: err}
	}

	if s.db == nil {
		return fail(ErrStoreUnavailable)
	}
	if document == nil {
		return fail(ErrNilDocument)
	}

	raw, err := bson.Marshal(document)
	if err != nil {
		return fail(fmt.Errorf("serialize document: %w", err))
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, bson.Raw(raw))
	if err != nil {
		return fail(err)
	}
	return idString(res.InsertedID), nil
}

func idString(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
