package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-api/internal/model"
)

// DocumentRepository stores schemaless documents in a single collection.
type DocumentRepository struct {
	collection *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database, collection string) *DocumentRepository {
	return &DocumentRepository{collection: db.Collection(collection)}
}

func (r *DocumentRepository) Name() string {
	return r.collection.Name()
}

func (r *DocumentRepository) Find(ctx context.Context, filter bson.M) ([]model.Document, error) {
	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.Name(), err)
	}

	docs := make([]model.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Name(), err)
	}
	return docs, nil
}

func (r *DocumentRepository) FindOne(ctx context.Context, filter bson.M) (model.Document, error) {
	var doc model.Document
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", r.Name(), err)
	}
	return doc, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (model.Document, error) {
	filter, err := IDFilter(id, nil)
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, filter)
}

// Insert stores doc and returns the generated ObjectID. Any client-supplied
// _id is discarded.
func (r *DocumentRepository) Insert(ctx context.Context, doc model.Document) (primitive.ObjectID, error) {
	stored := make(model.Document, len(doc)+1)
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		stored[k] = v
	}
	id := primitive.NewObjectID()
	stored["_id"] = id

	if _, err := r.collection.InsertOne(ctx, stored); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", r.Name(), err)
	}
	return id, nil
}

func (r *DocumentRepository) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.Name(), err)
	}
	return res.DeletedCount, nil
}

// DeleteByID removes the document with the given hex id. scope narrows the
// match further, e.g. to the owning email.
func (r *DocumentRepository) DeleteByID(ctx context.Context, id string, scope bson.M) (int64, error) {
	filter, err := IDFilter(id, scope)
	if err != nil {
		return 0, err
	}
	return r.DeleteOne(ctx, filter)
}

// IDFilter builds an _id equality filter from a 24-character hex id.
func IDFilter(id string, scope bson.M) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}

	filter := bson.M{"_id": oid}
	for k, v := range scope {
		filter[k] = v
	}
	return filter, nil
}
