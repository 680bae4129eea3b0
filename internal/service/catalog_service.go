package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-api/internal/model"
	"shop-api/pkg/apierror"
)

type documentStore interface {
	Find(ctx context.Context, filter bson.M) ([]model.Document, error)
	FindByID(ctx context.Context, id string) (model.Document, error)
	Insert(ctx context.Context, doc model.Document) (primitive.ObjectID, error)
	DeleteByID(ctx context.Context, id string, scope bson.M) (int64, error)
}

// CatalogService serves one read-mostly collection such as products or
// flash-sale items.
type CatalogService struct {
	store documentStore
	kind  string
}

func NewCatalogService(store documentStore, kind string) *CatalogService {
	return &CatalogService{store: store, kind: kind}
}

func (s *CatalogService) List(ctx context.Context) ([]model.Document, error) {
	return s.store.Find(ctx, bson.M{})
}

func (s *CatalogService) Get(ctx context.Context, id string) (model.Document, error) {
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err, id)
	}
	return doc, nil
}

func (s *CatalogService) Create(ctx context.Context, doc model.Document) (primitive.ObjectID, error) {
	if len(doc) == 0 {
		return primitive.NilObjectID, apierror.BadRequest(s.kind+" body is required", "")
	}
	return s.store.Insert(ctx, doc)
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteByID(ctx, id, nil)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apierror.NotFound(s.kind+" not found", id)
	}
	return nil
}

func (s *CatalogService) notFound(err error, id string) error {
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NotFound(s.kind+" not found", id)
	}
	return err
}
