package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-api/internal/auth"
	"shop-api/internal/model"
	"shop-api/pkg/apierror"
)

// OrderService scopes every order operation to the email in the caller's token.
type OrderService struct {
	store documentStore
}

func NewOrderService(store documentStore) *OrderService {
	return &OrderService{store: store}
}

func (s *OrderService) ListForOwner(ctx context.Context, claims *auth.Claims, email string) ([]model.Document, error) {
	if err := auth.Authorize(claims, email); err != nil {
		return nil, err
	}
	return s.store.Find(ctx, bson.M{model.OwnerField: email})
}

// Create stores doc for the caller. An order without an email is attributed
// to the caller; an order naming someone else is forbidden.
func (s *OrderService) Create(ctx context.Context, claims *auth.Claims, doc model.Document) (primitive.ObjectID, error) {
	if len(doc) == 0 {
		return primitive.NilObjectID, apierror.BadRequest("order body is required", "")
	}

	owner, err := orderOwner(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if owner == "" && claims != nil {
		owner = claims.Email
	}
	doc[model.OwnerField] = owner

	if err := auth.Authorize(claims, owner); err != nil {
		return primitive.NilObjectID, err
	}
	return s.store.Insert(ctx, doc)
}

// Delete removes an order only when it belongs to the caller. Orders owned by
// others are reported as not found.
func (s *OrderService) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	if claims == nil {
		return model.ErrForbidden
	}

	deleted, err := s.store.DeleteByID(ctx, id, bson.M{model.OwnerField: claims.Email})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apierror.NotFound("order not found", id)
	}
	return nil
}

func orderOwner(doc model.Document) (string, error) {
	raw, ok := doc[model.OwnerField]
	if !ok || raw == nil {
		return "", nil
	}

	owner, ok := raw.(string)
	if !ok {
		return "", apierror.BadRequest("order email must be a string", model.OwnerField)
	}
	return strings.TrimSpace(owner), nil
}
