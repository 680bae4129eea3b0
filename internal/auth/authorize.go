package auth

import "shop-api/internal/model"

// Authorize allows access only when the token email equals ownerEmail.
func Authorize(claims *Claims, ownerEmail string) error {
	if claims == nil || ownerEmail == "" || claims.Email != ownerEmail {
		return model.ErrForbidden
	}

	return nil
}
