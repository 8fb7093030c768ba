package app

import "context"

// CredentialVerifier decodes a signed credential into the user id it was issued for
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, credential string) (string, error)
}

// ProfileStore display names of users
type ProfileStore interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// ProductStore owner lookup of listings
type ProductStore interface {
	SellerOf(ctx context.Context, productID string) (string, error)
}

func displayNames(ctx context.Context, profiles ProfileStore, ids []string) ([]string, error) {
	names := make([]string, len(ids))
	if profiles == nil {
		return names, nil
	}
	for i, id := range ids {
		name, err := profiles.DisplayName(ctx, id)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}
