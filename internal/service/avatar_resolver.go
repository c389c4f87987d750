package service

import "context"

// AssetLookup resolves a stored asset URL by key. The cloudinary client
// satisfies this.
type AssetLookup interface {
	AssetURL(ctx context.Context, key string) (string, error)
}

// NewStorageAvatarResolver adapts an asset store into an AvatarResolver,
// keying avatars by student ID number.
func NewStorageAvatarResolver(lookup AssetLookup) AvatarResolver {
	return storageAvatarResolver{lookup: lookup}
}

type storageAvatarResolver struct {
	lookup AssetLookup
}

func (r storageAvatarResolver) ResolveAvatar(ctx context.Context, studentIDNumber string) (string, error) {
	return r.lookup.AssetURL(ctx, studentIDNumber)
}
