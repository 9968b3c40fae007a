package settings

import "context"

// Repository is the raw key/value contract over the settings table. Each
// value is a JSON document owned by a single key.
type Repository interface {
	// Get retrieves a raw setting value; ok is false when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores a raw setting value, replacing any previous one
	Set(ctx context.Context, key, value string) error
}
