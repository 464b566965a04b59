package session

import "context"

// Repository persists the single console session under the "auth" key.
// Load returns serviceerr.ErrNoSession when nothing is stored or the stored
// value is unparseable. Delete of an absent session is not an error.
type Repository interface {
	Load(ctx context.Context) (Session, error)
	Store(ctx context.Context, session Session) error
	Delete(ctx context.Context) error
}
