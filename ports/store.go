package ports

import (
	"context"
	"time"

	"github.com/layer-3/walletgate/core"
)

// Store interface for token invalidation
type Store interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}

// AccountStore persists wallet accounts keyed by lowercased address.
// Create returns core.ErrAccountExists on a uniqueness conflict; lookups and
// updates of unknown addresses return core.ErrAccountNotFound.
type AccountStore interface {
	FindByAddress(ctx context.Context, address string) (*core.Account, error)
	Create(ctx context.Context, account *core.Account) error
	UpdateNonce(ctx context.Context, address, nonce string) error
	// RecordLogin sets the last login time and, when nextNonce is not empty,
	// replaces the pending nonce in the same write.
	RecordLogin(ctx context.Context, address string, at time.Time, nextNonce string) error
	UpdateRole(ctx context.Context, address string, role core.Role) error
}

// NoteStore persists notes
type NoteStore interface {
	CreateNote(ctx context.Context, note *core.Note) error
	GetNote(ctx context.Context, ownerID, id string) (*core.Note, error)
	ListNotes(ctx context.Context, ownerID string) ([]core.Note, error)
	UpdateNote(ctx context.Context, note *core.Note) error
	DeleteNote(ctx context.Context, ownerID, id string) error
}

// GrantStore persists private wallet grants keyed by lowercased address
type GrantStore interface {
	CreateGrant(ctx context.Context, grant *core.PrivateWallet) error
	DeleteGrant(ctx context.Context, address string) error
	FindGrant(ctx context.Context, address string) (*core.PrivateWallet, error)
	ListGrants(ctx context.Context) ([]core.PrivateWallet, error)
}
