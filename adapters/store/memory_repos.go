package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/layer-3/walletgate/core"
)

// MemoryAccountStore keeps accounts in a map keyed by lowercased address.
// Records are copied in and out so callers never share state with the store.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]core.Account
}

// NewMemoryAccountStore creates an empty account store
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]core.Account)}
}

func (s *MemoryAccountStore) FindByAddress(ctx context.Context, address string) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[core.NormalizeAddress(address)]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return &acc, nil
}

func (s *MemoryAccountStore) Create(ctx context.Context, account *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := core.NormalizeAddress(account.WalletAddress)
	if _, exists := s.accounts[key]; exists {
		return core.ErrAccountExists
	}
	acc := *account
	acc.WalletAddress = key
	s.accounts[key] = acc
	return nil
}

func (s *MemoryAccountStore) UpdateNonce(ctx context.Context, address, nonce string) error {
	return s.update(address, func(acc *core.Account) {
		acc.PendingNonce = nonce
	})
}

func (s *MemoryAccountStore) RecordLogin(ctx context.Context, address string, at time.Time, nextNonce string) error {
	return s.update(address, func(acc *core.Account) {
		t := at
		acc.LastLogin = &t
		if nextNonce != "" {
			acc.PendingNonce = nextNonce
		}
	})
}

func (s *MemoryAccountStore) UpdateRole(ctx context.Context, address string, role core.Role) error {
	return s.update(address, func(acc *core.Account) {
		acc.Role = role
	})
}

func (s *MemoryAccountStore) update(address string, fn func(acc *core.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := core.NormalizeAddress(address)
	acc, ok := s.accounts[key]
	if !ok {
		return core.ErrAccountNotFound
	}
	fn(&acc)
	acc.UpdatedAt = time.Now()
	s.accounts[key] = acc
	return nil
}

// MemoryNoteStore keeps notes in a map keyed by note id
type MemoryNoteStore struct {
	mu    sync.RWMutex
	notes map[string]core.Note
}

// NewMemoryNoteStore creates an empty note store
func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{notes: make(map[string]core.Note)}
}

func (s *MemoryNoteStore) CreateNote(ctx context.Context, note *core.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes[note.ID] = *note
	return nil
}

func (s *MemoryNoteStore) GetNote(ctx context.Context, ownerID, id string) (*core.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, core.ErrNoteNotFound
	}
	return &note, nil
}

// ListNotes returns the owner's notes, newest first
func (s *MemoryNoteStore) ListNotes(ctx context.Context, ownerID string) ([]core.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]core.Note, 0)
	for _, n := range s.notes {
		if n.OwnerID == ownerID {
			notes = append(notes, n)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

func (s *MemoryNoteStore) UpdateNote(ctx context.Context, note *core.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[note.ID]
	if !ok || existing.OwnerID != note.OwnerID {
		return core.ErrNoteNotFound
	}
	s.notes[note.ID] = *note
	return nil
}

func (s *MemoryNoteStore) DeleteNote(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[id]
	if !ok || existing.OwnerID != ownerID {
		return core.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

// MemoryGrantStore keeps private wallet grants keyed by lowercased address
type MemoryGrantStore struct {
	mu     sync.RWMutex
	grants map[string]core.PrivateWallet
}

// NewMemoryGrantStore creates an empty grant store
func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{grants: make(map[string]core.PrivateWallet)}
}

func (s *MemoryGrantStore) CreateGrant(ctx context.Context, grant *core.PrivateWallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := core.NormalizeAddress(grant.WalletAddress)
	if _, exists := s.grants[key]; exists {
		return core.ErrGrantExists
	}
	g := *grant
	g.WalletAddress = key
	s.grants[key] = g
	return nil
}

func (s *MemoryGrantStore) DeleteGrant(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := core.NormalizeAddress(address)
	if _, exists := s.grants[key]; !exists {
		return core.ErrGrantNotFound
	}
	delete(s.grants, key)
	return nil
}

func (s *MemoryGrantStore) FindGrant(ctx context.Context, address string) (*core.PrivateWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grants[core.NormalizeAddress(address)]
	if !ok {
		return nil, core.ErrGrantNotFound
	}
	return &g, nil
}

// ListGrants returns all grants ordered by address
func (s *MemoryGrantStore) ListGrants(ctx context.Context) ([]core.PrivateWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grants := make([]core.PrivateWallet, 0, len(s.grants))
	for _, g := range s.grants {
		grants = append(grants, g)
	}
	sort.Slice(grants, func(i, j int) bool {
		return grants[i].WalletAddress < grants[j].WalletAddress
	})
	return grants, nil
}
