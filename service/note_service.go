package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

const DefaultNotesTTL = time.Minute

// NoteService manages notes owned by authenticated accounts.
// List reads through the cache; every write drops the owner's cached list.
type NoteService struct {
	notes ports.NoteStore
	cache ports.Cache
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time
}

// NewNoteService creates a note service. A non-positive ttl uses DefaultNotesTTL.
func NewNoteService(notes ports.NoteStore, cache ports.Cache, ttl time.Duration, log *zap.Logger) *NoteService {
	if ttl <= 0 {
		ttl = DefaultNotesTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NoteService{notes: notes, cache: cache, ttl: ttl, log: log, now: time.Now}
}

func notesCacheKey(ownerID string) string {
	return "notes:" + ownerID
}

func (s *NoteService) Create(ctx context.Context, ownerID, title, content string) (*core.Note, error) {
	now := s.now()
	note := &core.Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, ownerID, id string) (*core.Note, error) {
	return s.notes.GetNote(ctx, ownerID, id)
}

// List returns the owner's notes, newest first
func (s *NoteService) List(ctx context.Context, ownerID string) ([]core.Note, error) {
	key := notesCacheKey(ownerID)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("notes cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var notes []core.Note
		if err := json.Unmarshal(raw, &notes); err == nil {
			return notes, nil
		}
		s.log.Warn("dropping undecodable cache entry", zap.String("key", key))
	}

	notes, err := s.notes.ListNotes(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(notes); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.log.Warn("notes cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return notes, nil
}

func (s *NoteService) Update(ctx context.Context, ownerID, id string, upd core.NoteUpdate) (*core.Note, error) {
	note, err := s.notes.GetNote(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		note.Title = *upd.Title
	}
	if upd.Content != nil {
		note.Content = *upd.Content
	}
	note.UpdatedAt = s.now()

	if err := s.notes.UpdateNote(ctx, note); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.notes.DeleteNote(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *NoteService) invalidate(ctx context.Context, ownerID string) {
	if err := s.cache.Delete(ctx, notesCacheKey(ownerID)); err != nil {
		s.log.Warn("notes cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

