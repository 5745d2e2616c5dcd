package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/layer-3/walletgate/core"
)

type accountRecord struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)"`
	WalletAddress string     `gorm:"uniqueIndex;type:varchar(42);not null"`
	PendingNonce  string     `gorm:"type:varchar(64)"`
	Role          string     `gorm:"type:varchar(16);not null"`
	Email         string     `gorm:"type:varchar(255)"`
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (accountRecord) TableName() string { return "accounts" }

type noteRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string `gorm:"index;type:varchar(36);not null"`
	Title     string `gorm:"type:varchar(200);not null"`
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (noteRecord) TableName() string { return "notes" }

type grantRecord struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	WalletAddress string `gorm:"uniqueIndex;type:varchar(42);not null"`
	GrantedBy     string `gorm:"type:varchar(36);not null"`
	CreatedAt     time.Time
}

func (grantRecord) TableName() string { return "private_wallets" }

// GormStore implements AccountStore, NoteStore and GrantStore on a relational database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an opened gorm handle. The handle should be opened with
// TranslateError so uniqueness conflicts surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenGorm opens a postgres or mysql database and routes gorm's logger to zap
func OpenGorm(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger: gormlogger.New(zapWriter{log.Sugar()}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return db, nil
}

type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// AutoMigrate creates or updates the tables used by the store
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&accountRecord{}, &noteRecord{}, &grantRecord{})
}

// Accounts

func (s *GormStore) FindByAddress(ctx context.Context, address string) (*core.Account, error) {
	var rec accountRecord
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", core.NormalizeAddress(address)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return rec.toCore(), nil
}

func (s *GormStore) Create(ctx context.Context, account *core.Account) error {
	rec := accountRecord{
		ID:            account.ID,
		WalletAddress: core.NormalizeAddress(account.WalletAddress),
		PendingNonce:  account.PendingNonce,
		Role:          string(account.Role),
		Email:         account.Email,
		LastLogin:     account.LastLogin,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
	err := s.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateNonce(ctx context.Context, address, nonce string) error {
	return s.updateAccount(ctx, address, "pending_nonce", nonce)
}

func (s *GormStore) RecordLogin(ctx context.Context, address string, at time.Time, nextNonce string) error {
	values := map[string]interface{}{"last_login": at}
	if nextNonce != "" {
		values["pending_nonce"] = nextNonce
	}
	res := s.db.WithContext(ctx).
		Model(&accountRecord{}).
		Where("wallet_address = ?", core.NormalizeAddress(address)).
		Updates(values)
	if res.Error != nil {
		return fmt.Errorf("failed to record login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (s *GormStore) UpdateRole(ctx context.Context, address string, role core.Role) error {
	return s.updateAccount(ctx, address, "role", string(role))
}

func (s *GormStore) updateAccount(ctx context.Context, address, column string, value interface{}) error {
	res := s.db.WithContext(ctx).
		Model(&accountRecord{}).
		Where("wallet_address = ?", core.NormalizeAddress(address)).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update account %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (r accountRecord) toCore() *core.Account {
	return &core.Account{
		ID:            r.ID,
		WalletAddress: r.WalletAddress,
		PendingNonce:  r.PendingNonce,
		Role:          core.Role(r.Role),
		Email:         r.Email,
		LastLogin:     r.LastLogin,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Notes

func (s *GormStore) CreateNote(ctx context.Context, note *core.Note) error {
	rec := noteRecord{
		ID:        note.ID,
		OwnerID:   note.OwnerID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (s *GormStore) GetNote(ctx context.Context, ownerID, id string) (*core.Note, error) {
	var rec noteRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	n := rec.toCore()
	return &n, nil
}

func (s *GormStore) ListNotes(ctx context.Context, ownerID string) ([]core.Note, error) {
	var recs []noteRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]core.Note, 0, len(recs))
	for _, r := range recs {
		notes = append(notes, r.toCore())
	}
	return notes, nil
}

func (s *GormStore) UpdateNote(ctx context.Context, note *core.Note) error {
	res := s.db.WithContext(ctx).
		Model(&noteRecord{}).
		Where("id = ? AND owner_id = ?", note.ID, note.OwnerID).
		Updates(map[string]interface{}{
			"title":      note.Title,
			"content":    note.Content,
			"updated_at": note.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNoteNotFound
	}
	return nil
}

func (s *GormStore) DeleteNote(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&noteRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNoteNotFound
	}
	return nil
}

func (r noteRecord) toCore() core.Note {
	return core.Note{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Private wallet grants

func (s *GormStore) CreateGrant(ctx context.Context, grant *core.PrivateWallet) error {
	rec := grantRecord{
		ID:            grant.ID,
		WalletAddress: core.NormalizeAddress(grant.WalletAddress),
		GrantedBy:     grant.GrantedBy,
		CreatedAt:     grant.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.ErrGrantExists
	}
	if err != nil {
		return fmt.Errorf("failed to create grant: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteGrant(ctx context.Context, address string) error {
	res := s.db.WithContext(ctx).
		Where("wallet_address = ?", core.NormalizeAddress(address)).
		Delete(&grantRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete grant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrGrantNotFound
	}
	return nil
}

func (s *GormStore) FindGrant(ctx context.Context, address string) (*core.PrivateWallet, error) {
	var rec grantRecord
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", core.NormalizeAddress(address)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrGrantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find grant: %w", err)
	}
	g := rec.toCore()
	return &g, nil
}

func (s *GormStore) ListGrants(ctx context.Context) ([]core.PrivateWallet, error) {
	var recs []grantRecord
	if err := s.db.WithContext(ctx).Order("wallet_address").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}

	grants := make([]core.PrivateWallet, 0, len(recs))
	for _, r := range recs {
		grants = append(grants, r.toCore())
	}
	return grants, nil
}

func (r grantRecord) toCore() core.PrivateWallet {
	return core.PrivateWallet{
		ID:            r.ID,
		WalletAddress: r.WalletAddress,
		GrantedBy:     r.GrantedBy,
		CreatedAt:     r.CreatedAt,
	}
}
