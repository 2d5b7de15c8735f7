package repository

import (
	"Mosaic/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AccountRepo interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountById(ctx context.Context, id uint64) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
	UpdateLastSeen(ctx context.Context, id uint64, at time.Time) error
	UpdateAvatar(ctx context.Context, id uint64, avatarURL string) error
}

type AccountRepoImpl struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) AccountRepo {
	return &AccountRepoImpl{db: db}
}

func (s *AccountRepoImpl) CreateAccount(ctx context.Context, account *model.Account) error {
	return s.db.WithContext(ctx).Create(account).Error
}

func (s *AccountRepoImpl) GetAccountById(ctx context.Context, id uint64) (*model.Account, error) {
	account := &model.Account{}
	result := s.db.WithContext(ctx).First(account, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return account, nil
}

func (s *AccountRepoImpl) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	account := &model.Account{}
	result := s.db.WithContext(ctx).
		Where("username = ?", username).
		First(account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return account, nil
}

func (s *AccountRepoImpl) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *AccountRepoImpl) UpdateLastSeen(ctx context.Context, id uint64, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Update("last_seen_at", at).Error
}

func (s *AccountRepoImpl) UpdateAvatar(ctx context.Context, id uint64, avatarURL string) error {
	return s.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Update("avatar_url", avatarURL).Error
}
