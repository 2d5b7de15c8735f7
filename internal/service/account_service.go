package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/pkg/security"
	"Mosaic/internal/repository"
	"Mosaic/internal/storage"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

type AccountService interface {
	Register(ctx context.Context, dto *dto.RegisterDTO) (string, *dto.AccountDTO, error)
	Login(ctx context.Context, dto *dto.LoginDTO) (string, *dto.AccountDTO, error)
	Logout(ctx context.Context, token string) error
	GetAccount(ctx context.Context, id uint64) (*dto.AccountDTO, error)
	UpdateAvatar(ctx context.Context, id uint64, avatarURL string) (*dto.AccountDTO, error)
	IssueStorageCredential(ctx context.Context, id uint64) (*storage.Credential, error)
}

type accountServiceImpl struct {
	accountRepo repository.AccountRepo
	delegating  storage.Delegating
	dummyHash   string
}

func NewAccountService(accountRepo repository.AccountRepo, delegating storage.Delegating) AccountService {
	// 用户名不存在时同样做一次哈希比较，避免通过耗时区分两种失败
	dummyHash, _ := security.HashPassword("mosaic-placeholder-password")
	return &accountServiceImpl{
		accountRepo: accountRepo,
		delegating:  delegating,
		dummyHash:   dummyHash,
	}
}

func (s *accountServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) (string, *dto.AccountDTO, error) {
	username := strings.TrimSpace(regDTO.Username)
	email := strings.ToLower(strings.TrimSpace(regDTO.Email))
	if username == "" || email == "" || regDTO.Password == "" {
		return "", nil, ErrParamInvalid
	}

	exists, err := s.accountRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", nil, ErrAccountExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return "", nil, err
	}

	account := &model.Account{
		Username: username,
		Email:    email,
		Password: passwordHash,
	}
	if err = s.accountRepo.CreateAccount(ctx, account); err != nil {
		// 并发注册由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, ErrAccountExist
		}
		return "", nil, err
	}

	return s.issueSession(account)
}

func (s *accountServiceImpl) Login(ctx context.Context, loginDTO *dto.LoginDTO) (string, *dto.AccountDTO, error) {
	account, err := s.accountRepo.GetAccountByUsername(ctx, strings.TrimSpace(loginDTO.Username))
	if err != nil {
		return "", nil, err
	}
	if account == nil {
		_ = security.CheckPasswordHash(loginDTO.Password, s.dummyHash)
		return "", nil, ErrInvalidCredentials
	}
	if err = security.CheckPasswordHash(loginDTO.Password, account.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err = s.accountRepo.UpdateLastSeen(ctx, account.ID, now); err != nil {
		return "", nil, err
	}
	account.LastSeenAt = &now

	return s.issueSession(account)
}

func (s *accountServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return ErrSessionInvalid
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrSessionInvalid
	}
	return redis.SetWithExpiration(ctx, consts.RevokedTokenKey+signature, 1, security.RemainingLifetime(claims))
}

func (s *accountServiceImpl) GetAccount(ctx context.Context, id uint64) (*dto.AccountDTO, error) {
	account, err := s.accountRepo.GetAccountById(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return toAccountDTO(account)
}

func (s *accountServiceImpl) UpdateAvatar(ctx context.Context, id uint64, avatarURL string) (*dto.AccountDTO, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL == "" {
		return nil, ErrParamInvalid
	}
	if err := s.accountRepo.UpdateAvatar(ctx, id, avatarURL); err != nil {
		return nil, err
	}
	return s.GetAccount(ctx, id)
}

func (s *accountServiceImpl) IssueStorageCredential(ctx context.Context, id uint64) (*storage.Credential, error) {
	if s.delegating == nil {
		return nil, ErrStorageDelegationDisabled
	}
	cred, err := s.delegating.IssueCredential(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "issue storage credential failed", "provider", s.delegating.Name(), "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	return cred, nil
}

func (s *accountServiceImpl) issueSession(account *model.Account) (string, *dto.AccountDTO, error) {
	token, err := security.GenerateToken(account.ID, account.Username)
	if err != nil {
		return "", nil, err
	}
	accountDTO, err := toAccountDTO(account)
	if err != nil {
		return "", nil, err
	}
	return token, accountDTO, nil
}

func toAccountDTO(account *model.Account) (*dto.AccountDTO, error) {
	accountDTO := &dto.AccountDTO{}
	if err := copier.Copy(accountDTO, account); err != nil {
		return nil, err
	}
	return accountDTO, nil
}
