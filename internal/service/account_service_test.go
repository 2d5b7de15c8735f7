package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/security"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestRegisterNeverExposesPasswordHash(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, account, err := env.accounts.Register(ctx, &dto.RegisterDTO{Username: "ana", Email: "Ana@X.com", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("expected session token")
	}
	if account.Email != "ana@x.com" {
		t.Fatalf("email should be normalized, got %q", account.Email)
	}

	claims, err := security.ValidateToken(token)
	if err != nil || claims.UserID != account.ID {
		t.Fatalf("token does not carry account id: %+v %v", claims, err)
	}

	raw, err := json.Marshal(account)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "password") || strings.Contains(string(raw), "$2a$") {
		t.Fatalf("account DTO leaks credentials: %s", raw)
	}
}

func TestRegisterRejectsDuplicateUsernameOrEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "ana")
	ctx := context.Background()

	_, _, err := env.accounts.Register(ctx, &dto.RegisterDTO{Username: "ana", Email: "other@x.com", Password: "p1"})
	if !errors.Is(err, ErrAccountExist) {
		t.Fatalf("duplicate username: expected ErrAccountExist, got %v", err)
	}
	_, _, err = env.accounts.Register(ctx, &dto.RegisterDTO{Username: "bea", Email: "ana@x.com", Password: "p1"})
	if !errors.Is(err, ErrAccountExist) {
		t.Fatalf("duplicate email: expected ErrAccountExist, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "ana")
	ctx := context.Background()

	_, _, wrongPassword := env.accounts.Login(ctx, &dto.LoginDTO{Username: "ana", Password: "nope"})
	_, _, unknownUser := env.accounts.Login(ctx, &dto.LoginDTO{Username: "ghost", Password: "p1"})

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownUser)
	}
}

func TestLoginUpdatesLastSeen(t *testing.T) {
	env := newTestEnv(t, nil)
	registered := env.register(t, "ana")
	if registered.LastSeenAt != nil {
		t.Fatal("fresh account should not have a last access time")
	}

	token, account, err := env.accounts.Login(context.Background(), &dto.LoginDTO{Username: "ana", Password: "p1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || account.LastSeenAt == nil {
		t.Fatalf("expected token and last access, got %q %+v", token, account)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	mr := setupMiniRedis(t)
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, _, err := env.accounts.Register(ctx, &dto.RegisterDTO{Username: "ana", Email: "ana@x.com", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err = env.accounts.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	signature, _ := security.ExtractSignature(token)
	key := consts.RevokedTokenKey + signature
	if !mr.Exists(key) {
		t.Fatalf("revocation key %s not stored", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 {
		t.Fatalf("revocation key should expire with the token, ttl=%v", ttl)
	}

	if err = env.accounts.Logout(ctx, "garbage"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestUpdateAvatar(t *testing.T) {
	env := newTestEnv(t, nil)
	account := env.register(t, "ana")
	ctx := context.Background()

	updated, err := env.accounts.UpdateAvatar(ctx, account.ID, " https://img.example/a.png ")
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != "https://img.example/a.png" {
		t.Fatalf("unexpected avatar: %v", updated.AvatarURL)
	}
	if _, err = env.accounts.UpdateAvatar(ctx, account.ID, "  "); !errors.Is(err, ErrParamInvalid) {
		t.Fatalf("expected ErrParamInvalid, got %v", err)
	}
	if _, err = env.accounts.GetAccount(ctx, 9999); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestIssueStorageCredential(t *testing.T) {
	env := newTestEnv(t, nil)
	account := env.register(t, "ana")
	ctx := context.Background()

	cred, err := env.accounts.IssueStorageCredential(ctx, account.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if cred.Token == "" || !strings.HasPrefix(cred.Prefix, "posts/") {
		t.Fatalf("unexpected credential %+v", cred)
	}

	env.remote.issueErr = errors.New("provider down")
	if _, err = env.accounts.IssueStorageCredential(ctx, account.ID); !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
}

func TestIssueStorageCredentialWithoutProvider(t *testing.T) {
	env := newTestEnv(t, nil)
	account := env.register(t, "ana")

	svc := NewAccountService(nil, nil)
	if _, err := svc.IssueStorageCredential(context.Background(), account.ID); !errors.Is(err, ErrStorageDelegationDisabled) {
		t.Fatalf("expected ErrStorageDelegationDisabled, got %v", err)
	}
}
