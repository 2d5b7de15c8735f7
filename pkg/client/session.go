package client

import (
	"sync"
	"time"
)

// credentialRefreshAge 直传凭证在客户端的最长复用时间
const credentialRefreshAge = time.Hour

// credentialExpiryMargin 距离过期不足该时长时提前刷新
const credentialExpiryMargin = time.Minute

// Session 登录后的会话，由调用方显式持有并传入每次调用
type Session struct {
	Token   string
	Account *Account

	mu           sync.Mutex
	credential   *Credential
	credIssuedAt time.Time
}

func newSession(token string, account *Account) *Session {
	return &Session{Token: token, Account: account}
}

func (s *Session) cachedCredential(now time.Time) *Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credential == nil {
		return nil
	}
	if now.Sub(s.credIssuedAt) >= credentialRefreshAge {
		return nil
	}
	if !s.credential.ExpiresAt.IsZero() && now.Add(credentialExpiryMargin).After(s.credential.ExpiresAt) {
		return nil
	}
	return s.credential
}

func (s *Session) storeCredential(cred *Credential, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = cred
	s.credIssuedAt = now
}

// ForgetCredential 丢弃缓存的直传凭证
func (s *Session) ForgetCredential() {
	s.storeCredential(nil, time.Time{})
}
