package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeMinter struct {
	uid    string
	claims map[string]interface{}
	err    error
}

func (f *fakeMinter) CustomTokenWithClaims(_ context.Context, uid string, claims map[string]interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uid = uid
	f.claims = claims
	return "custom-token-" + uid, nil
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string]ObjectInfo
	statErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string]ObjectInfo{}}
}

func (f *fakeObjects) Stat(_ context.Context, name string) (*ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statErr != nil {
		return nil, f.statErr
	}
	info, ok := f.objects[name]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (f *fakeObjects) Remove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	return nil
}

func (f *fakeObjects) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ObjectInfo, 0)
	for name, info := range f.objects {
		if strings.HasPrefix(name, prefix) {
			out = append(out, info)
		}
	}
	return out, nil
}

func (f *fakeObjects) Sign(name string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + name + "?ttl=" + ttl.String(), nil
}

func (f *fakeObjects) PublicURL(name string) string {
	return "https://public.example/" + name
}

func TestFirebaseIssueCredential(t *testing.T) {
	minter := &fakeMinter{}
	b := NewFirebaseBackend(minter, newFakeObjects(), "bucket", time.Hour)

	cred, err := b.IssueCredential(context.Background(), 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if cred.Token != "custom-token-42" || minter.uid != "42" {
		t.Fatalf("unexpected token %q uid %q", cred.Token, minter.uid)
	}
	if minter.claims["user_id"] != uint64(42) {
		t.Fatalf("user_id claim missing: %v", minter.claims)
	}
	if cred.Prefix != "posts/42/" || cred.Provider != "firebase" {
		t.Fatalf("unexpected credential %+v", cred)
	}
	if time.Until(cred.ExpiresAt) <= 50*time.Minute {
		t.Fatalf("credential expires too soon: %v", cred.ExpiresAt)
	}
}

func TestFirebaseIssueCredentialError(t *testing.T) {
	b := NewFirebaseBackend(&fakeMinter{err: errors.New("boom")}, newFakeObjects(), "bucket", time.Hour)
	if _, err := b.IssueCredential(context.Background(), 1); err == nil {
		t.Fatal("expected minting error")
	}
}

func TestFirebaseObjectOperations(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["posts/1/2/1_a.png"] = ObjectInfo{Path: "posts/1/2/1_a.png", Size: 3}
	b := NewFirebaseBackend(&fakeMinter{}, objects, "bucket", time.Hour)
	ctx := context.Background()

	ok, err := b.Exists(ctx, "posts/1/2/1_a.png")
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}
	ok, err = b.Exists(ctx, "posts/1/2/missing.png")
	if err != nil || ok {
		t.Fatalf("missing object: %v %v", ok, err)
	}

	list, err := b.List(ctx, "posts/1/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}

	signed, err := b.SignedURL(ctx, "posts/1/2/1_a.png", time.Minute)
	if err != nil || !strings.HasPrefix(signed, "https://signed.example/") {
		t.Fatalf("signed: %q %v", signed, err)
	}

	if err = b.Delete(ctx, "posts/1/2/1_a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err = b.Delete(ctx, "posts/1/2/1_a.png"); err != nil {
		t.Fatalf("deleting a missing object must succeed: %v", err)
	}

	objects.statErr = errors.New("unavailable")
	if _, err = b.Exists(ctx, "posts/1/2/1_a.png"); err == nil {
		t.Fatal("stat errors must surface")
	}
}
