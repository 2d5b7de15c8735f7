package job

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/database"
	"Mosaic/internal/repository"
	"Mosaic/internal/storage"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"
)

type fakeRemote struct {
	objects   map[string]time.Time
	failPaths map[string]bool
}

func (f *fakeRemote) Name() string { return "fake" }

func (f *fakeRemote) Locate(_ context.Context, locator string) (string, error) {
	return locator, nil
}

func (f *fakeRemote) Exists(_ context.Context, locator string) (bool, error) {
	_, ok := f.objects[locator]
	return ok, nil
}

func (f *fakeRemote) Delete(_ context.Context, locator string) error {
	if f.failPaths[locator] {
		return errors.New("provider unavailable")
	}
	delete(f.objects, locator)
	return nil
}

func (f *fakeRemote) IssueCredential(context.Context, uint64) (*storage.Credential, error) {
	return nil, errors.New("not used")
}

func (f *fakeRemote) SignedURL(_ context.Context, locator string, _ time.Duration) (string, error) {
	return locator, nil
}

func (f *fakeRemote) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	out := make([]storage.ObjectInfo, 0, len(f.objects))
	for p, updated := range f.objects {
		if strings.HasPrefix(p, prefix) {
			out = append(out, storage.ObjectInfo{Path: p, Updated: updated})
		}
	}
	return out, nil
}

func (f *fakeRemote) paths() []string {
	out := make([]string, 0, len(f.objects))
	for p := range f.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type fixture struct {
	job       *OrphanCleanupJob
	postRepo  repository.PostRepo
	mediaRepo repository.MediaRepo
	local     *storage.LocalBackend
	remote    *fakeRemote
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.NewTestDB(t, model.AllModels()...)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepo(db)
	local, err := storage.NewLocalBackend(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	remote := &fakeRemote{objects: map[string]time.Time{}, failPaths: map[string]bool{}}
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	job := NewOrphanCleanupJob(postRepo, mediaRepo, storage.Backends{Local: local, Remote: remote}, 24*time.Hour)
	job.now = func() time.Time { return now }

	accounts := repository.NewAccountRepo(db)
	for _, name := range []string{"ana", "bea"} {
		if err = accounts.CreateAccount(context.Background(), &model.Account{Username: name, Email: name + "@x.com", Password: "h"}); err != nil {
			t.Fatalf("account: %v", err)
		}
	}
	return &fixture{job: job, postRepo: postRepo, mediaRepo: mediaRepo, local: local, remote: remote, now: now}
}

func (f *fixture) post(t *testing.T, accountID uint64, removed bool) *model.Post {
	t.Helper()
	ctx := context.Background()
	post := &model.Post{AccountID: accountID, Title: "p"}
	if err := f.postRepo.CreatePost(ctx, post); err != nil {
		t.Fatalf("post: %v", err)
	}
	if removed {
		if err := f.postRepo.MarkRemoved(ctx, post.ID); err != nil {
			t.Fatalf("remove: %v", err)
		}
	}
	return post
}

func (f *fixture) remoteItem(t *testing.T, post *model.Post, name string, updated time.Time) *model.MediaItem {
	t.Helper()
	path := storage.ObjectPath(post.AccountID, post.ID, 1, name)
	f.remote.objects[path] = updated
	item := &model.MediaItem{PostID: post.ID, Kind: "image", URL: "https://cdn/" + path, SortOrder: 1, FileName: name, Size: 1, ProviderPath: &path}
	if err := f.mediaRepo.CreateMedia(context.Background(), item); err != nil {
		t.Fatalf("media: %v", err)
	}
	return item
}

func (f *fixture) localItem(t *testing.T, post *model.Post) *model.MediaItem {
	t.Helper()
	ctx := context.Background()
	locator := f.local.NewLocator(post.AccountID, post.ID, ".png")
	if _, err := f.local.Save(ctx, locator, strings.NewReader("png")); err != nil {
		t.Fatalf("save: %v", err)
	}
	item := &model.MediaItem{PostID: post.ID, Kind: "image", URL: locator, SortOrder: 2, FileName: "a.png", Size: 3}
	if err := f.mediaRepo.CreateMedia(ctx, item); err != nil {
		t.Fatalf("media: %v", err)
	}
	return item
}

func TestPurgeMediaOfRemovedPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	active := f.post(t, 1, false)
	removed := f.post(t, 1, true)

	kept := f.remoteItem(t, active, "keep.png", f.now)
	gone := f.remoteItem(t, removed, "gone.png", f.now)
	local := f.localItem(t, removed)

	result, err := f.job.Execute(ctx)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.PurgedMedia != 2 {
		t.Fatalf("expected 2 purged rows, got %d", result.PurgedMedia)
	}

	if item, _ := f.mediaRepo.GetMediaWithOwner(ctx, kept.ID); item == nil {
		t.Fatal("media of active post removed")
	}
	for _, id := range []uint64{gone.ID, local.ID} {
		if item, _ := f.mediaRepo.GetMediaWithOwner(ctx, id); item != nil {
			t.Fatalf("media %d of removed post still present", id)
		}
	}
	if ok, _ := f.local.Exists(ctx, local.URL); ok {
		t.Fatal("local binary not deleted")
	}
	if _, ok := f.remote.objects[*gone.ProviderPath]; ok {
		t.Fatal("remote binary not deleted")
	}
}

func TestPurgeKeepsRowWhenBinaryDeletionFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	removed := f.post(t, 1, true)
	item := f.remoteItem(t, removed, "stuck.png", f.now)
	f.remote.failPaths[*item.ProviderPath] = true

	result, err := f.job.Execute(ctx)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.PurgedMedia != 0 {
		t.Fatalf("expected nothing purged, got %d", result.PurgedMedia)
	}
	if row, _ := f.mediaRepo.GetMediaWithOwner(ctx, item.ID); row == nil {
		t.Fatal("row deleted although binary deletion failed")
	}
}

func TestPurgeReachesRowsBehindStuckBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	removed := f.post(t, 1, true)
	for i := 0; i < orphanBatchSize+5; i++ {
		item := f.remoteItem(t, removed, fmt.Sprintf("stuck-%d.png", i), f.now)
		f.remote.failPaths[*item.ProviderPath] = true
	}
	purgeable := f.localItem(t, removed)

	result, err := f.job.Execute(ctx)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.PurgedMedia != 1 {
		t.Fatalf("expected the row behind the stuck batch purged, got %d", result.PurgedMedia)
	}
	if row, _ := f.mediaRepo.GetMediaWithOwner(ctx, purgeable.ID); row != nil {
		t.Fatal("purgeable row still present")
	}
}

func TestSweepProviderObjects(t *testing.T) {
	f := newFixture(t)
	active := f.post(t, 1, false)
	removed := f.post(t, 1, true)
	old := f.now.Add(-48 * time.Hour)
	fresh := f.now.Add(-time.Hour)

	referenced := f.remoteItem(t, active, "referenced.png", old)
	unreferencedOld := storage.ObjectPath(1, active.ID, 2, "rejected.png")
	unreferencedFresh := storage.ObjectPath(1, active.ID, 3, "in-flight.png")
	removedPost := storage.ObjectPath(1, removed.ID, 4, "late.png")
	wrongOwner := storage.ObjectPath(2, active.ID, 5, "foreign.png")
	missingPost := storage.ObjectPath(1, 999, 6, "ghost.png")
	garbage := "posts/not-an-id/x.png"

	f.remote.objects[unreferencedOld] = old
	f.remote.objects[unreferencedFresh] = fresh
	f.remote.objects[removedPost] = fresh
	f.remote.objects[wrongOwner] = fresh
	f.remote.objects[missingPost] = fresh
	f.remote.objects[garbage] = old

	result, err := f.job.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := []string{*referenced.ProviderPath, unreferencedFresh}
	sort.Strings(want)
	got := f.remote.paths()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("remaining objects\n got: %v\nwant: %v", got, want)
	}
	if result.DeletedObjects != 5 {
		t.Fatalf("expected 5 deleted objects, got %d", result.DeletedObjects)
	}
}

func TestSweepWithoutRemoteBackend(t *testing.T) {
	f := newFixture(t)
	f.job.backends.Remote = nil
	result, err := f.job.Execute(context.Background())
	if err != nil || result.DeletedObjects != 0 {
		t.Fatalf("expected no-op sweep, got %+v %v", result, err)
	}
}
