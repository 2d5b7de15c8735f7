package repository

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/database"
	"context"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newRepos(t *testing.T) (AccountRepo, PostRepo, MediaRepo, *gorm.DB) {
	t.Helper()
	db := database.NewTestDB(t, model.AllModels()...)
	return NewAccountRepo(db), NewPostRepository(db), NewMediaRepo(db), db
}

func strPtr(s string) *string { return &s }

func TestAccountRepo(t *testing.T) {
	accounts, _, _, _ := newRepos(t)
	ctx := context.Background()

	acc := &model.Account{Username: "ana", Email: "ana@x.com", Password: "hash"}
	if err := accounts.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if acc.ID == 0 {
		t.Fatal("id not assigned")
	}

	got, err := accounts.GetAccountByUsername(ctx, "ana")
	if err != nil || got == nil || got.Email != "ana@x.com" {
		t.Fatalf("by username: %+v %v", got, err)
	}

	missing, err := accounts.GetAccountByUsername(ctx, "bob")
	if err != nil || missing != nil {
		t.Fatalf("missing account should be nil, nil: %+v %v", missing, err)
	}

	exists, err := accounts.ExistsByUsernameOrEmail(ctx, "other", "ana@x.com")
	if err != nil || !exists {
		t.Fatalf("email conflict not detected: %v %v", exists, err)
	}

	now := time.Now()
	if err = accounts.UpdateLastSeen(ctx, acc.ID, now); err != nil {
		t.Fatalf("last seen: %v", err)
	}
	if err = accounts.UpdateAvatar(ctx, acc.ID, "https://cdn/a.png"); err != nil {
		t.Fatalf("avatar: %v", err)
	}
	got, err = accounts.GetAccountById(ctx, acc.ID)
	if err != nil || got.LastSeenAt == nil || got.AvatarURL == nil || *got.AvatarURL != "https://cdn/a.png" {
		t.Fatalf("updates not persisted: %+v %v", got, err)
	}
}

func TestAccountRepoDuplicateUsername(t *testing.T) {
	accounts, _, _, _ := newRepos(t)
	ctx := context.Background()

	if err := accounts.CreateAccount(ctx, &model.Account{Username: "ana", Email: "a@x.com", Password: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := accounts.CreateAccount(ctx, &model.Account{Username: "ana", Email: "b@x.com", Password: "h"}); err == nil {
		t.Fatal("duplicate username must fail")
	}
}

func TestPostRepoListActiveWithMediaCount(t *testing.T) {
	_, posts, media, _ := newRepos(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	p1 := &model.Post{AccountID: 1, Title: "first", CreatedAt: base}
	p2 := &model.Post{AccountID: 1, Title: "second", CreatedAt: base.Add(time.Minute)}
	p3 := &model.Post{AccountID: 1, Title: "gone", CreatedAt: base.Add(2 * time.Minute)}
	other := &model.Post{AccountID: 2, Title: "other"}
	for _, p := range []*model.Post{p1, p2, p3, other} {
		if err := posts.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if err := posts.MarkRemoved(ctx, p3.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if err := media.CreateMedia(ctx, &model.MediaItem{PostID: p1.ID, Kind: consts.MediaKindImage, URL: "u", SortOrder: i}); err != nil {
			t.Fatalf("create media: %v", err)
		}
	}

	list, err := posts.GetActivePostsByAccount(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 active posts, got %d", len(list))
	}
	if list[0].ID != p2.ID || list[1].ID != p1.ID {
		t.Fatalf("posts not newest first: %d, %d", list[0].ID, list[1].ID)
	}
	if list[1].MediaCount != 2 || list[0].MediaCount != 0 {
		t.Fatalf("unexpected media counts: %d, %d", list[0].MediaCount, list[1].MediaCount)
	}

	removed, err := posts.GetActivePost(ctx, p3.ID)
	if err != nil || removed != nil {
		t.Fatalf("removed post must not be active: %+v %v", removed, err)
	}
	raw, err := posts.GetPost(ctx, p3.ID)
	if err != nil || raw == nil || raw.Status != consts.PostStatusRemoved {
		t.Fatalf("soft deleted row must remain: %+v %v", raw, err)
	}
}

func TestMediaRepoOrderingAndOwner(t *testing.T) {
	_, posts, media, _ := newRepos(t)
	ctx := context.Background()

	post := &model.Post{AccountID: 7, Title: "t"}
	if err := posts.CreatePost(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	maxOrder, err := media.GetMaxSortOrder(ctx, post.ID)
	if err != nil || maxOrder != 0 {
		t.Fatalf("empty post max order: %d %v", maxOrder, err)
	}

	second := &model.MediaItem{PostID: post.ID, Kind: consts.MediaKindVideo, URL: "b", SortOrder: 2, Size: 20, ProviderPath: strPtr("posts/7/1/b.mp4")}
	first := &model.MediaItem{PostID: post.ID, Kind: consts.MediaKindImage, URL: "a", SortOrder: 1, Size: 10}
	for _, m := range []*model.MediaItem{second, first} {
		if err = media.CreateMedia(ctx, m); err != nil {
			t.Fatalf("create media: %v", err)
		}
	}

	maxOrder, err = media.GetMaxSortOrder(ctx, post.ID)
	if err != nil || maxOrder != 2 {
		t.Fatalf("max order: %d %v", maxOrder, err)
	}

	items, err := media.GetMediaByPost(ctx, post.ID)
	if err != nil || len(items) != 2 || items[0].URL != "a" {
		t.Fatalf("media not ordered: %+v %v", items, err)
	}

	withOwner, err := media.GetMediaWithOwner(ctx, second.ID)
	if err != nil || withOwner == nil {
		t.Fatalf("with owner: %+v %v", withOwner, err)
	}
	if withOwner.OwnerID != 7 || withOwner.PostStatus != consts.PostStatusActive || !withOwner.IsRemote() {
		t.Fatalf("unexpected join result: %+v", withOwner)
	}

	stats, err := media.GetStatsByAccount(ctx, 7)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalFiles != 2 || stats.TotalSize != 30 || stats.RemoteFiles != 1 || stats.LocalFiles != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	exists, err := media.ExistsByProviderPath(ctx, "posts/7/1/b.mp4")
	if err != nil || !exists {
		t.Fatalf("provider path lookup: %v %v", exists, err)
	}

	if err = media.DeleteMedia(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err = media.DeleteMedia(ctx, second.ID); !IsNotFound(err) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
	missing, err := media.GetMediaWithOwner(ctx, second.ID)
	if err != nil || missing != nil {
		t.Fatalf("deleted media should be nil, nil: %+v %v", missing, err)
	}
}

func TestMediaRepoRemovedPosts(t *testing.T) {
	_, posts, media, _ := newRepos(t)
	ctx := context.Background()

	live := &model.Post{AccountID: 1, Title: "live"}
	dead := &model.Post{AccountID: 1, Title: "dead"}
	for _, p := range []*model.Post{live, dead} {
		if err := posts.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	for _, p := range []*model.Post{live, dead} {
		if err := media.CreateMedia(ctx, &model.MediaItem{PostID: p.ID, Kind: consts.MediaKindImage, URL: p.Title, SortOrder: 1}); err != nil {
			t.Fatalf("create media: %v", err)
		}
	}
	if err := posts.MarkRemoved(ctx, dead.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	items, err := media.GetMediaOfRemovedPosts(ctx, 0, 10)
	if err != nil {
		t.Fatalf("orphans: %v", err)
	}
	if len(items) != 1 || items[0].URL != "dead" {
		t.Fatalf("unexpected orphans: %+v", items)
	}

	items, err = media.GetMediaOfRemovedPosts(ctx, items[0].ID, 10)
	if err != nil || len(items) != 0 {
		t.Fatalf("cursor should skip seen rows: %+v %v", items, err)
	}
}
