package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/kafka"
	"context"
	"errors"
	"slices"
	"testing"
)

func TestCreatePostRequiresTitle(t *testing.T) {
	env := newTestEnv(t, nil)
	account := env.register(t, "ana")

	if _, err := env.posts.CreatePost(context.Background(), account.ID, &dto.CreatePostDTO{Titulo: "   "}); !errors.Is(err, ErrParamInvalid) {
		t.Fatalf("expected ErrParamInvalid, got %v", err)
	}

	post := env.createPost(t, account.ID, "Viaje")
	if post.Status != consts.PostStatusActive || post.AccountID != account.ID {
		t.Fatalf("unexpected post %+v", post)
	}
}

func TestGetPostListsMediaInDisplayOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	account := env.register(t, "ana")
	post := env.createPost(t, account.ID, "Viaje")
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.png"} {
		path := "posts/" + uintStr(account.ID) + "/" + uintStr(post.ID) + "/1_" + name
		env.remote.put(path)
		if _, err := env.media.RegisterRemote(ctx, account.ID, remoteDTO(post.ID, path)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	detail, err := env.posts.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if detail.Post.MediaCount != 2 || len(detail.Contenido) != 2 {
		t.Fatalf("expected 2 media, got count=%d len=%d", detail.Post.MediaCount, len(detail.Contenido))
	}
	if detail.Contenido[0].SortOrder != 1 || detail.Contenido[1].SortOrder != 2 {
		t.Fatalf("media not ordered: %d, %d", detail.Contenido[0].SortOrder, detail.Contenido[1].SortOrder)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	env := newTestEnv(t, nil)
	account := env.register(t, "ana")
	first := env.createPost(t, account.ID, "uno")
	second := env.createPost(t, account.ID, "dos")

	posts, err := env.posts.ListPosts(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", posts)
	}
}

func TestDeletePostOwnership(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.register(t, "ana")
	other := env.register(t, "bea")
	post := env.createPost(t, owner.ID, "Viaje")
	ctx := context.Background()

	if err := env.posts.DeletePost(ctx, other.ID, post.ID); !errors.Is(err, ErrPostForbidden) {
		t.Fatalf("non-owner: expected ErrPostForbidden, got %v", err)
	}
	if err := env.posts.DeletePost(ctx, owner.ID, 9999); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("missing post: expected ErrPostNotFound, got %v", err)
	}

	if err := env.posts.DeletePost(ctx, owner.ID, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.posts.GetPost(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("removed post still visible: %v", err)
	}
	if err := env.posts.DeletePost(ctx, owner.ID, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("second delete: expected ErrPostNotFound, got %v", err)
	}

	posts, err := env.posts.ListPosts(ctx, owner.ID)
	if err != nil || len(posts) != 0 {
		t.Fatalf("removed post still listed: %+v %v", posts, err)
	}
	if !slices.Contains(env.publisher.types(), kafka.EventPostRemoved) {
		t.Fatalf("post.removed not published: %v", env.publisher.types())
	}
}
