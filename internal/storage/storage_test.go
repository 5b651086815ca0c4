package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipebox/internal/storage"
	"recipebox/internal/storage/storagetest"
)

func TestUserCreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	created, err := store.Users.Create(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected an id to be assigned")
	}

	byName, err := store.Users.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if byName.ID != created.ID || byName.PasswordHash != "hash" {
		t.Errorf("FindByUsername = %+v, want id %d", byName, created.ID)
	}

	byID, err := store.Users.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("FindByID username = %q", byID.Username)
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	if _, err := store.Users.Create(ctx, "alice", "hash"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Users.Create(ctx, "alice", "other")
	if !errors.Is(err, storage.ErrUsernameTaken) {
		t.Fatalf("second Create error = %v, want ErrUsernameTaken", err)
	}
}

func TestUserNotFound(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	if _, err := store.Users.FindByUsername(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindByUsername error = %v, want ErrNotFound", err)
	}
	if _, err := store.Users.FindByID(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindByID error = %v, want ErrNotFound", err)
	}
}

func TestRecipeUpsertKeepsFirstMetadata(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	first := storage.Recipe{RecipeID: 716429, Title: "Pasta with Garlic", ImageURL: "https://img/1.jpg"}
	if err := store.Recipes.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Recipes.Upsert(ctx, storage.Recipe{RecipeID: 716429, Title: "Renamed"}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := store.Recipes.FindByID(ctx, 716429)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != first.Title || got.ImageURL != first.ImageURL {
		t.Errorf("recipe = %+v, want original metadata", got)
	}

	if _, err := store.Recipes.FindByID(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindByID missing error = %v, want ErrNotFound", err)
	}
}

func TestFavoriteCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	if err := store.Recipes.Upsert(ctx, storage.Recipe{RecipeID: 716429, Title: "Pasta"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	created, err := store.Favorites.Create(ctx, 716429)
	if err != nil || !created {
		t.Fatalf("first Create = %v, %v; want true, nil", created, err)
	}
	created, err = store.Favorites.Create(ctx, 716429)
	if err != nil || created {
		t.Fatalf("second Create = %v, %v; want false, nil", created, err)
	}

	favorites, err := store.Favorites.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("List returned %d favorites, want 1", len(favorites))
	}
	if favorites[0].RecipeID != 716429 || favorites[0].Title != "Pasta" {
		t.Errorf("favorite = %+v", favorites[0])
	}
}

func TestFavoriteListOrderAndEmpty(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	empty, err := store.Favorites.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("List on empty table = %#v, want empty non-nil slice", empty)
	}

	for _, id := range []int64{1, 2, 3} {
		if err := store.Recipes.Upsert(ctx, storage.Recipe{RecipeID: id, Title: "r"}); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Favorites.Create(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	favorites, err := store.Favorites.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(favorites) != 3 || favorites[0].RecipeID != 3 || favorites[2].RecipeID != 1 {
		t.Errorf("List order = %+v, want newest first", favorites)
	}
}

func TestFavoriteDeleteKeepsRecipe(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	if err := store.Recipes.Upsert(ctx, storage.Recipe{RecipeID: 7, Title: "Soup"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Favorites.Create(ctx, 7); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Favorites.Delete(ctx, 7)
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v; want true, nil", removed, err)
	}
	removed, err = store.Favorites.Delete(ctx, 7)
	if err != nil || removed {
		t.Fatalf("second Delete = %v, %v; want false, nil", removed, err)
	}

	exists, err := store.Favorites.Exists(ctx, 7)
	if err != nil || exists {
		t.Fatalf("Exists = %v, %v; want false, nil", exists, err)
	}
	if _, err := store.Recipes.FindByID(ctx, 7); err != nil {
		t.Errorf("cached recipe was removed with the favorite: %v", err)
	}
}

func TestFavoriteReferencesRecipe(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	if err := store.Recipes.Upsert(ctx, storage.Recipe{RecipeID: 716429, Title: "Pasta"}); err != nil {
		t.Fatalf("recipe without favorites rejected: %v", err)
	}
	if _, err := store.Recipes.FindByID(ctx, 716429); err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	if _, err := store.Favorites.Create(ctx, 42); err == nil {
		t.Fatalf("favorite for a missing recipe was accepted")
	}
	if exists, err := store.Favorites.Exists(ctx, 42); err != nil || exists {
		t.Fatalf("Exists = %v, %v; want false, nil", exists, err)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *storage.Store) error {
		if err := tx.Recipes.Upsert(ctx, storage.Recipe{RecipeID: 9, Title: "Cake"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction error = %v, want %v", err, boom)
	}
	if _, err := store.Recipes.FindByID(ctx, 9); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("recipe survived rollback: %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)
	now := time.Now()

	sess := &storage.Session{ID: "abc", Data: "v1", ExpiresAt: now.Add(time.Hour)}
	if err := store.Sessions.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sess.Data = "v2"
	if err := store.Sessions.Save(ctx, sess); err != nil {
		t.Fatalf("Save update: %v", err)
	}

	got, err := store.Sessions.Find(ctx, "abc", now)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Data != "v2" {
		t.Errorf("Data = %q, want v2", got.Data)
	}

	if _, err := store.Sessions.Find(ctx, "abc", now.Add(2*time.Hour)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Find after expiry error = %v, want ErrNotFound", err)
	}

	if err := store.Sessions.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Sessions.Find(ctx, "abc", now); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Find after delete error = %v, want ErrNotFound", err)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)
	now := time.Now()

	for id, expires := range map[string]time.Time{
		"old-1": now.Add(-2 * time.Hour),
		"old-2": now.Add(-time.Minute),
		"live":  now.Add(time.Hour),
	} {
		if err := store.Sessions.Save(ctx, &storage.Session{ID: id, Data: "x", ExpiresAt: expires}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := store.Sessions.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteExpired removed %d rows, want 2", n)
	}
	if _, err := store.Sessions.Find(ctx, "live", now); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}

func TestPing(t *testing.T) {
	if err := storagetest.NewStore(t).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
