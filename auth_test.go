package authmaster_test

import (
	"context"
	"testing"

	authmaster "github.com/yaghobieh/auth-master"
	"github.com/yaghobieh/auth-master/storage"
)

func TestAuthFacadeEmailLifecycle(t *testing.T) {
	auth := authmaster.New(authmaster.Config{LogLevel: "none"})

	changes := 0
	unsubscribe := auth.Subscribe(func() { changes++ })
	defer unsubscribe()

	user, err := auth.SignInWithEmail(context.Background(), authmaster.SignInData{
		Email: "alice@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatal(err)
	}
	if auth.User() == nil || auth.User().ID != user.ID {
		t.Fatal("facade does not expose the signed-in user")
	}
	if !auth.State().IsAuthenticated {
		t.Error("state not authenticated")
	}
	if changes == 0 {
		t.Error("subscriber saw no changes")
	}

	auth.SignOut()
	if auth.User() != nil || auth.State().IsAuthenticated {
		t.Error("sign-out did not clear the session")
	}
}

func TestAuthFacadeInjectedStorage(t *testing.T) {
	mem := storage.NewMemory()
	auth := authmaster.New(authmaster.Config{LogLevel: "none"}, authmaster.WithStorage(mem))
	if _, err := auth.SignInWithEmail(context.Background(), authmaster.SignInData{
		Email: "alice@example.com", Password: "secret123",
	}); err != nil {
		t.Fatal(err)
	}
	if mem.Len() == 0 {
		t.Fatal("session not persisted to the injected backend")
	}

	// A second instance over the same backend restores the session.
	restored := authmaster.New(authmaster.Config{LogLevel: "none"}, authmaster.WithStorage(mem))
	if u := restored.User(); u == nil || u.Email != "alice@example.com" {
		t.Fatalf("restored user = %+v", u)
	}
}

func TestAuthFacadeUnconfiguredFederated(t *testing.T) {
	auth := authmaster.New(authmaster.Config{LogLevel: "none", DisablePersist: true})
	if _, err := auth.SignInWithGoogle(context.Background()); err == nil {
		t.Fatal("expected not-configured failure")
	}
	if _, err := auth.SignInWithFacebook(context.Background()); err == nil {
		t.Fatal("expected not-configured failure")
	}
	if _, err := auth.SignInWithGitHub(context.Background()); err == nil {
		t.Fatal("expected not-configured failure")
	}
}

func TestRefreshAuthTokenStub(t *testing.T) {
	auth := authmaster.New(authmaster.Config{LogLevel: "none", DisablePersist: true})
	ok, err := auth.RefreshAuthToken(context.Background())
	if ok || err != nil {
		t.Fatalf("RefreshAuthToken = %v, %v, want false, nil", ok, err)
	}
}
