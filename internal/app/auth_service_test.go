package app

import (
	"errors"
	"testing"
	"time"

	"docuquery/internal/model"
	"docuquery/internal/pkg/jwtutil"
)

type fakeUserStore struct {
	users []model.User
}

func (f *fakeUserStore) Create(user *model.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserStore) GetByUsername(username string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(id uint) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func TestRegisterThenLogin(t *testing.T) {
	users := &fakeUserStore{}
	svc := NewAuthService(users, "secret", time.Hour)

	reg, err := svc.Register(RegisterInput{Username: "alice", Email: "Alice@X.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if reg.User.Email != "alice@x.com" {
		t.Fatalf("expected lowercased email, got %q", reg.User.Email)
	}

	claims, err := jwtutil.ParseToken("secret", reg.Token)
	if err != nil {
		t.Fatalf("parse issued token failed: %v", err)
	}
	if claims.Email != "alice@x.com" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	login, err := svc.Login(LoginInput{Username: "alice", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Fatalf("login returned different user: %+v", login.User)
	}
}

func TestRegisterValidation(t *testing.T) {
	users := &fakeUserStore{}
	svc := NewAuthService(users, "secret", time.Hour)
	if _, err := svc.Register(RegisterInput{Username: "bob", Email: "bob@x.com", Password: "ok"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}

	if _, err := svc.Register(RegisterInput{Username: "bob", Email: "bob@x.com", Password: "longenough"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "bob", Email: "bob2@x.com", Password: "longenough"}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "bob2", Email: "bob@x.com", Password: "longenough"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	users := &fakeUserStore{}
	svc := NewAuthService(users, "secret", time.Hour)
	if _, err := svc.Register(RegisterInput{Username: "carol", Email: "carol@x.com", Password: "rightpass"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(LoginInput{Username: "carol", Password: "wrongpass"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if _, err := svc.Login(LoginInput{Username: "nobody", Password: "whatever1"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for unknown user, got %v", err)
	}
}
