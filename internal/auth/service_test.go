package auth

import (
	"context"
	"testing"

	"inkwell/internal/errs"
	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	createFn         func(context.Context, *models.User) error
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByIDFn        func(context.Context, string) (*models.User, error)
	updatePasswordFn func(context.Context, string, string) error
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, user)
	}
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, errs.NotFound("no user with email %s", email)
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, errs.NotFound("user not found: %s", id)
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id, hash string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, id, hash)
	}
	return nil
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(&fakeUserStore{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.UserRegister
	}{
		{name: "empty email", req: models.UserRegister{Password: "longenough", DisplayName: "A"}},
		{name: "bad email", req: models.UserRegister{Email: "not-an-email", Password: "longenough", DisplayName: "A"}},
		{name: "short password", req: models.UserRegister{Email: "a@b.co", Password: "short", DisplayName: "A"}},
		{name: "empty display name", req: models.UserRegister{Email: "a@b.co", Password: "longenough"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &tc.req)
			if !errs.IsKind(err, errs.KindInvalidArgument) {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *models.User
	store := &fakeUserStore{
		createFn: func(_ context.Context, u *models.User) error {
			created = u
			return nil
		},
	}
	svc := NewService(store)

	user, err := svc.Register(context.Background(), &models.UserRegister{
		Email:       "alice@example.com",
		Password:    "correct horse battery",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created == nil {
		t.Fatal("user was not stored")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := &fakeUserStore{
		createFn: func(_ context.Context, u *models.User) error {
			return errs.Conflict("email %s is already registered", u.Email)
		},
	}
	svc := NewService(store)

	_, err := svc.Register(context.Background(), &models.UserRegister{
		Email:       "alice@example.com",
		Password:    "correct horse battery",
		DisplayName: "Alice",
	})
	if !errs.IsKind(err, errs.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	store := &fakeUserStore{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email == "alice@example.com" {
				return &models.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
			}
			return nil, errs.NotFound("no user with email %s", email)
		},
	}
	svc := NewService(store)
	ctx := context.Background()

	user, err := svc.Login(ctx, &models.UserLogin{Email: "alice@example.com", Password: "right-password"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("unexpected user: %+v", user)
	}

	_, err = svc.Login(ctx, &models.UserLogin{Email: "alice@example.com", Password: "wrong"})
	if !errs.IsKind(err, errs.KindPermissionDenied) {
		t.Fatalf("wrong password: expected PermissionDenied, got %v", err)
	}

	// Unknown email yields the same error as a wrong password.
	_, err = svc.Login(ctx, &models.UserLogin{Email: "nobody@example.com", Password: "whatever"})
	if !errs.IsKind(err, errs.KindPermissionDenied) {
		t.Fatalf("unknown email: expected PermissionDenied, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	var storedHash string
	store := &fakeUserStore{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, PasswordHash: string(hash)}, nil
		},
		updatePasswordFn: func(_ context.Context, _ string, h string) error {
			storedHash = h
			return nil
		},
	}
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "u1", "wrong", "new-password-1"); !errs.IsKind(err, errs.KindPermissionDenied) {
		t.Fatalf("expected PermissionDenied for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, "u1", "old-password", "new-password-1"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("new-password-1")); err != nil {
		t.Fatalf("new hash does not verify: %v", err)
	}
}
