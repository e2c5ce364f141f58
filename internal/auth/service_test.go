package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/config"
)

type fakeAuthRepo struct {
	roles map[string]*UserRole
	users map[string]*User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		roles: map[string]*UserRole{
			"admin":     {ID: 1, RoleName: "admin", CanRegisterPublicly: false},
			"organizer": {ID: 2, RoleName: "organizer", CanRegisterPublicly: true},
			"user":      {ID: 3, RoleName: "user", CanRegisterPublicly: true},
		},
		users: map[string]*User{},
	}
}

func (f *fakeAuthRepo) Create(user *User) error {
	user.ID = uint(len(f.users) + 1)
	f.users[user.Email] = user
	return nil
}

func (f *fakeAuthRepo) FindByEmail(email string) (*User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeAuthRepo) FindByID(userID uint) (User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return *u, nil
		}
	}
	return User{}, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindRoleByName(name string) (*UserRole, error) {
	r, ok := f.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeAuthRepo) Update(user *User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeAuthRepo) GetPublicRoles() ([]UserRole, error) {
	var out []UserRole
	for _, r := range f.roles {
		if r.CanRegisterPublicly {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAuthRepo) RoleHasPermission(uint, string) (bool, error) {
	return false, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:    "access-secret",
		JWTRefreshSecret:   "refresh-secret",
		JWTAccessTTLHours:  1,
		JWTRefreshTTLHours: 24,
	}
}

func TestRegisterBlocksNonPublicRoles(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testConfig())

	err := svc.Register(RegisterInput{
		FullName: "Eve", Email: "eve@example.com", Password: "secret", Role: "admin",
	})
	if err == nil {
		t.Fatal("admin self-registration must be rejected")
	}
	if len(repo.users) != 0 {
		t.Error("rejected registration persisted a user")
	}
}

func TestRegisterNewOrganizerStartsUnapproved(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testConfig())

	err := svc.Register(RegisterInput{
		FullName: "Org", Email: "Org@Example.com", Password: "secret", Role: "Organizer",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, ok := repo.users["org@example.com"]
	if !ok {
		t.Fatal("email must be stored lowercase")
	}
	if u.IsApproved {
		t.Error("new organizer must start unapproved")
	}
	if u.Status != "active" {
		t.Errorf("status = %q, want active", u.Status)
	}
	if u.PasswordHash == "secret" || u.PasswordHash == "" {
		t.Error("password must be stored as a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testConfig())

	if err := svc.Register(RegisterInput{
		FullName: "User", Email: "user@example.com", Password: "secret", Role: "user",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.users["user@example.com"].Role = *repo.roles["user"]

	pair, user, err := svc.Login(LoginInput{Email: "user@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("both tokens must be issued")
	}
	if user.Email != "user@example.com" {
		t.Errorf("user email = %q", user.Email)
	}

	// A signed JWT has three dot-separated segments.
	if got := len(strings.Split(pair.AccessToken, ".")); got != 3 {
		t.Errorf("access token segments = %d, want 3", got)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testConfig())

	if err := svc.Register(RegisterInput{
		FullName: "User", Email: "user@example.com", Password: "secret", Role: "user",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(LoginInput{Email: "user@example.com", Password: "wrong"}); err == nil {
		t.Error("wrong password must fail")
	}
	if _, _, err := svc.Login(LoginInput{Email: "missing@example.com", Password: "secret"}); err == nil {
		t.Error("unknown account must fail")
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testConfig())

	if err := svc.Register(RegisterInput{
		FullName: "User", Email: "user@example.com", Password: "secret", Role: "user",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.users["user@example.com"].Status = "inactive"

	if _, _, err := svc.Login(LoginInput{Email: "user@example.com", Password: "secret"}); err == nil {
		t.Error("inactive account must not log in")
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testConfig())

	if err := svc.Register(RegisterInput{
		FullName: "User", Email: "user@example.com", Password: "secret", Role: "user",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, _, err := svc.Login(LoginInput{Email: "user@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	access, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if access == "" {
		t.Error("expected a new access token")
	}

	if _, err := svc.Refresh("not-a-token"); err == nil {
		t.Error("garbage refresh token must fail")
	}
	if _, err := svc.Refresh(pair.AccessToken); err == nil {
		t.Error("access token signed with the wrong secret must fail refresh")
	}
}
