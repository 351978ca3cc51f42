package service

import (
	"context"
	"strings"
	"testing"

	"movie-tracker/internal/apperr"
	"movie-tracker/internal/testutil"
)

func TestRegisterValidationAndConflicts(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    RegisterInput
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"missing username", RegisterInput{Email: "a@example.com", Password: "password1"}, apperr.KindValidation, "Username is required."},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "password1"}, apperr.KindValidation, "Please enter a valid email address."},
		{"short password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"}, apperr.KindValidation, "Password must be at least 8 characters."},
		{"password over 72 bytes", RegisterInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("a", 80)}, apperr.KindValidation, "Password must be at most 72 bytes."},
		{"multibyte password over 72 bytes", RegisterInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("é", 37)}, apperr.KindValidation, "Password must be at most 72 bytes."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.users.Register(ctx, tt.input)
			if !apperr.Is(err, tt.wantKind) {
				t.Fatalf("Register() error = %v, want kind %v", err, tt.wantKind)
			}
			if got := apperr.PublicMessage(err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	user, err := s.users.Register(ctx, RegisterInput{Username: " alice ", Email: "alice@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Username != "alice" || user.ID == "" || user.PasswordHash == "password1" {
		t.Errorf("unexpected user: %+v", user)
	}

	_, err = s.users.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "password1"})
	if apperr.PublicMessage(err) != "Username already exists." {
		t.Errorf("duplicate username error = %v", err)
	}
	_, err = s.users.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "password1"})
	if apperr.PublicMessage(err) != "Email already registered." {
		t.Errorf("duplicate email error = %v", err)
	}
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	if _, err := s.users.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password1"}); err != nil {
		t.Fatal(err)
	}

	for _, identifier := range []string{"alice", "alice@example.com"} {
		if u, err := s.users.Login(ctx, identifier, "password1"); err != nil || u.Username != "alice" {
			t.Errorf("Login(%q) = (%v, %v)", identifier, u, err)
		}
	}

	for _, tc := range []struct{ identifier, password string }{
		{"alice", "wrong-password"},
		{"nobody", "password1"},
	} {
		_, err := s.users.Login(ctx, tc.identifier, tc.password)
		if !apperr.Is(err, apperr.KindNotAuthorized) || apperr.PublicMessage(err) != "Invalid username/email or password." {
			t.Errorf("Login(%q) error = %v", tc.identifier, err)
		}
	}

	if _, err := s.users.Login(ctx, "", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("empty login error = %v, want validation", err)
	}
}

func TestProfileStatsAndActivity(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")

	for id := 1; id <= 6; id++ {
		if err := s.collections.SetFavorite(ctx, alice.ID, id, MovieInput{Title: "m"}, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.collections.RecordView(ctx, alice.ID, 1, MovieInput{Title: "m"}); err != nil {
		t.Fatal(err)
	}
	if err := s.collections.UpsertRating(ctx, alice.ID, 2, RatingUpdate{RatingSet: true, Rating: intPtr(5)}, MovieInput{Title: "m"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.comments.AddComment(ctx, alice.ID, MovieInput{ID: 3, Title: "m"}, "nice"); err != nil {
		t.Fatal(err)
	}
	req, err := s.social.SendRequest(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.social.AcceptRequest(ctx, req.ID, alice.ID); err != nil {
		t.Fatal(err)
	}

	profile, err := s.users.Profile(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{FavoriteCount: 6, RecentlyViewedCount: 1, CommentCount: 1, RatingCount: 1}
	if profile.Stats != want {
		t.Errorf("stats = %+v, want %+v", profile.Stats, want)
	}
	if len(profile.Activity.RecentFavorites) != profileActivityLimit || profile.Activity.RecentFavorites[0].ID != 6 {
		t.Errorf("recent favorites = %+v", profile.Activity.RecentFavorites)
	}
	if len(profile.Activity.RecentComments) != 1 || profile.Activity.RecentComments[0].Movie == nil {
		t.Errorf("recent comments = %+v", profile.Activity.RecentComments)
	}
	if len(profile.Friends) != 1 || profile.Friends[0].Username != "bob" {
		t.Errorf("friends = %+v", profile.Friends)
	}

	if _, err := s.users.Profile(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing profile error = %v", err)
	}
}
