package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"movie-tracker/config"
	"movie-tracker/internal/catalog"
	"movie-tracker/internal/repository"
	"movie-tracker/internal/service"
	"movie-tracker/internal/session"
	"movie-tracker/internal/testutil"

	"github.com/gin-gonic/gin"
)

type stubCatalog struct {
	details map[int]*catalog.MovieDetails
}

func (s *stubCatalog) PopularMovies(_ context.Context, page int) (*catalog.MoviePage, error) {
	return &catalog.MoviePage{Page: page, TotalPages: 1}, nil
}

func (s *stubCatalog) SearchMovies(_ context.Context, _ string, page int) (*catalog.MoviePage, error) {
	return &catalog.MoviePage{Page: page, TotalPages: 1}, nil
}

func (s *stubCatalog) MovieDetails(_ context.Context, movieID int) (*catalog.MovieDetails, error) {
	if d, ok := s.details[movieID]; ok {
		return d, nil
	}
	return nil, &catalog.UpstreamError{Status: http.StatusNotFound, Endpoint: "details"}
}

func (s *stubCatalog) RecommendedMovies(_ context.Context, _, page int) (*catalog.MoviePage, error) {
	return &catalog.MoviePage{Page: page, TotalPages: 1}, nil
}

func (s *stubCatalog) ImageURL(path *string, size catalog.ImageSize) string {
	return catalog.BuildImageURL("https://img.test/t/p", path, size)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	movieRepo := repository.NewMovieRepository(db)
	userRepo := repository.NewUserRepository(db)
	collections := service.NewCollectionService(
		movieRepo,
		repository.NewFavoriteRepository(db),
		repository.NewRecentlyViewedRepository(db),
		repository.NewRatingRepository(db),
	)
	comments := service.NewCommentService(repository.NewCommentRepository(db), collections)
	social := service.NewSocialService(userRepo, repository.NewFriendRepository(db), nil, nil)
	users := service.NewUserService(userRepo, collections, comments, social)
	cat := &stubCatalog{details: map[int]*catalog.MovieDetails{
		42: {Movie: catalog.Movie{ID: 42, Title: "Inception"}},
	}}
	pages := service.NewPageService(cat, movieRepo, collections, comments)

	sessions := session.NewManager(config.SessionConfig{
		CookieName: "session_id",
		MaxAge:     7 * 24 * time.Hour,
		Signed:     true,
		Secret:     "test-secret",
		Issuer:     "movie-tracker-test",
	}, users)

	r := gin.New()
	r.Use(sessions.Middleware())
	RegisterRoutes(r, Handlers{
		Movie:  NewMovieHandler(pages, collections, comments),
		Friend: NewFriendHandler(social),
		User:   NewUserHandler(users, sessions),
	})
	return r
}

func do(r http.Handler, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

// signUp 注册并登录，返回会话 Cookie 与用户ID
func signUp(t *testing.T, r http.Handler, username string) (*http.Cookie, string) {
	t.Helper()
	w := do(r, http.MethodPost, "/register", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"password123"},
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", username, w.Code, w.Body.String())
	}
	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, w, &registered)

	w = do(r, http.MethodPost, "/login", url.Values{"username": {username}, "password": {"password123"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			return c, registered.User.ID
		}
	}
	t.Fatalf("login %s: no session cookie", username)
	return nil, ""
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r := newTestRouter(t)
	cookie, _ := signUp(t, r, "alice")

	if !cookie.HttpOnly {
		t.Error("session cookie should be httpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict", cookie.SameSite)
	}
	if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d, want one week", cookie.MaxAge)
	}

	w := do(r, http.MethodGet, "/profile", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("profile with cookie: status %d body %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/profile", nil, nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != session.LoginPath {
		t.Errorf("anonymous profile = %d %q, want 303 to login", w.Code, w.Header().Get("Location"))
	}

	w = do(r, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}

	w = do(r, http.MethodPost, "/logout", nil, cookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != HomePath {
		t.Errorf("logout = %d %q, want 303 to home", w.Code, w.Header().Get("Location"))
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)
	signUp(t, r, "alice")

	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"missing fields", url.Values{"username": {"bob"}}, http.StatusBadRequest},
		{"bad email", url.Values{"username": {"bob"}, "email": {"nope"}, "password": {"password123"}}, http.StatusBadRequest},
		{"short password", url.Values{"username": {"bob"}, "email": {"bob@example.com"}, "password": {"short"}}, http.StatusBadRequest},
		{"taken username", url.Values{"username": {"alice"}, "email": {"other@example.com"}, "password": {"password123"}}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/register", tt.form, nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestToggleFavoriteRoutes(t *testing.T) {
	r := newTestRouter(t)
	cookie, _ := signUp(t, r, "alice")

	w := do(r, http.MethodPost, "/toggleFavorite", url.Values{"movieId": {"42"}, "title": {"Inception"}}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous toggle status = %d, want 401", w.Code)
	}

	var result struct {
		Success bool   `json:"success"`
		Action  string `json:"action"`
		Type    string `json:"type"`
		MovieID int    `json:"movieId"`
	}
	w = do(r, http.MethodPost, "/toggleFavorite", url.Values{"movieId": {"42"}, "title": {"Inception"}}, cookie)
	decode(t, w, &result)
	if w.Code != http.StatusOK || !result.Success || result.Action != "added" || result.Type != "favorite" || result.MovieID != 42 {
		t.Fatalf("first toggle = %d %+v", w.Code, result)
	}

	w = do(r, http.MethodPost, "/movie/42/toggleFavorite", url.Values{}, cookie)
	decode(t, w, &result)
	if w.Code != http.StatusOK || result.Action != "removed" {
		t.Fatalf("second toggle = %d %+v", w.Code, result)
	}

	tests := []struct {
		name string
		path string
		form url.Values
	}{
		{"missing movie id", "/search/toggleFavorite", url.Values{"title": {"Inception"}}},
		{"non numeric movie id", "/favorites/toggleFavorite", url.Values{"movieId": {"abc"}}},
		{"missing title on add", "/toggleFavorite", url.Values{"movieId": {"7"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.path, tt.form, cookie)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateUserDataAndMovieDetail(t *testing.T) {
	r := newTestRouter(t)
	cookie, _ := signUp(t, r, "alice")

	w := do(r, http.MethodPost, "/movie/42/updateUserData", url.Values{"userRating": {"11"}, "title": {"Inception"}}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out of range rating status = %d, want 400", w.Code)
	}

	w = do(r, http.MethodPost, "/movie/42/updateUserData", url.Values{"userRating": {"8"}}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("new movie without title status = %d, want 400", w.Code)
	}

	w = do(r, http.MethodPost, "/movie/42/updateUserData", url.Values{
		"userRating": {"8"},
		"userNotes":  {"great"},
		"title":      {"Inception"},
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", w.Code, w.Body.String())
	}

	var page struct {
		Movie struct {
			Title      string  `json:"title"`
			UserRating *int    `json:"userRating"`
			UserNotes  *string `json:"userNotes"`
		} `json:"movie"`
	}
	w = do(r, http.MethodGet, "/movie/42", nil, cookie)
	decode(t, w, &page)
	if w.Code != http.StatusOK || page.Movie.UserRating == nil || *page.Movie.UserRating != 8 {
		t.Fatalf("detail = %d %+v", w.Code, page.Movie)
	}

	w = do(r, http.MethodGet, "/movie/999", nil, cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown movie status = %d, want 404", w.Code)
	}
}

func TestCommentRoutes(t *testing.T) {
	r := newTestRouter(t)
	alice, _ := signUp(t, r, "alice")
	bob, _ := signUp(t, r, "bob")

	var added struct {
		CommentID string `json:"commentId"`
	}
	w := do(r, http.MethodPost, "/movie/42/addComment", url.Values{"content": {"  loved it  "}, "title": {"Inception"}}, alice)
	decode(t, w, &added)
	if w.Code != http.StatusOK || added.CommentID == "" {
		t.Fatalf("add comment = %d body %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/movie/42/addComment", url.Values{"content": {"   "}}, alice)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank comment status = %d, want 400", w.Code)
	}

	w = do(r, http.MethodPost, "/movie/42/deleteComment", url.Values{"commentId": {added.CommentID}}, bob)
	if w.Code != http.StatusForbidden {
		t.Errorf("delete by other user status = %d, want 403", w.Code)
	}

	w = do(r, http.MethodPost, "/movie/42/deleteComment", url.Values{"commentId": {added.CommentID}}, alice)
	if w.Code != http.StatusOK {
		t.Errorf("delete by author status = %d body %s", w.Code, w.Body.String())
	}
}

func TestFriendRequestRoutes(t *testing.T) {
	r := newTestRouter(t)
	alice, _ := signUp(t, r, "alice")
	bob, bobID := signUp(t, r, "bob")

	w := do(r, http.MethodPost, "/friends/sendRequest", url.Values{}, alice)
	env := decode(t, w, nil)
	if w.Code != http.StatusBadRequest || env.Message != "Receiver ID is required" {
		t.Fatalf("missing receiver = %d %q", w.Code, env.Message)
	}

	var sent struct {
		Success   bool   `json:"success"`
		RequestID string `json:"requestId"`
	}
	w = do(r, http.MethodPost, "/friends/sendRequest", url.Values{"receiverId": {bobID}}, alice)
	decode(t, w, &sent)
	if w.Code != http.StatusOK || !sent.Success || sent.RequestID == "" {
		t.Fatalf("send request = %d body %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/friends/sendRequest", url.Values{"receiverId": {bobID}}, alice)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate request status = %d, want 409", w.Code)
	}

	w = do(r, http.MethodPost, "/friends/acceptRequest", url.Values{"requestId": {sent.RequestID}}, alice)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("requester accepting status = %d, want 401", w.Code)
	}

	var page struct {
		ReceivedRequests []struct {
			ID string `json:"id"`
		} `json:"receivedRequests"`
		PendingCount int64 `json:"pendingCount"`
	}
	w = do(r, http.MethodGet, "/friends", nil, bob)
	decode(t, w, &page)
	if len(page.ReceivedRequests) != 1 || page.PendingCount != 1 {
		t.Fatalf("bob's friends page = %+v", page)
	}

	w = do(r, http.MethodPost, "/friends/acceptRequest", url.Values{"requestId": {sent.RequestID}}, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("accept status = %d body %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/friends/declineRequest", url.Values{"requestId": {sent.RequestID}}, bob)
	if w.Code != http.StatusBadRequest {
		t.Errorf("decline after accept status = %d, want 400", w.Code)
	}

	var friendsPage struct {
		Friends []struct {
			Username string `json:"username"`
		} `json:"friends"`
	}
	w = do(r, http.MethodGet, "/friends", nil, alice)
	decode(t, w, &friendsPage)
	if len(friendsPage.Friends) != 1 || friendsPage.Friends[0].Username != "bob" {
		t.Errorf("alice's friends = %+v", friendsPage.Friends)
	}
}

func TestSearchWithEmptyQuery(t *testing.T) {
	r := newTestRouter(t)

	var page struct {
		Movies      []json.RawMessage `json:"movies"`
		CurrentPage int               `json:"currentPage"`
		TotalPages  int               `json:"totalPages"`
	}
	w := do(r, http.MethodGet, "/search?q=%20", nil, nil)
	decode(t, w, &page)
	if w.Code != http.StatusOK || len(page.Movies) != 0 || page.CurrentPage != 1 || page.TotalPages != 0 {
		t.Errorf("empty search = %d %+v", w.Code, page)
	}
}
