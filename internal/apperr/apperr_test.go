package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"self request", ErrSelfRequest, http.StatusBadRequest},
		{"not pending", ErrNotPending, http.StatusBadRequest},
		{"not authorized", NotAuthorized("no"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"already friends", ErrAlreadyFriends, http.StatusConflict},
		{"upstream", Upstream("tmdb", errors.New("503")), http.StatusBadGateway},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("accept: %w", ErrAlreadyPending), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessageHidesInternalErrors(t *testing.T) {
	err := Store("create movie failed", errors.New("dial tcp: connection refused"))
	if got := PublicMessage(err); got != "An unexpected error occurred. Please try again." {
		t.Errorf("PublicMessage() = %q", got)
	}
	if got := PublicMessage(Validation("Movie ID is required.")); got != "Movie ID is required." {
		t.Errorf("PublicMessage() = %q", got)
	}
}

func TestSentinelsMatchWithErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("send request: %w", ErrAlreadyPending)
	if !errors.Is(wrapped, ErrAlreadyPending) {
		t.Error("errors.Is should match the sentinel through wrapping")
	}
	if errors.Is(wrapped, ErrAlreadyFriends) {
		t.Error("different sentinels must not match")
	}
}
