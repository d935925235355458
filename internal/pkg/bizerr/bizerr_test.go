package bizerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAs(t *testing.T) {
	notFound := NotFound("User not found")
	wrapped := fmt.Errorf("get user: %w", notFound)

	e, ok := As(wrapped)
	if !ok {
		t.Fatalf("expected biz error in chain")
	}
	if e.Code != http.StatusNotFound || e.Msg != "User not found" {
		t.Fatalf("unexpected biz error: %+v", e)
	}
	if !errors.Is(wrapped, notFound) {
		t.Fatalf("expected errors.Is to match sentinel")
	}

	if _, ok := As(errors.New("boom")); ok {
		t.Fatalf("plain error must not be a biz error")
	}
}
