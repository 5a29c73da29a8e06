package weberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResponseThroughWrapping(t *testing.T) {
	base := errors.New("cart line not found")
	err := fmt.Errorf("handler: %w", Expose(base, http.StatusNotFound))

	body, status, ok := Response(err)
	if !ok {
		t.Fatal("expected a response to be found through %w wrapping")
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, status)
	}
	if diff := cmp.Diff(&ErrorResponse{Error: "cart line not found"}, body); diff != "" {
		t.Fatalf("unexpected body (-want +got):\n%s", diff)
	}
	if !errors.Is(err, base) {
		t.Fatal("wrapped error must still match its cause")
	}
}

func TestStatus(t *testing.T) {
	if got := Status(nil); got != http.StatusOK {
		t.Fatalf("nil error: expected 200, got %d", got)
	}
	if got := Status(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("plain error: expected 500, got %d", got)
	}
	if got := Status(BadRequest(errors.New("bad"))); got != http.StatusBadRequest {
		t.Fatalf("bad request: expected 400, got %d", got)
	}
}

func TestFieldsMerge(t *testing.T) {
	inner := Wrap(errors.New("x"), WithFields(map[string]any{"user_id": "u1", "step": "inner"}))
	outer := Wrap(fmt.Errorf("wrap: %w", inner), WithFields(map[string]any{"step": "outer"}))

	got, ok := Fields(outer)
	if !ok {
		t.Fatal("expected fields")
	}
	want := map[string]any{"user_id": "u1", "step": "outer"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}

	if _, ok := Fields(errors.New("plain")); ok {
		t.Fatal("plain error must have no fields")
	}
}
