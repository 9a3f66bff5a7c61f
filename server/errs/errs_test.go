package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("merge: %w", Schemaf("half_size %d != %d", 26, 10))
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if errors.Is(err, ErrConfiguration) {
		t.Fatalf("schema error must not match configuration")
	}
}

func TestStorageWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage("save batch", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage code")
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("nil cause should give nil error")
	}
}

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Configurationf("bad"), http.StatusBadRequest},
		{Schemaf("bad"), http.StatusBadRequest},
		{NotFoundf("missing"), http.StatusNotFound},
		{Storage("io", errors.New("x")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		code, ok := CodeOf(tt.err)
		if !ok {
			t.Fatalf("no code in %v", tt.err)
		}
		if got := code.HTTPStatus(); got != tt.want {
			t.Fatalf("%s: status %d, want %d", code, got, tt.want)
		}
	}
}
