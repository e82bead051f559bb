package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("connect: %w", Wrap(KindConnection, "failed to initialize MySQL database", cause))

	if got := KindOf(err); got != KindConnection {
		t.Fatalf("KindOf() = %q, want %q", got, KindConnection)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
	if !Is(err, KindConnection) || Is(err, KindExecution) {
		t.Fatalf("Is() mismatch for %v", err)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != "" {
		t.Fatalf("KindOf() = %q, want empty", got)
	}
	if Is(nil, KindConfiguration) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Configuration("unsupported database type: %q", "sqlite")
	if err.Error() != `unsupported database type: "sqlite"` {
		t.Fatalf("Error() = %q", err.Error())
	}
	wrapped := Wrap(KindExecution, "execute query", errors.New("unknown column"))
	if wrapped.Error() != "execute query: unknown column" {
		t.Fatalf("Error() = %q", wrapped.Error())
	}
}
