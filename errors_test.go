package protomap

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zero-day-ai/protomap/internal/testpb"
)

// TestSentinelErrors verifies that all sentinel errors are defined correctly.
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "ErrUnknownField", err: ErrUnknownField, want: "unknown field"},
		{name: "ErrTypeMismatch", err: ErrTypeMismatch, want: "type mismatch"},
		{name: "ErrInvalidEnum", err: ErrInvalidEnum, want: "invalid enum value"},
		{name: "ErrNilMessage", err: ErrNilMessage, want: "proto message is nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("sentinel error %s is nil", tt.name)
			}
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("error message = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFieldErrorError verifies the Error() method formatting.
func TestFieldErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *FieldError
		want string
	}{
		{
			name: "without path",
			err:  &FieldError{Op: opToMap, Err: ErrNilMessage},
			want: "protomap: ToMap: proto message is nil",
		},
		{
			name: "with path",
			err:  &FieldError{Op: opToMessage, Path: "str_to_msg_map[a].str_val", Err: ErrTypeMismatch},
			want: "protomap: ToMessage: str_to_msg_map[a].str_val: type mismatch",
		},
		{
			name: "unknown field",
			err: &FieldError{
				Op:   opToMessage,
				Path: "bad",
				Err:  &UnknownFieldError{Message: "protomap.test.Message", Name: "bad"},
			},
			want: `protomap: ToMessage: bad: protomap.test.Message has no field "bad"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFieldErrorUnwrap verifies errors.Is and errors.As see through FieldError.
func TestFieldErrorUnwrap(t *testing.T) {
	override := errors.New("override failed")
	err := fmt.Errorf("outer: %w", &FieldError{Op: opToMap, Path: "bytes_val", Err: override})

	if !errors.Is(err, override) {
		t.Error("errors.Is should find the override error")
	}

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatal("errors.As should find the FieldError")
	}
	if fe.Path != "bytes_val" {
		t.Errorf("Path = %q, want %q", fe.Path, "bytes_val")
	}
}

// TestUnknownFieldErrorIs verifies UnknownFieldError matches its sentinel only.
func TestUnknownFieldErrorIs(t *testing.T) {
	err := error(&FieldError{Op: opToMessage, Err: &UnknownFieldError{Message: "a.B", Name: "x"}})

	if !errors.Is(err, ErrUnknownField) {
		t.Error("expected errors.Is(err, ErrUnknownField)")
	}
	if errors.Is(err, ErrTypeMismatch) {
		t.Error("UnknownFieldError must not match ErrTypeMismatch")
	}

	var ufe *UnknownFieldError
	if !errors.As(err, &ufe) || ufe.Name != "x" {
		t.Errorf("errors.As = %+v", ufe)
	}
}

// TestMismatch verifies the mismatch helper names the Go type and field kind.
func TestMismatch(t *testing.T) {
	m := testpb.New(testpb.MessageName)
	fd := testpb.Field(m, "int32_val")

	err := mismatch(fd, "x")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatal("mismatch should wrap ErrTypeMismatch")
	}
	if !strings.Contains(err.Error(), "string") || !strings.Contains(err.Error(), "INT32") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
