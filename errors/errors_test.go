package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseRelease,
				Kind:      KindCall,
				Family:    "wallet",
				Handle:    7,
				HasHandle: true,
				Detail:    "call release",
			},
			contains: []string{"[release]", "call", "in wallet", "handle 7", "call release"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAccess,
				Kind:  KindNotInitialized,
			},
			contains: []string{"[access]", "not_initialized"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "compile guest",
				Cause:  errors.New("bad magic"),
			},
			contains: []string{"[load]", "invalid_data", "compile guest", "caused by", "bad magic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_HandleZeroIsPrinted(t *testing.T) {
	err := New(PhaseRelease, KindInvalidInput).Handle(0).Build()
	if !strings.Contains(err.Error(), "handle 0") {
		t.Errorf("explicit zero handle missing from %q", err.Error())
	}

	noHandle := New(PhaseRelease, KindInvalidInput).Build()
	if strings.Contains(noHandle.Error(), "handle") {
		t.Errorf("unexpected handle in %q", noHandle.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseRuntime,
		Kind:  KindCall,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseAccess,
		Kind:   KindNotInitialized,
		Family: "connection",
	}

	if !err.Is(&Error{Phase: PhaseAccess, Kind: KindNotInitialized}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseRelease, Kind: KindNotInitialized}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseAccess, Kind: KindInvalidInput}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseAccess, Kind: KindNotInitialized}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseRelease, KindCall).
		Family("credential").
		Handle(42).
		Value("trap").
		Cause(cause).
		Detail("export %s returned %d values", "release", 2).
		Build()

	if err.Phase != PhaseRelease {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRelease)
	}
	if err.Kind != KindCall {
		t.Errorf("Kind = %v, want %v", err.Kind, KindCall)
	}
	if err.Family != "credential" {
		t.Errorf("Family = %v, want 'credential'", err.Family)
	}
	if !err.HasHandle || err.Handle != 42 {
		t.Errorf("Handle = %v (set %v), want 42", err.Handle, err.HasHandle)
	}
	if err.Value != "trap" {
		t.Errorf("Value = %v, want 'trap'", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "export release returned 2 values" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("NotInitialized", func(t *testing.T) {
		err := NotInitialized(PhaseAccess, "guard handle")
		if err.Kind != KindNotInitialized {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotInitialized)
		}
		if !strings.Contains(err.Detail, "guard handle") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("AlreadyInstalled", func(t *testing.T) {
		err := AlreadyInstalled(3, 9)
		if err.Kind != KindAlreadyInstalled || err.Phase != PhaseInstall {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.Handle != 9 || err.Value != uint32(3) {
			t.Errorf("Handle=%v Value=%v", err.Handle, err.Value)
		}
	})

	t.Run("Copied", func(t *testing.T) {
		err := Copied(PhaseAccess, 77)
		if err.Kind != KindCopied || err.Phase != PhaseAccess {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !err.HasHandle || err.Handle != 77 {
			t.Errorf("Handle=%v HasHandle=%v", err.Handle, err.HasHandle)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseStartup, "runtime cleanups")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLoad, "export", "alive")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Detail, `"alive"`) {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		err := Exhausted("wallet", 128)
		if err.Kind != KindExhausted || err.Family != "wallet" {
			t.Errorf("got %v in %v", err.Kind, err.Family)
		}
		if err.Value != 128 {
			t.Errorf("Value = %v, want 128", err.Value)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		err := Closed(PhaseRuntime, "connection")
		if err.Kind != KindClosed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindClosed)
		}
	})

	t.Run("Call", func(t *testing.T) {
		cause := errors.New("wasm trap")
		err := Call("connection", "open", cause)
		if err.Kind != KindCall || !errors.Is(err, cause) {
			t.Errorf("unexpected %v", err)
		}
	})

	t.Run("Instantiation", func(t *testing.T) {
		err := Instantiation("wallet", errors.New("duplicate name"))
		if err.Kind != KindInstantiation || err.Family != "wallet" {
			t.Errorf("unexpected %v", err)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("inner")
		err := Wrap(PhaseLoad, KindInvalidData, cause, "read guest")
		if !errors.Is(err, cause) {
			t.Error("Wrap lost the cause")
		}
	})
}
