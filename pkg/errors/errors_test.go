// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code matching

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/picoforge/picoforge/pkg/errors"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "bare_error",
			err:  errors.New(errors.ErrStdlibConflict, "'base64' is part of the MicroPython standard library"),
			want: "[STDLIB_CONFLICT] 'base64' is part of the MicroPython standard library",
		},
		{
			name: "formatted_error",
			err:  errors.Newf(errors.ErrTransport, "server returned %d for %s", 502, "index.json"),
			want: "[TRANSPORT] server returned 502 for index.json",
		},
		{
			name: "wrapped_error_appends_cause",
			err:  errors.Wrap(stderrors.New("connection reset"), errors.ErrTransport, "fetching catalog"),
			want: "[TRANSPORT] fetching catalog: connection reset",
		},
		{
			name: "wrapf_formats_before_appending",
			err:  errors.Wrapf(stderrors.New("exit status 1"), errors.ErrCompile, "compiling %s", "main.py"),
			want: "[COMPILE] compiling main.py: exit status 1",
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

func TestConstructors(t *testing.T) {
	t.Run("new_initializes_details", func(t *testing.T) {
		err := errors.New(errors.ErrPackageNotFound, "package not in index")

		if err.Code != errors.ErrPackageNotFound {
			t.Errorf("New() code = %v, want %v", err.Code, errors.ErrPackageNotFound)
		}
		if err.Message != "package not in index" {
			t.Errorf("New() message = %q", err.Message)
		}
		if err.Details == nil {
			t.Error("New() should initialize the details map")
		}
	})

	t.Run("wrap_preserves_the_cause", func(t *testing.T) {
		cause := stderrors.New("permission denied")
		err := errors.Wrap(cause, errors.ErrFileWrite, "writing umqtt/simple.py")

		if err.Wrapped != cause {
			t.Error("Wrap() should keep the original error")
		}
		if !stderrors.Is(err, cause) {
			t.Error("errors.Is should reach the cause through Wrap()")
		}
	})

	t.Run("wrapping_nil_stays_nil", func(t *testing.T) {
		if errors.Wrap(nil, errors.ErrInternal, "unused") != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if errors.Wrapf(nil, errors.ErrInternal, "unused %d", 1) != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestDetails(t *testing.T) {
	t.Run("with_detail_chains", func(t *testing.T) {
		err := errors.New(errors.ErrTransport, "request failed").
			WithDetail("status", 503).
			WithDetail("reason", "Service Unavailable")

		if err.Details["status"] != 503 {
			t.Errorf("status detail = %v, want 503", err.Details["status"])
		}
		if err.Details["reason"] != "Service Unavailable" {
			t.Errorf("reason detail = %v", err.Details["reason"])
		}
	})

	t.Run("with_details_merges", func(t *testing.T) {
		err := errors.New(errors.ErrCompile, "rejected").
			WithDetail("source", "boot.py").
			WithDetails(map[string]interface{}{
				"exit_code": 1,
				"stderr":    "SyntaxError",
			})

		for k, want := range map[string]interface{}{
			"source":    "boot.py",
			"exit_code": 1,
			"stderr":    "SyntaxError",
		} {
			if got := err.Details[k]; got != want {
				t.Errorf("detail %s = %v, want %v", k, got, want)
			}
		}
	})

	t.Run("get_error_details_sees_through_the_interface", func(t *testing.T) {
		var err error = errors.New(errors.ErrTransport, "request failed").WithDetail("status", 404)

		details := errors.GetErrorDetails(err)
		if details["status"] != 404 {
			t.Errorf("GetErrorDetails()[status] = %v, want 404", details["status"])
		}
		if errors.GetErrorDetails(stderrors.New("plain")) != nil {
			t.Error("plain errors carry no details")
		}
	})
}

func TestCodeMatching(t *testing.T) {
	conflict := errors.New(errors.ErrStdlibConflict, "'os' is part of the MicroPython standard library")
	timeout := errors.Wrapf(stderrors.New("context deadline exceeded"),
		errors.ErrCompileTimeout, "compilation of %s timed out", "main.py")

	t.Run("is_matches_on_code_alone", func(t *testing.T) {
		other := errors.New(errors.ErrStdlibConflict, "different message")
		if !conflict.Is(other) {
			t.Error("Is() should match two errors with the same code")
		}
		if conflict.Is(timeout) {
			t.Error("Is() should reject a different code")
		}
		if !stderrors.Is(conflict, other) {
			t.Error("stdlib errors.Is should defer to Is()")
		}
	})

	t.Run("is_error_code_unwraps", func(t *testing.T) {
		outer := fmt.Errorf("compile step: %w", timeout)
		if !errors.IsErrorCode(outer, errors.ErrCompileTimeout) {
			t.Error("IsErrorCode should see through fmt.Errorf wrapping")
		}
		if errors.IsErrorCode(outer, errors.ErrCompile) {
			t.Error("IsErrorCode must not match a sibling code")
		}
		if errors.IsErrorCode(nil, errors.ErrCompile) {
			t.Error("nil carries no code")
		}
		if errors.IsErrorCode(stderrors.New("plain"), errors.ErrCompile) {
			t.Error("plain errors carry no code")
		}
	})

	t.Run("get_error_code_defaults_to_unhandled", func(t *testing.T) {
		if got := errors.GetErrorCode(conflict); got != errors.ErrStdlibConflict {
			t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrStdlibConflict)
		}
		if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnhandled {
			t.Errorf("GetErrorCode(plain) = %v, want %v", got, errors.ErrUnhandled)
		}
		if got := errors.GetErrorCode(nil); got != errors.ErrUnhandled {
			t.Errorf("GetErrorCode(nil) = %v, want %v", got, errors.ErrUnhandled)
		}
	})
}

func TestWrappedChain(t *testing.T) {
	// A transport failure inside a file fetch, the way the installer
	// produces it.
	cause := stderrors.New("connection reset by peer")
	fetch := errors.Wrapf(cause, errors.ErrTransport, "downloading %s", "ab/abcdef")
	install := errors.Wrap(fetch, errors.ErrFileWrite, "installing umqtt.simple")

	if !errors.IsErrorCode(install, errors.ErrFileWrite) {
		t.Error("outermost code should win")
	}

	var mid *errors.ForgeError
	if !stderrors.As(install.Unwrap(), &mid) || mid.Code != errors.ErrTransport {
		t.Error("middle error should keep its transport code")
	}

	if !stderrors.Is(install, cause) {
		t.Error("the root cause should stay reachable")
	}
}
