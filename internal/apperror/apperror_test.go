package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnwrapThroughWrapping(t *testing.T) {
	// Services wrap repository errors with fmt.Errorf("...: %w", err).
	// Classification via errors.Is must survive that wrapping.
	wrapped := fmt.Errorf("registering user: %w", DuplicateEmail())

	if !errors.Is(wrapped, ErrDuplicateEmail) {
		t.Error("errors.Is(wrapped, ErrDuplicateEmail) = false, want true")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is(wrapped, ErrNotFound) = true, want false")
	}
}

func TestAppErrorExtraction(t *testing.T) {
	wrapped := fmt.Errorf("validating input: %w", ValidationFailed([]string{"Nem valós email cím"}))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to extract *AppError")
	}
	if appErr.Message != "Hibás bemeneti adat(ok)" {
		t.Errorf("Message = %q", appErr.Message)
	}
	if len(appErr.Errors) != 1 || appErr.Errors[0] != "Nem valós email cím" {
		t.Errorf("Errors = %v", appErr.Errors)
	}
}

func TestResolutionKeepsCause(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := Resolution(cause)

	if !errors.Is(err, ErrResolution) {
		t.Error("Resolution error does not match ErrResolution")
	}
	if !errors.Is(err, cause) {
		t.Error("Resolution error lost its cause")
	}
	if err.Message != "Hiba a token ellenőrzése során" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestClientMessages(t *testing.T) {
	// These strings are part of the public API contract.
	tests := []struct {
		err  *AppError
		want string
	}{
		{DuplicateEmail(), "Az email cím már foglalt"},
		{MissingCredential(), "Nincs token megadva"},
		{ForbiddenRole(), "Hozzáférés megtagadva. Nem megfelelő szerepkör."},
		{AccountNotFound(), "A fiók nem található."},
		{AccountDisabled(), "A fiók le van tiltva."},
		{RegistrationPending(), "A fiókregisztráció nincs jóváhagyva."},
		{TokenExhausted(), "Túl sok próbálkozás a token generálás során"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
