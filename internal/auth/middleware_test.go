package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

type fakeTokenResolver struct {
	userIDs map[string]int64
	roles   map[string]*model.Role
	roleErr error
}

func (f *fakeTokenResolver) LookupValid(_ context.Context, token string) (int64, error) {
	id, ok := f.userIDs[token]
	if !ok {
		return 0, apperror.InvalidCredential("Érvénytelen token")
	}
	return id, nil
}

func (f *fakeTokenResolver) ResolveRole(_ context.Context, token string) (*model.Role, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	return f.roles[token], nil
}

type fakeProfileGate struct {
	flags map[int64]repository.ProfileFlags
}

func (f *fakeProfileGate) Flags(_ context.Context, _ repository.ProfileKind, userID int64) (repository.ProfileFlags, error) {
	flags, ok := f.flags[userID]
	if !ok {
		return repository.ProfileFlags{}, apperror.AccountNotFound()
	}
	return flags, nil
}

func newTestMiddleware(tokens *fakeTokenResolver, profiles *fakeProfileGate) *Middleware {
	return NewMiddleware(tokens, profiles, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// okHandler records that the chain let the request through.
func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set(HeaderToken, token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body.Code, body.Message
}

func TestRequireToken_MissingHeader(t *testing.T) {
	m := newTestMiddleware(&fakeTokenResolver{}, &fakeProfileGate{})
	var called bool

	rec := doRequest(t, m.RequireToken(okHandler(&called)), "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("handler ran without a token")
	}
	if _, msg := decodeEnvelope(t, rec); msg != "Nincs token megadva" {
		t.Errorf("message = %q", msg)
	}
}

func TestRequireToken_InvalidToken(t *testing.T) {
	m := newTestMiddleware(&fakeTokenResolver{userIDs: map[string]int64{}}, &fakeProfileGate{})
	var called bool

	rec := doRequest(t, m.RequireToken(okHandler(&called)), "revoked")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if _, msg := decodeEnvelope(t, rec); msg != "Érvénytelen token" {
		t.Errorf("message = %q", msg)
	}
}

func TestRequireToken_PutsIdentityInContext(t *testing.T) {
	m := newTestMiddleware(&fakeTokenResolver{userIDs: map[string]int64{"good": 7}}, &fakeProfileGate{})

	var gotUserID int64
	var gotToken string
	h := m.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		gotToken, _ = TokenFromContext(r.Context())
	}))

	rec := doRequest(t, h, "good")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != 7 || gotToken != "good" {
		t.Errorf("context identity = (%d, %q), want (7, good)", gotUserID, gotToken)
	}
}

func TestRequireAccepted_PendingRegistration(t *testing.T) {
	tokens := &fakeTokenResolver{userIDs: map[string]int64{"t": 1}}
	profiles := &fakeProfileGate{flags: map[int64]repository.ProfileFlags{
		1: {Enabled: true, Accepted: false},
	}}
	m := newTestMiddleware(tokens, profiles)
	var called bool

	h := m.RequireToken(m.RequireAccepted(repository.ProfileInstitution)(okHandler(&called)))
	rec := doRequest(t, h, "t")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if called {
		t.Error("handler ran for a pending registration")
	}
	if _, msg := decodeEnvelope(t, rec); msg != "A fiókregisztráció nincs jóváhagyva." {
		t.Errorf("message = %q", msg)
	}
}

func TestRequireEnabled_DisabledAccount(t *testing.T) {
	tokens := &fakeTokenResolver{userIDs: map[string]int64{"t": 1}}
	profiles := &fakeProfileGate{flags: map[int64]repository.ProfileFlags{
		1: {Enabled: false, Accepted: true},
	}}
	m := newTestMiddleware(tokens, profiles)
	var called bool

	h := m.RequireToken(m.RequireEnabled(repository.ProfilePerson)(okHandler(&called)))
	rec := doRequest(t, h, "t")

	if rec.Code != http.StatusNotAcceptable {
		t.Errorf("status = %d, want 406", rec.Code)
	}
	if _, msg := decodeEnvelope(t, rec); msg != "A fiók le van tiltva." {
		t.Errorf("message = %q", msg)
	}
}

func TestFlagGates_MissingProfileRow(t *testing.T) {
	tokens := &fakeTokenResolver{userIDs: map[string]int64{"t": 99}}
	m := newTestMiddleware(tokens, &fakeProfileGate{flags: map[int64]repository.ProfileFlags{}})
	var called bool

	// The gate keeps its own status code even for the missing-account case.
	h := m.RequireToken(m.RequireAccepted(repository.ProfilePerson)(okHandler(&called)))
	rec := doRequest(t, h, "t")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if _, msg := decodeEnvelope(t, rec); msg != "A fiók nem található." {
		t.Errorf("message = %q", msg)
	}
}

func TestRequireRole_WrongRole(t *testing.T) {
	tokens := &fakeTokenResolver{
		userIDs: map[string]int64{"t": 1},
		roles:   map[string]*model.Role{"t": {ID: model.RoleIDPerson, Name: model.RolePerson}},
	}
	m := newTestMiddleware(tokens, &fakeProfileGate{})
	var called bool

	h := m.RequireToken(m.ResolveRole(m.RequireRole(model.RoleInstitution)(okHandler(&called))))
	rec := doRequest(t, h, "t")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if called {
		t.Error("handler ran for the wrong role")
	}
	if _, msg := decodeEnvelope(t, rec); msg != "Hozzáférés megtagadva. Nem megfelelő szerepkör." {
		t.Errorf("message = %q", msg)
	}
}

func TestResolveRole_Failure(t *testing.T) {
	tokens := &fakeTokenResolver{
		userIDs: map[string]int64{"t": 1},
		roleErr: errors.New("join blew up"),
	}
	m := newTestMiddleware(tokens, &fakeProfileGate{})
	var called bool

	h := m.RequireToken(m.ResolveRole(okHandler(&called)))
	rec := doRequest(t, h, "t")

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
	if _, msg := decodeEnvelope(t, rec); msg != "Hiba a token ellenőrzése során" {
		t.Errorf("message = %q", msg)
	}
}

func TestGateForRole_FullChainHappyPath(t *testing.T) {
	tokens := &fakeTokenResolver{
		userIDs: map[string]int64{"t": 1},
		roles:   map[string]*model.Role{"t": {ID: model.RoleIDPerson, Name: model.RolePerson}},
	}
	profiles := &fakeProfileGate{flags: map[int64]repository.ProfileFlags{
		1: {Enabled: true, Accepted: true},
	}}
	m := newTestMiddleware(tokens, profiles)

	var called bool
	var h http.Handler = okHandler(&called)
	chain := m.GateForRole(model.RolePerson)
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}

	rec := doRequest(t, h, "t")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !called {
		t.Error("handler did not run behind a passing chain")
	}
}
