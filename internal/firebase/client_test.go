package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToolkit struct {
	t        *testing.T
	lastBody map[string]any
	lastPath string
	lastKey  string
}

func (f *fakeToolkit) handler(w http.ResponseWriter, r *http.Request) {
	f.lastPath = r.URL.Path
	f.lastKey = r.URL.Query().Get("key")
	f.lastBody = map[string]any{}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.lastBody))

	writeErr := func(msg string) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": msg}})
	}

	switch r.URL.Path {
	case "/v1/accounts:signInWithPassword":
		switch f.lastBody["email"] {
		case "nadie@farma.bo":
			writeErr("EMAIL_NOT_FOUND")
		case "ana@farma.bo":
			if f.lastBody["password"] != "secreta" {
				writeErr("INVALID_LOGIN_CREDENTIALS")
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"idToken": "fb-ana", "email": "ana@farma.bo", "localId": "u1"})
		default:
			writeErr("INVALID_EMAIL")
		}
	case "/v1/accounts:signUp":
		if pw, _ := f.lastBody["password"].(string); len(pw) < 6 {
			writeErr("WEAK_PASSWORD : Password should be at least 6 characters")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"idToken": "fb-new", "email": f.lastBody["email"]})
	case "/v1/accounts:lookup":
		_ = json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{{"localId": "u1", "email": "ana@farma.bo", "emailVerified": true}}})
	case "/v1/accounts:sendOobCode", "/v1/accounts:signInWithIdp":
		_ = json.NewEncoder(w).Encode(map[string]any{"idToken": "fb-google", "email": "ana@gmail.com"})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	}
}

func newClient(t *testing.T) (*Client, *fakeToolkit) {
	t.Helper()
	f := &fakeToolkit{t: t}
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "AIza-test", Endpoint: srv.URL + "/v1/"}), f
}

func TestSignInWithPassword(t *testing.T) {
	c, f := newClient(t)
	ctx := context.Background()

	cred, err := c.SignInWithPassword(ctx, "ana@farma.bo", "secreta")
	require.NoError(t, err)
	assert.Equal(t, "fb-ana", cred.IDToken)
	assert.Equal(t, "AIza-test", f.lastKey)
	assert.Equal(t, true, f.lastBody["returnSecureToken"])

	_, err = c.SignInWithPassword(ctx, "nadie@farma.bo", "x")
	assert.Equal(t, CodeUserNotFound, CodeOf(err))

	_, err = c.SignInWithPassword(ctx, "ana@farma.bo", "otra")
	assert.Equal(t, CodeInvalidCredential, CodeOf(err))

	_, err = c.SignInWithPassword(ctx, "no-es-correo", "x")
	assert.Equal(t, CodeInvalidEmail, CodeOf(err))
	assert.EqualError(t, err, "Firebase: Error (auth/invalid-email).")
}

func TestSignUp_WeakPasswordWithDetail(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.SignUp(context.Background(), "nuevo@farma.bo", "123")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, CodeWeakPassword, fe.Code)
	assert.Equal(t, http.StatusBadRequest, fe.StatusCode)
}

func TestSendOobCodeRequestTypes(t *testing.T) {
	c, f := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.SendEmailVerification(ctx, "fb-new"))
	assert.Equal(t, "VERIFY_EMAIL", f.lastBody["requestType"])
	assert.Equal(t, "fb-new", f.lastBody["idToken"])

	require.NoError(t, c.SendPasswordReset(ctx, "ana@farma.bo"))
	assert.Equal(t, "PASSWORD_RESET", f.lastBody["requestType"])
	assert.Equal(t, "ana@farma.bo", f.lastBody["email"])
}

func TestSignInWithIdp_PostBody(t *testing.T) {
	c, f := newClient(t)
	cred, err := c.SignInWithIdp(context.Background(), "google.com", "google-id-token", "https://tienda.farma.bo")
	require.NoError(t, err)
	assert.Equal(t, "fb-google", cred.IDToken)

	post, err := url.ParseQuery(f.lastBody["postBody"].(string))
	require.NoError(t, err)
	assert.Equal(t, "google-id-token", post.Get("id_token"))
	assert.Equal(t, "google.com", post.Get("providerId"))
	assert.Equal(t, "https://tienda.farma.bo", f.lastBody["requestUri"])
}

func TestLookup(t *testing.T) {
	c, f := newClient(t)
	u, err := c.Lookup(context.Background(), "fb-ana")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Equal(t, "/v1/accounts:lookup", f.lastPath)
}

func TestParseError(t *testing.T) {
	assert.Equal(t, CodeInternalError, parseError(500, []byte("<html>")).Code)
	assert.Equal(t, "auth/credential-too-old-login-again", parseError(400, []byte(`{"error":{"message":"CREDENTIAL_TOO_OLD_LOGIN_AGAIN"}}`)).Code)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err := New(Config{Endpoint: srv.URL}).SignInWithPassword(context.Background(), "a@b.c", "x")
	assert.Equal(t, CodeNetworkFailed, CodeOf(err))
}
