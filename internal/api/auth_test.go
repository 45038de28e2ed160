package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterLoginMe(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      "ada@example.com",
		"username":   "ada",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "correct-horse",
	})
	requireStatus(t, w, http.StatusCreated)
	registered := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ada", registered["username"])
	assert.NotContains(t, registered, "password")

	w = a.do(t, http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse",
	})
	requireStatus(t, w, http.StatusOK)
	token := decode[types.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	w = a.do(t, http.MethodGet, "/api/users/me/", token, nil)
	requireStatus(t, w, http.StatusOK)
	me := decode[types.UserView](t, w)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.False(t, me.IsSubscribed)

	requireStatus(t, a.do(t, http.MethodPost, "/api/auth/token/logout/", token, nil), http.StatusNoContent)
	requireStatus(t, a.do(t, http.MethodGet, "/api/users/me/", "", nil), http.StatusUnauthorized)
}

func TestLoginFailures(t *testing.T) {
	a := newTestAPI(t)
	a.CreateUser(t, "ada")

	w := a.do(t, http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "validation", decode[errorBody](t, w).Error)

	w = a.do(t, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      "ada@example.com",
		"username":   "ada2",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "correct-horse",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "is already registered", decode[errorBody](t, w).Details["email"])
}

func TestSetPasswordEndpoint(t *testing.T) {
	a := newTestAPI(t)
	user := a.CreateUser(t, "ada")
	token := a.Token(t, user)

	w := a.do(t, http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": "nope",
		"new_password":     "brand-new-pass",
	})
	requireStatus(t, w, http.StatusBadRequest)

	w = a.do(t, http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": testhelpers.Password,
		"new_password":     "brand-new-pass",
	})
	requireStatus(t, w, http.StatusNoContent)

	w = a.do(t, http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    user.Email,
		"password": "brand-new-pass",
	})
	requireStatus(t, w, http.StatusOK)
}
