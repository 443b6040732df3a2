package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Count int    `json:"count" validate:"min=1,max=20"`
}

func bindOn(t *testing.T, body string) (*samplePayload, bool, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	payload, ok := bindAndValidate[samplePayload](c)
	return payload, ok, rec
}

func TestBindAndValidateAcceptsValidPayload(t *testing.T) {
	payload, ok, _ := bindOn(t, `{"email":"ana@example.com","count":5}`)
	require.True(t, ok)
	require.Equal(t, "ana@example.com", payload.Email)
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	_, ok, rec := bindOn(t, `{"email":`)
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestBindAndValidateReportsFieldFailures(t *testing.T) {
	_, ok, rec := bindOn(t, `{"email":"not-an-email","count":99}`)
	require.False(t, ok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "VALIDATION_ERROR")
	require.Contains(t, body, "email")
	require.Contains(t, body, "count")
}
