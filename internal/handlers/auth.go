package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/andympr/my-wedding-backend/internal/auth"
	"github.com/andympr/my-wedding-backend/internal/middleware"
	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/internal/services"
	"github.com/andympr/my-wedding-backend/pkg/metrics"
	"github.com/andympr/my-wedding-backend/pkg/response"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type tokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *userResponse `json:"user,omitempty"`
}

// AuthHandler serves login, token refresh, and identity endpoints.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService) (*AuthHandler, error) {
	if users == nil || jwt == nil {
		return nil, fmt.Errorf("auth handler requires user service and jwt service")
	}
	return &AuthHandler{users: users, jwt: jwt}, nil
}

// Login exchanges email/password credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindAndValidate[loginRequest](c)
	if !ok {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID, Role: user.Role})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, apperrors.Wrap(err, "failed to issue access token"))
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.jwt.AccessTokenTTL().Seconds()),
		User:        newUserResponse(user),
	})
}

// Refresh re-issues a token for the authenticated bearer.
func (h *AuthHandler) Refresh(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: claims.UserID, Role: claims.Role})
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to issue access token"))
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.jwt.AccessTokenTTL().Seconds()),
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, newUserResponse(user))
}

// Logout acknowledges the client discarding its token. Tokens are stateless,
// so there is nothing to revoke server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func claimsFromContext(c *gin.Context) (*iauth.Claims, bool) {
	v, ok := c.Get(middleware.CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*iauth.Claims)
	return claims, ok && claims != nil
}

func newUserResponse(user *models.User) *userResponse {
	if user == nil {
		return nil
	}
	return &userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
