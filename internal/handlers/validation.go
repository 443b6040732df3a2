package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
	"github.com/andympr/my-wedding-backend/pkg/response"
	"github.com/andympr/my-wedding-backend/pkg/validator"
)

// bindAndValidate decodes the JSON body into T and runs struct validation,
// writing the error response itself on failure.
func bindAndValidate[T any](c *gin.Context) (*T, bool) {
	var payload T
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.ErrBadRequest.WithMessage("Invalid request payload").WithInternal(err))
		return nil, false
	}

	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, formatValidationError(err))
		return nil, false
	}

	return &payload, true
}

func formatValidationError(err error) *apperrors.AppError {
	var failures validator.ValidationErrors
	if errors.As(err, &failures) {
		return apperrors.NewValidation(failures.Error())
	}
	return apperrors.NewValidation("Request validation failed")
}
