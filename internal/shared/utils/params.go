package utils

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tourbook/tourbook/internal/shared/errors"
)

const maxIDLength = 64

// ParseIDParam reads a path parameter holding an opaque identifier.
// entityName is used in error messages (e.g., "reservation").
func ParseIDParam(c *gin.Context, paramName, entityName string) (string, error) {
	raw := strings.TrimSpace(c.Param(paramName))
	if raw == "" {
		return "", errors.NewValidationError(entityName + " ID is required")
	}
	if len(raw) > maxIDLength {
		return "", errors.NewValidationError("invalid " + entityName + " ID")
	}
	return raw, nil
}
