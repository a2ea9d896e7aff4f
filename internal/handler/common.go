package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatd/internal/model"
)

// fail writes the error body shared by every endpoint.
func fail(c *gin.Context, status int, detail string) {
	c.JSON(status, model.ErrorResponse{Detail: detail})
}

// failf writes a "Failed to <action>: <error>" body.
func failf(c *gin.Context, status int, action string, err error) {
	fail(c, status, fmt.Sprintf("Failed to %s: %v", action, err))
}

// pagination reads skip/limit query params with the API's bounds:
// skip >= 0, 1 <= limit <= 100. Non-integer values are a validation error.
func pagination(c *gin.Context, defaultLimit int64) (skip, limit int64, err error) {
	skip, err = strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("skip must be an integer, got %q", c.Query("skip"))
	}
	if skip < 0 {
		skip = 0
	}

	limit, err = strconv.ParseInt(c.DefaultQuery("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("limit must be an integer, got %q", c.Query("limit"))
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return skip, limit, nil
}
