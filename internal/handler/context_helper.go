package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/middleware"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/response"
)

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

// respond writes data with the request's metadata attached.
func respond(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data, middleware.Meta(c))
}
