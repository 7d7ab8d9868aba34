package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/growmap/internal/errors"
	"github.com/yukikurage/growmap/internal/logging"
)

// OwnedLoader loads the resource id on behalf of userID. It must return
// notFound both when the resource is missing and when someone else owns it.
type OwnedLoader[T any] func(userID, id uint64) (*T, error)

// RequireOwned resolves the :param path id through load and stores the
// resource under contextKey. Resources the caller does not own answer 404,
// the same as missing ones.
func RequireOwned[T any](param, contextKey, label string, load OwnedLoader[T], notFound error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid "+label+" ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		resource, err := load(userID, id)
		if err != nil {
			if errors.Is(err, notFound) {
				apierrors.NotFound(c, notFound.Error())
			} else {
				logging.Error().Err(err).Str("resource", label).Uint64("id", id).Msg("Ownership check failed")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(contextKey, resource)
		c.Next()
	}
}

// GetOwned returns the resource stored by RequireOwned.
func GetOwned[T any](c *gin.Context, contextKey string) (*T, bool) {
	v, exists := c.Get(contextKey)
	if !exists {
		return nil, false
	}
	resource, ok := v.(*T)
	return resource, ok
}
