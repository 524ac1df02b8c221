package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/observability"
	"github.com/deskline/service-desk/internal/policy"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// RequireAuthenticated rejects requests that reached it without a principal.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// Authorize gates a route on the caller's role holding action on resource.
// Denials are counted on metrics when it is non-nil.
func Authorize(resource policy.Resource, action policy.Action, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Can(resource, action) {
			metrics.RecordDenied(string(principal.User.Role), string(resource), string(action))
			return apperrors.NewPermissionDenied(string(resource), string(action))
		}
		return c.Next()
	}
}
