package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/model"
)

// RequireRole enforces that the authenticated actor holds one of the given
// roles.  It assumes JWTAuth already resolved the actor; requests without
// one, or with a role outside the allowed set, get a 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            actor, ok := CurrentActor(c)
            if !ok || !allowed[actor.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
