package middleware // reusable HTTP middleware for the API

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/model"
)

// actorKey is the context key under which JWTAuth stores the resolved actor.
const actorKey = "actor"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the authenticated actor into the request context.  The secret
// must match the one used when issuing tokens.  Handlers behind this
// middleware read the actor via CurrentActor.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // Numeric claims decode as float64.
            sub, ok := claims["sub"].(float64)
            if !ok || sub <= 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
            }
            roleStr, _ := claims["role"].(string)
            role := model.Role(roleStr)
            if !role.Valid() {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid role"})
            }

            c.Set(actorKey, model.Actor{ID: uint64(sub), Role: role})
            return next(c)
        }
    }
}

// CurrentActor returns the actor stored by JWTAuth, or false when the
// request is unauthenticated.
func CurrentActor(c echo.Context) (model.Actor, bool) {
    actor, ok := c.Get(actorKey).(model.Actor)
    return actor, ok
}
