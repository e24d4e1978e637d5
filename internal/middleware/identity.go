package middleware

// identity.go provides the optional bearer-token identity middleware.
// The reference clients send userId in the request body with no
// authentication, so identity here is additive: a valid token pins the
// user for the request, an absent token leaves the caller a guest, and
// only a present-but-invalid token is rejected.

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// OptionalJWT returns middleware that validates a Bearer token when one
// is supplied and stores the subject claim under "user_id" in the echo
// context.  With an empty secret the middleware is a pass-through.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if secret == "" {
                return next(c)
            }
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return next(c) // guest request
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
            if v, ok := claims["sub"].(string); ok && v != "" {
                c.Set("user_id", v)
            } else if v, ok := claims["user_id"].(string); ok && v != "" {
                c.Set("user_id", v)
            }
            return next(c)
        }
    }
}

// currentUserID returns the authenticated user for rate-limit keying, or
// "anon" for guests.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "anon"
}
