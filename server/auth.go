package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/verity-social/verity/models"
)

const sessionScope = "social.verity.session"

func makeToken(subject string, scope string, exp time.Time) jwt.Token {
	tok := jwt.New()
	tok.Set("scope", scope)
	tok.Set("sub", subject)
	tok.Set("iat", time.Now().Unix())
	tok.Set("exp", exp.Unix())

	return tok
}

func (s *Server) createSessionToken(user *models.User) (string, error) {
	tok := makeToken(strconv.FormatUint(uint64(user.ID), 10), sessionScope, time.Now().Add(24*time.Hour))

	sig, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.jwtSigningKey))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return string(sig), nil
}

// sessionMiddleware validates the Bearer token and resolves it to an active
// user record, which is stashed on the request context as "user".
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		hdr := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(hdr, "Bearer ") {
			return &echo.HTTPError{Code: 401, Message: "missing bearer token"}
		}
		raw := strings.TrimPrefix(hdr, "Bearer ")

		tok, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, s.jwtSigningKey), jwt.WithValidate(true))
		if err != nil {
			return &echo.HTTPError{Code: 401, Message: "invalid session token"}
		}
		scope, _ := tok.Get("scope")
		if scope != sessionScope {
			return &echo.HTTPError{Code: 401, Message: "invalid token scope"}
		}

		userID, err := strconv.ParseUint(tok.Subject(), 10, 64)
		if err != nil {
			return &echo.HTTPError{Code: 401, Message: "invalid token subject"}
		}

		var user models.User
		if err := s.db.First(&user, uint(userID)).Error; err != nil {
			return &echo.HTTPError{Code: 401, Message: "session user no longer exists"}
		}
		if !user.IsActive {
			return &echo.HTTPError{Code: 401, Message: "account is deactivated"}
		}

		c.Set("user", &user)
		return next(c)
	}
}

func sessionUser(c echo.Context) *models.User {
	return c.Get("user").(*models.User)
}
