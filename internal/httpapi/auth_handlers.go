package httpapi

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/auth"
	"horse.fit/babel/internal/db"
	"horse.fit/babel/internal/globaltime"
	"horse.fit/babel/internal/payloadschema"
)

const principalContextKey = "auth.principal"

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token,omitempty"`
	User    *db.PublicUser `json:"user,omitempty"`
}

func (s *Server) requireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.deps.Auth == nil {
				return internalError(c, "Authentication is not configured")
			}

			token, err := s.tokenFromRequest(c)
			if err != nil {
				return s.respondError(c, err)
			}

			principal, err := s.deps.Auth.Verify(token)
			if err != nil {
				return s.respondError(c, err)
			}

			c.Set(principalContextKey, *principal)
			return next(c)
		}
	}
}

// tokenFromRequest prefers the Authorization header and falls back to the
// session cookie.
func (s *Server) tokenFromRequest(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.Fields(header)
		if len(parts) < 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperr.Auth("Invalid token format")
		}
		return parts[1], nil
	}

	cookie, err := c.Cookie(s.opts.SessionCookie)
	if err != nil || cookie == nil || strings.TrimSpace(cookie.Value) == "" {
		return "", apperr.Auth("Token is missing")
	}
	return strings.TrimSpace(cookie.Value), nil
}

func (s *Server) handleRegister(c echo.Context) error {
	if s.deps.Auth == nil {
		return internalError(c, "Authentication is not configured")
	}

	var req registerRequest
	if err := s.decodeBody(c, payloadschema.Register, &req); err != nil {
		return s.respondError(c, err)
	}

	session, err := s.deps.Auth.Register(c.Request().Context(), auth.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.setSessionCookie(c, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusCreated, authResponse{
		Success: true,
		Message: "User created successfully",
		Token:   session.Token,
		User:    &session.User,
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	if s.deps.Auth == nil {
		return internalError(c, "Authentication is not configured")
	}

	var req loginRequest
	if err := s.decodeBody(c, payloadschema.Login, &req); err != nil {
		return s.respondError(c, err)
	}

	session, err := s.deps.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	s.setSessionCookie(c, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   session.Token,
		User:    &session.User,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	s.clearSessionCookie(c)
	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

func (s *Server) handleUser(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return s.respondError(c, apperr.Auth("Token is missing"))
	}

	user, err := s.deps.Auth.CurrentUser(c.Request().Context(), &principal)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func principalFromContext(c echo.Context) (auth.Principal, bool) {
	if c == nil {
		return auth.Principal{}, false
	}
	principal, ok := c.Get(principalContextKey).(auth.Principal)
	return principal, ok
}

// decodeBody reads the request body and validates it against schema.
func (s *Server) decodeBody(c echo.Context, schema payloadschema.Schema, dst any) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperr.Validation("Could not read request body")
	}
	return payloadschema.Decode(schema, raw, dst)
}

func (s *Server) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(globaltime.UTC()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	c.SetCookie(&http.Cookie{
		Name:     s.opts.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.opts.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SessionSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  globaltime.UTC().Add(-1 * time.Hour),
	})
}
