package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
	"github.com/jobtrackhq/jobtrack-service/internal/repository"
	apperrors "github.com/jobtrackhq/jobtrack-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// CookieName is the auth cookie carrying the signed token.
const CookieName = "tracker_token"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// AuthMiddleware resolves bearer or cookie credentials into a principal.
// Every failure mode collapses into the same unauthenticated outcome so the
// response never reveals which check rejected the credential.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := credentialFromRequest(c)
	if token == "" {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

func credentialFromRequest(c *fiber.Ctx) string {
	if header := c.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(CookieName)
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
