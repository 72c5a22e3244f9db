package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// TokenService verifies the bearer tokens issued by the account service.
// Issue exists for local development and tests.
type TokenService struct {
	secret    string
	accessTTL time.Duration
	log       logger.Logger
}

func NewTokenService(secret string, accessTTL time.Duration, log logger.Logger) *TokenService {
	return &TokenService{
		secret:    secret,
		accessTTL: accessTTL,
		log:       log,
	}
}

// Issue signs an access token for user.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (string, time.Time, error) {
	ctx = wrap.WithAction(ctx, "issue_token")
	if user == nil || user.IsAnonymous() {
		return "", time.Time{}, wrap.Error(ctx, errors.New("user is empty"))
	}

	issuedAt := time.Now().UTC()
	exp := issuedAt.Add(s.accessTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, NewAccessClaim(user, issuedAt, s.accessTTL, uuid.New()))
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, wrap.Error(ctx, fmt.Errorf("failed to sign token: %w", err))
	}
	return signed, exp, nil
}

// Authenticate validates token and returns the user it was issued to.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}
	if !parsed.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	if typ, _ := mc["typ"].(string); typ != accessTokenType {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	userIDStr, _ := mc["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil || userID == uuid.Nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: invalid or missing 'user_id'", ErrInvalidToken))
	}

	roleStr, _ := mc["role"].(string)
	role := types.UserRole(roleStr)
	switch role {
	case types.RiderRole, types.DriverRole, types.AdminRole:
	default:
		return nil, wrap.Error(ctx, ErrInvalidRole)
	}

	return &models.User{ID: userID, Role: role}, nil
}

// RoleCheck reports whether user holds one of roles.
func RoleCheck(user *models.User, roles ...types.UserRole) error {
	if user.IsAnonymous() {
		return ErrInvalidToken
	}
	if len(roles) == 0 || user.Role == types.AdminRole {
		return nil
	}
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return ErrActionForbidden
}

func NewAccessClaim(user *models.User, issuedAt time.Time, accessTTL time.Duration, tokenID uuid.UUID) jwt.Claims {
	return jwt.MapClaims{
		"typ":     accessTokenType,
		"jti":     tokenID.String(),
		"user_id": user.ID.String(),
		"role":    user.Role.String(),
		"iat":     issuedAt.Unix(),
		"exp":     issuedAt.Add(accessTTL).Unix(),
	}
}
