package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/hackfest/internal/app/models/dto"
	"github.com/yigit/hackfest/internal/app/models/dto/enums"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
	"github.com/yigit/hackfest/internal/pkg/auth"
)

// AdminCredentials is the single organizer account
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthService handles organizer authentication
type AuthService struct {
	admin      AdminCredentials
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(admin AdminCredentials, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		admin:      admin,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks the organizer credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidationFailed)
	}

	if s.admin.PasswordHash == "" || !strings.EqualFold(strings.TrimSpace(req.Email), s.admin.Email) {
		s.logger.Warn().Str("email", req.Email).Msg("Login attempt for unknown organizer")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(s.admin.PasswordHash, req.Password) {
		s.logger.Warn().Str("email", req.Email).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	role := string(enums.RoleOrganizer)
	token, expiresIn, err := s.jwtService.GenerateAccessToken(s.admin.Email, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", s.admin.Email).Msg("Organizer logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Role:        role,
	}, nil
}
