package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUserInactive = errors.New("user account is inactive")
)

// AuthUsecase bridges the external role/profile store and the principal
// the core works with.
type AuthUsecase interface {
	// GetCurrentUser returns the profile of the principal on ctx.
	GetCurrentUser(ctx context.Context) (*dto.ProfileResponse, error)
	// IssueToken mints an access token for a known user. Used by the
	// token command in development setups.
	IssueToken(ctx context.Context, userID uuid.UUID) (*dto.TokenResponse, error)
}

type authUsecase struct {
	log         *logrus.Logger
	profileRepo repository.ProfileRepository
	jwtService  *jwt.JWTService
}

func NewAuthUsecase(
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	jwtService *jwt.JWTService,
) AuthUsecase {
	return &authUsecase{
		log:         log,
		profileRepo: profileRepo,
		jwtService:  jwtService,
	}
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.ProfileResponse, error) {
	principal, err := requireRole(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := u.profileRepo.FindByUserID(ctx, principal.UserID)
	if err != nil {
		u.log.Warnf("Failed to find profile for user %s: %+v", principal.UserID, err)
		return nil, err
	}
	if profile == nil {
		return nil, entity.ErrProfileNotFound
	}
	// The token and the store must agree on who this is.
	if profile.ProfileRole() != principal.Role {
		return nil, entity.ErrUnauthorized
	}

	return converter.ProfileToResponse(profile), nil
}

func (u *authUsecase) IssueToken(ctx context.Context, userID uuid.UUID) (*dto.TokenResponse, error) {
	profile, err := u.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find profile for user %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, entity.ErrProfileNotFound
	}
	if !profileActive(profile) {
		return nil, ErrUserInactive
	}

	role := profile.ProfileRole()
	accessToken, _, err := u.jwtService.GenerateAccessToken(userID, string(role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	u.log.Infof("Access token issued: user=%s, role=%s", userID, role)
	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
		UserID:      userID,
		Role:        string(role),
		IssuedAt:    time.Now().UTC(),
	}, nil
}

func profileActive(profile entity.Profile) bool {
	return profile.Account().Active()
}
