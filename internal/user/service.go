package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/storage"
	"wardrobe-be/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Signup(ctx context.Context, in SignupInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	Logout(ctx context.Context, userID uuid.UUID, token string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput, icon *storage.Upload) (*User, error)
	Delete(ctx context.Context, userID uuid.UUID) (*User, error)
	Authenticate(ctx context.Context, token string) (*User, error)
}

type service struct {
	repo      Repository
	disk      storage.Disk
	jwtSecret string
}

func NewService(repo Repository, disk storage.Disk, jwtSecret string) Service {
	return &service{repo: repo, disk: disk, jwtSecret: jwtSecret}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Signup(ctx context.Context, in SignupInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Signup"),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Web = strings.TrimSpace(in.Web)
	in.CardNumber = strings.TrimSpace(in.CardNumber)

	if err := validation.Struct(in); err != nil {
		log.Info("signup rejected", zap.Error(err))
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u := &User{
		ID:                 uuid.New(),
		Name:               in.Name,
		Email:              in.Email,
		Password:           hashed,
		Address:            in.Address,
		Phone:              in.Phone,
		Type:               in.Type,
		Description:        strings.TrimSpace(in.Description),
		Web:                in.Web,
		CardNumber:         in.CardNumber,
		CardExpirationDate: in.CardExpirationDate,
		CardHolderName:     strings.TrimSpace(in.CardHolderName),
		CardCVV:            strings.TrimSpace(in.CardCVV),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}

	log.Info("signup completed", zap.String("user_id", u.ID.String()))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login rejected: unknown email")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Error("failed to find user", zap.Error(err))
		return "", nil, err
	}

	if !CheckPasswordHash(strings.TrimSpace(password), u.Password) {
		log.Info("login rejected: password mismatch", zap.String("user_id", u.ID.String()))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

func (s *service) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := GenerateJWT(s.jwtSecret, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to generate jwt",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return "", err
	}

	if err := s.repo.AddToken(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *service) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	return s.repo.DeleteToken(ctx, userID, token)
}

func (s *service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteAllTokens(ctx, userID)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput, icon *storage.Upload) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProfile"),
		zap.String("user_id", userID.String()),
	)

	in = trimUpdate(in)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(u, in); err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	oldIcon := u.Icon
	if icon != nil {
		path, err := storage.SaveImage(ctx, s.disk, userID, icon)
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if err != nil {
			log.Error("failed to store icon", zap.Error(err))
			return nil, err
		}
		u.Icon = path
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if u.Icon != oldIcon {
			s.removeImage(ctx, u.Icon)
		}
		return nil, err
	}

	if u.Icon != oldIcon {
		s.removeImage(ctx, oldIcon)
	}

	log.Info("profile updated")
	return u, nil
}

// trimUpdate returns a copy of in with every present string trimmed, so the
// validated values are the stored ones.
func trimUpdate(in UpdateProfileInput) UpdateProfileInput {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}

	in.Name = trim(in.Name)
	in.Email = trim(in.Email)
	in.Password = trim(in.Password)
	in.Address = trim(in.Address)
	in.Phone = trim(in.Phone)
	in.Description = trim(in.Description)
	in.Web = trim(in.Web)
	in.CardNumber = trim(in.CardNumber)
	in.CardExpirationDate = trim(in.CardExpirationDate)
	in.CardHolderName = trim(in.CardHolderName)
	in.CardCVV = trim(in.CardCVV)
	return in
}

func applyUpdate(u *User, in UpdateProfileInput) error {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	set(&u.Name, in.Name)
	set(&u.Address, in.Address)
	set(&u.Phone, in.Phone)
	set(&u.Description, in.Description)
	set(&u.Web, in.Web)
	set(&u.CardNumber, in.CardNumber)
	set(&u.CardExpirationDate, in.CardExpirationDate)
	set(&u.CardHolderName, in.CardHolderName)
	set(&u.CardCVV, in.CardCVV)

	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Type != nil {
		u.Type = *in.Type
	}
	if in.Password != nil {
		hashed, err := HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return nil, err
	}

	s.removeImage(ctx, u.Icon)

	logger.FromCtx(ctx).Info("user deleted", zap.String("user_id", userID.String()))
	return u, nil
}

// Authenticate resolves a presented session token to its user. The JWT must
// verify and its row in user_tokens must still exist.
func (s *service) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := ParseJWT(s.jwtSecret, token)
	if err != nil {
		logger.FromCtx(ctx).Debug("jwt rejected", zap.Error(err))
		return nil, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	ok, err := s.repo.TokenExists(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	u, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

func (s *service) removeImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := storage.RemoveByPath(ctx, s.disk, path); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.FromCtx(ctx).Warn("failed to remove image", zap.String("path", path), zap.Error(err))
	}
}
