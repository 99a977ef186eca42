package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobin-logidots/auth-service/config"
	repo "github.com/jobin-logidots/auth-service/internal/adapters/postgres"
	"github.com/jobin-logidots/auth-service/internal/domain"
	pkglog "github.com/jobin-logidots/auth-service/pkg/log"
)

// Mailer delivers out-of-band notifications. Calls are best-effort: the
// core never fails an operation because a mail could not be sent.
type Mailer interface {
	SendUserSignUp(ctx context.Context, to, firstName string) error
	SendForgotPassword(ctx context.Context, to, hash string) error
}

type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	TokenExpires int64  `json:"tokenExpires"`
}

type LoginResult struct {
	TokenPair
	User *domain.User `json:"user"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateInput carries a partial profile update; nil means "leave as is".
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Password    *string
	OldPassword *string
}

type Service interface {
	ValidateLogin(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Me(ctx context.Context, claims *AccessClaims) (*domain.User, error)
	Update(ctx context.Context, claims *AccessClaims, input UpdateInput) (*domain.User, error)
	Logout(ctx context.Context, claims *AccessClaims) error
	SoftDelete(ctx context.Context, claims *AccessClaims) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, hash, newPassword string) error
}

type authService struct {
	cfg      *config.Config
	logger   pkglog.Logger
	users    repo.UserRepository
	sessions repo.SessionRepository
	forgot   repo.ForgotPasswordRepository
	hasher   PasswordHasher
	codec    TokenCodec
	mailer   Mailer
}

func NewAuthService(cfg *config.Config, logger pkglog.Logger, users repo.UserRepository, sessions repo.SessionRepository, forgot repo.ForgotPasswordRepository, hasher PasswordHasher, codec TokenCodec, mailer Mailer) Service {
	return &authService{cfg: cfg, logger: logger, users: users, sessions: sessions, forgot: forgot, hasher: hasher, codec: codec, mailer: mailer}
}

func (s *authService) ValidateLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// Only email-provider accounts carry a password hash.
	if user.Provider != domain.ProviderEmail || user.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, *user.Password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != domain.StatusActive {
		return nil, ErrAccountNotActive
	}

	session := &domain.Session{UserID: user.ID, Hash: newSessionHash()}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	pair, err := s.mintPair(user, session)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", user.ID).Uint("session_id", session.ID).Msg("login")
	return &LoginResult{TokenPair: *pair, User: user}, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) error {
	taken, err := s.users.EmailTaken(ctx, input.Email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailAlreadyUsed
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}
	status := domain.StatusActive
	if s.cfg.RegisterStatus == string(domain.StatusInactive) {
		status = domain.StatusInactive
	}
	user := &domain.User{
		Email:     input.Email,
		Password:  &hash,
		Provider:  domain.ProviderEmail,
		Role:      domain.RoleUser,
		Status:    status,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.notify("signup", func(ctx context.Context) error {
		return s.mailer.SendUserSignUp(ctx, user.Email, user.FirstName)
	})
	s.logger.Info().Uint("user_id", user.ID).Msg("registered")
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Hash != claims.Hash {
		return nil, ErrHashMismatch
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	// The conditional update is the serialization point: concurrent
	// refreshes on one session race, and only the request whose hash is
	// still the stored value wins. Losers fail with a hash mismatch.
	newHash := newSessionHash()
	if err := s.sessions.RotateHash(ctx, session.ID, claims.Hash, newHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHashMismatch
		}
		return nil, err
	}
	session.Hash = newHash
	pair, err := s.mintPair(user, session)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", user.ID).Uint("session_id", session.ID).Msg("refreshed")
	return pair, nil
}

func (s *authService) Me(ctx context.Context, claims *AccessClaims) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Update(ctx context.Context, claims *AccessClaims, input UpdateInput) (*domain.User, error) {
	user, err := s.Me(ctx, claims)
	if err != nil {
		return nil, err
	}
	passwordChanged := false
	if input.Password != nil && *input.Password != "" {
		if input.OldPassword == nil || *input.OldPassword == "" {
			return nil, NewValidationError("oldPassword", "required when changing password")
		}
		if user.Password == nil || !s.hasher.Verify(*input.OldPassword, *user.Password) {
			return nil, ErrIncorrectOldPassword
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PreviousPassword = user.Password
		user.Password = &hash
		passwordChanged = true
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil && !strings.EqualFold(*input.Email, user.Email) {
		taken, err := s.users.EmailTaken(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailAlreadyUsed
		}
		user.Email = strings.ToLower(*input.Email)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if passwordChanged {
		// Force re-login everywhere else; the current session stays.
		if err := s.sessions.SoftDeleteAllForUser(ctx, user.ID, claims.SessionID); err != nil {
			return nil, err
		}
		s.logger.Info().Uint("user_id", user.ID).Msg("password changed, other sessions revoked")
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, claims *AccessClaims) error {
	if err := s.sessions.SoftDelete(ctx, claims.SessionID); err != nil {
		return err
	}
	s.logger.Info().Uint("user_id", claims.UserID).Uint("session_id", claims.SessionID).Msg("logout")
	return nil
}

func (s *authService) SoftDelete(ctx context.Context, claims *AccessClaims) error {
	if err := s.users.SoftDelete(ctx, claims.UserID); err != nil {
		return err
	}
	if err := s.sessions.SoftDeleteAllForUser(ctx, claims.UserID, 0); err != nil {
		return err
	}
	s.logger.Info().Uint("user_id", claims.UserID).Msg("account deleted")
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	forgot := &domain.ForgotPassword{UserID: user.ID, Hash: newSessionHash()}
	if err := s.forgot.Create(ctx, forgot); err != nil {
		return err
	}
	s.notify("forgot-password", func(ctx context.Context) error {
		return s.mailer.SendForgotPassword(ctx, user.Email, forgot.Hash)
	})
	s.logger.Info().Uint("user_id", user.ID).Msg("password reset requested")
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, hash, newPassword string) error {
	forgot, err := s.forgot.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetNotFound
		}
		return err
	}
	if time.Since(forgot.CreatedAt) > s.cfg.ForgotTTL {
		return ErrResetExpired
	}
	user, err := s.users.FindByID(ctx, forgot.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PreviousPassword = user.Password
	user.Password = &digest
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.forgot.SoftDelete(ctx, forgot.ID); err != nil {
		return err
	}
	if err := s.sessions.SoftDeleteAllForUser(ctx, user.ID, 0); err != nil {
		return err
	}
	s.logger.Info().Uint("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *authService) mintPair(user *domain.User, session *domain.Session) (*TokenPair, error) {
	token, expires, err := s.codec.SignAccessToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.SignRefreshToken(session.ID, session.Hash)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: token, RefreshToken: refresh, TokenExpires: expires.UnixMilli()}, nil
}

// notify runs a mail dispatch off the request path. Failures are logged
// and never roll back the primary operation.
func (s *authService) notify(kind string, send func(ctx context.Context) error) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warn().Err(err).Str("mail", kind).Msg("notification failed")
		}
	}()
}

func newSessionHash() string {
	return uuid.NewString()
}
