package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/jobin-logidots/auth-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// FindByEmail is case-insensitive and skips soft-deleted users.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// EmailTaken reports whether any record, soft-deleted included,
	// holds the email. Deleted accounts keep their address reserved.
	EmailTaken(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SoftDelete(ctx context.Context, id uint) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id uint) (*domain.Session, error)
	// RotateHash swaps the session hash only if oldHash is still the
	// stored value. gorm.ErrRecordNotFound means a concurrent refresh
	// (or a revocation) won the race.
	RotateHash(ctx context.Context, id uint, oldHash, newHash string) error
	SoftDelete(ctx context.Context, id uint) error
	// SoftDeleteAllForUser revokes every session of the user except
	// exceptID; pass 0 to revoke them all.
	SoftDeleteAllForUser(ctx context.Context, userID, exceptID uint) error
}

type ForgotPasswordRepository interface {
	Create(ctx context.Context, forgot *domain.ForgotPassword) error
	FindByHash(ctx context.Context, hash string) (*domain.ForgotPassword, error)
	SoftDelete(ctx context.Context, id uint) error
}

type userRepo struct{ db *gorm.DB }

type sessionRepo struct{ db *gorm.DB }

type forgotRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func NewForgotPasswordRepository(db *gorm.DB) ForgotPasswordRepository {
	return &forgotRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Where("email = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.User{}, id).Error
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, id uint) (*domain.Session, error) {
	var session domain.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) RotateHash(ctx context.Context, id uint, oldHash, newHash string) error {
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ? AND hash = ?", id, oldHash).
		Update("hash", newHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sessionRepo) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Session{}, id).Error
}

func (r *sessionRepo) SoftDeleteAllForUser(ctx context.Context, userID, exceptID uint) error {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Delete(&domain.Session{}).Error
}

func (r *forgotRepo) Create(ctx context.Context, forgot *domain.ForgotPassword) error {
	return r.db.WithContext(ctx).Create(forgot).Error
}

func (r *forgotRepo) FindByHash(ctx context.Context, hash string) (*domain.ForgotPassword, error) {
	var forgot domain.ForgotPassword
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&forgot).Error; err != nil {
		return nil, err
	}
	return &forgot, nil
}

func (r *forgotRepo) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.ForgotPassword{}, id).Error
}
