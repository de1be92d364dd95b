package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.User, error)
	GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, user *domain.User) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var user domain.User
	if err := transaction.WithContext(ctx).
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var user domain.User
	if err := transaction.WithContext(ctx).
		Where("phone_number = ?", phone).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
