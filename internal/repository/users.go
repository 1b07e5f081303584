package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByAPIToken(ctx context.Context, token string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error

	// DecrementCredits subtracts amount from the balance only when the
	// balance covers it; the guarded UPDATE is the serialization point.
	DecrementCredits(ctx context.Context, id uuid.UUID, amount int) error
	// AddCredits increments the balance and optionally moves the plan.
	AddCredits(ctx context.Context, id uuid.UUID, amount int, plan constants.PlanType) error
	SetSubscription(ctx context.Context, id uuid.UUID, subscriptionID string, plan constants.PlanType) error
	SetPlan(ctx context.Context, id uuid.UUID, plan constants.PlanType) error
	ClearSubscription(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserRepository(db *gorm.DB, logger *slog.Logger) UserRepository {
	return &userRepo{db: db, logger: logger}
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByAPIToken(ctx context.Context, token string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, "api_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, "subscription_id = ?", subscriptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.PlanType == "" {
		user.PlanType = constants.PlanFree
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.Error("failed to create user", "email", user.Email, "error", err)
		return err
	}
	return nil
}

func (r *userRepo) DecrementCredits(ctx context.Context, id uuid.UUID, amount int) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND credits >= ?", id, amount).
		UpdateColumn("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		r.logger.Error("failed to decrement credits", "user_id", id, "amount", amount, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrInsufficientCredits
	}
	return nil
}

func (r *userRepo) AddCredits(ctx context.Context, id uuid.UUID, amount int, plan constants.PlanType) error {
	updates := map[string]any{
		"credits": gorm.Expr("credits + ?", amount),
	}
	if plan != "" {
		updates["plan_type"] = plan
	}
	res := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		r.logger.Error("failed to add credits", "user_id", id, "amount", amount, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetSubscription(ctx context.Context, id uuid.UUID, subscriptionID string, plan constants.PlanType) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subscription_id": subscriptionID,
			"plan_type":       plan,
		}).Error
}

func (r *userRepo) SetPlan(ctx context.Context, id uuid.UUID, plan constants.PlanType) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Update("plan_type", plan).Error
}

func (r *userRepo) ClearSubscription(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subscription_id": nil,
			"plan_type":       constants.PlanFree,
		}).Error
}
