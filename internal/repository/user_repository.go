package repository

import (
	"context"

	"movie-tracker/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsernameOrEmail 先按用户名查找，找不到再按邮箱查找
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	u, err := r.GetByUsername(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	return r.GetByEmail(ctx, identifier)
}

// List 按用户名排序返回全部用户
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.orm.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}
