package service

import (
	"context"
	"strings"
	"time"

	"movie-tracker/internal/apperr"
	"movie-tracker/internal/model"
	"movie-tracker/internal/repository"
	"movie-tracker/pkg/password"
)

// RegisterInput 注册表单
type RegisterInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=128"`
	Password string `validate:"required,min=8"`
}

var registerMessages = map[string]string{
	"Username.required": "Username is required.",
	"Username.max":      "Username must be at most 64 characters.",
	"Email.required":    "Email is required.",
	"Email":             "Please enter a valid email address.",
	"Password.required": "Password is required.",
	"Password.min":      "Password must be at least 8 characters.",
}

// 资料页展示的最近动态条数
const profileActivityLimit = 5

// Profile 个人主页数据
type Profile struct {
	User     ProfileUser        `json:"currentUser"`
	Friends  []model.PublicUser `json:"friends"`
	Stats    Stats              `json:"stats"`
	Activity Activity           `json:"activity"`
}

// ProfileUser 个人资料
type ProfileUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Activity 最近动态
type Activity struct {
	RecentFavorites []MovieCard   `json:"recentFavorites"`
	RecentComments  []CommentView `json:"recentComments"`
}

type UserService struct {
	repo        *repository.UserRepository
	collections *CollectionService
	comments    *CommentService
	social      *SocialService
}

func NewUserService(repo *repository.UserRepository, collections *CollectionService, comments *CommentService, social *SocialService) *UserService {
	return &UserService{repo: repo, collections: collections, comments: comments, social: social}
}

// Register 注册
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in, registerMessages); err != nil {
		return nil, err
	}
	if len(in.Password) > password.MaxBytes {
		return nil, apperr.Validation("Password must be at most 72 bytes.")
	}

	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Conflict("Username already exists.")
	} else if !repository.IsNotFound(err) {
		return nil, apperr.Store("check username failed", err)
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("Email already registered.")
	} else if !repository.IsNotFound(err) {
		return nil, apperr.Store("check email failed", err)
	}

	// 密码哈希
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, apperr.Store("hash password failed", err)
	}
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperr.Conflict("Username or email already exists.")
		}
		return nil, apperr.Store("create user failed", err)
	}
	return user, nil
}

// Login 登录，标识可以是用户名或邮箱
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, apperr.Validation("Username/email and password are required.")
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotAuthorized("Invalid username/email or password.")
		}
		return nil, apperr.Store("get user failed", err)
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, apperr.NotAuthorized("Invalid username/email or password.")
	}
	return u, nil
}

// GetByID 根据ID获取用户，不存在时返回 NotFound
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("User not found.")
		}
		return nil, apperr.Store("get user failed", err)
	}
	return u, nil
}

// Profile 个人主页：资料、好友、统计与最近动态
func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		User: ProfileUser{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt},
	}
	if profile.Friends, err = s.social.Friends(ctx, userID); err != nil {
		return nil, err
	}
	if profile.Stats, err = s.collections.collectionStats(ctx, userID); err != nil {
		return nil, err
	}
	if profile.Stats.CommentCount, err = s.comments.CountByUser(ctx, userID); err != nil {
		return nil, err
	}
	if profile.Activity.RecentFavorites, err = s.collections.RecentFavorites(ctx, userID, profileActivityLimit); err != nil {
		return nil, err
	}
	if profile.Activity.RecentComments, err = s.comments.RecentComments(ctx, userID, profileActivityLimit); err != nil {
		return nil, err
	}
	return profile, nil
}
