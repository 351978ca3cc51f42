package repository

import (
	"context"

	"movie-tracker/internal/model"

	"gorm.io/gorm"
)

// FriendRepository 好友请求与好友关系仓储
type FriendRepository struct {
	db *gorm.DB
}

// NewFriendRepository 创建FriendRepository实例
func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// Transaction 在同一事务中执行 fn，fn 返回错误时整体回滚
func (r *FriendRepository) Transaction(ctx context.Context, fn func(tx *FriendRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&FriendRepository{db: tx})
	})
}

// GetRequest 根据ID获取好友请求
func (r *FriendRepository) GetRequest(ctx context.Context, id string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindRequestBetween 查找两个用户之间任意方向的好友请求
func (r *FriendRepository) FindRequestBetween(ctx context.Context, a, b string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("updated_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest 创建好友请求
func (r *FriendRepository) CreateRequest(ctx context.Context, req *model.FriendRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// ReopenRequest 将已拒绝的请求按新方向重置为待处理
func (r *FriendRepository) ReopenRequest(ctx context.Context, id, requesterID, receiverID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", id, model.FriendRequestDeclined).
		Updates(map[string]interface{}{
			"requester_id": requesterID,
			"receiver_id":  receiverID,
			"status":       model.FriendRequestPending,
		})
	return result.RowsAffected, result.Error
}

// TransitionStatus 仅当当前状态为 from 时更新为 to，返回受影响行数
func (r *FriendRepository) TransitionStatus(ctx context.Context, id string, from, to model.FriendRequestStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// ListReceived 获取用户收到的指定状态请求（含发起人）
func (r *FriendRepository) ListReceived(ctx context.Context, userID string, status model.FriendRequestStatus) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("receiver_id = ? AND status = ?", userID, status).
		Order("updated_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListSent 获取用户发出的全部请求（含接收人）
func (r *FriendRepository) ListSent(ctx context.Context, userID string) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Receiver").
		Where("requester_id = ?", userID).
		Order("updated_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// CountPending 统计用户待处理的好友请求数
func (r *FriendRepository) CountPending(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("receiver_id = ? AND status = ?", receiverID, model.FriendRequestPending).
		Count(&count).Error
	return count, err
}

// FriendshipExists 判断两个用户是否已是好友
func (r *FriendRepository) FriendshipExists(ctx context.Context, a, b string) (bool, error) {
	one, two := model.CanonicalPair(a, b)
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_one_id = ? AND user_two_id = ?", one, two).
		Count(&count).Error
	return count > 0, err
}

// CreateFriendship 按字典序创建好友关系
func (r *FriendRepository) CreateFriendship(ctx context.Context, a, b string) (*model.Friendship, error) {
	one, two := model.CanonicalPair(a, b)
	friendship := &model.Friendship{UserOneID: one, UserTwoID: two}
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		return nil, err
	}
	return friendship, nil
}

// ListFriendships 获取用户参与的全部好友关系（含双方信息）
func (r *FriendRepository) ListFriendships(ctx context.Context, userID string) ([]model.Friendship, error) {
	var friendships []model.Friendship
	err := r.db.WithContext(ctx).
		Preload("UserOne").
		Preload("UserTwo").
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Find(&friendships).Error
	return friendships, err
}
