package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"movie-tracker/internal/apperr"
	"movie-tracker/internal/model"
	"movie-tracker/internal/repository"
	"movie-tracker/pkg/logger"
	"movie-tracker/pkg/metrics"

	"go.uber.org/zap"
)

// FriendRequestView 好友页展示的请求，User 为对方用户
type FriendRequestView struct {
	ID        string                    `json:"id"`
	Status    model.FriendRequestStatus `json:"status"`
	User      model.PublicUser          `json:"user"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// SocialService 好友请求生命周期与好友关系
type SocialService struct {
	users    *repository.UserRepository
	friends  *repository.FriendRepository
	counter  PendingCounter
	notifier Notifier
}

// NewSocialService counter 与 notifier 为 nil 时不缓存计数、不推送
func NewSocialService(users *repository.UserRepository, friends *repository.FriendRepository, counter PendingCounter, notifier Notifier) *SocialService {
	if counter == nil {
		counter = noopCounter{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &SocialService{users: users, friends: friends, counter: counter, notifier: notifier}
}

// SendRequest 发送好友请求；已拒绝的请求复用同一行并改为新的方向
func (s *SocialService) SendRequest(ctx context.Context, requesterID, receiverID string) (*model.FriendRequest, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return nil, apperr.Validation("Receiver ID is required")
	}
	if receiverID == requesterID {
		return nil, apperr.ErrSelfRequest
	}

	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("User not found.")
		}
		return nil, apperr.Store("get receiver failed", err)
	}

	existing, err := s.friends.FindRequestBetween(ctx, requesterID, receiverID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, apperr.Store("find friend request failed", err)
	}
	if existing != nil {
		switch existing.Status {
		case model.FriendRequestPending:
			return nil, apperr.ErrAlreadyPending
		case model.FriendRequestAccepted:
			return nil, apperr.ErrAlreadyFriends
		}
	}

	friends, err := s.friends.FriendshipExists(ctx, requesterID, receiverID)
	if err != nil {
		return nil, apperr.Store("check friendship failed", err)
	}
	if friends {
		return nil, apperr.ErrAlreadyFriends
	}

	var req *model.FriendRequest
	if existing != nil && existing.Status == model.FriendRequestDeclined {
		rows, err := s.friends.ReopenRequest(ctx, existing.ID, requesterID, receiverID)
		if err != nil {
			return nil, apperr.Store("reopen friend request failed", err)
		}
		if rows == 0 {
			// 并发请求已先一步重新打开
			return nil, apperr.ErrAlreadyPending
		}
		existing.RequesterID = requesterID
		existing.ReceiverID = receiverID
		existing.Status = model.FriendRequestPending
		req = existing
	} else {
		req = &model.FriendRequest{
			RequesterID: requesterID,
			ReceiverID:  receiverID,
			Status:      model.FriendRequestPending,
		}
		if err := s.friends.CreateRequest(ctx, req); err != nil {
			return nil, apperr.Store("create friend request failed", err)
		}
	}

	metrics.RecordFriendRequestTransition(string(model.FriendRequestPending))
	if err := s.counter.Incr(ctx, receiverID); err != nil {
		logger.Warn("更新待处理请求计数失败", zap.String("user_id", receiverID), zap.Error(err))
	}
	s.notifier.Notify(receiverID, EventFriendRequestReceived, map[string]string{
		"requestId":   req.ID,
		"requesterId": requesterID,
	})
	return req, nil
}

// loadRespondable 读取请求并校验只有接收人可以处理待处理的请求
func (s *SocialService) loadRespondable(ctx context.Context, requestID, actingUserID string) (*model.FriendRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, apperr.Validation("Request ID is required")
	}
	req, err := s.friends.GetRequest(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("Friend request not found.")
		}
		return nil, apperr.Store("get friend request failed", err)
	}
	if req.ReceiverID != actingUserID {
		return nil, apperr.NotAuthorized("Only the receiver can respond to this friend request.")
	}
	if req.Status != model.FriendRequestPending {
		return nil, apperr.ErrNotPending
	}
	return req, nil
}

// AcceptRequest 接受请求并在同一事务中创建好友关系
func (s *SocialService) AcceptRequest(ctx context.Context, requestID, actingUserID string) (*model.FriendRequest, error) {
	req, err := s.loadRespondable(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}

	err = s.friends.Transaction(ctx, func(tx *repository.FriendRepository) error {
		rows, err := tx.TransitionStatus(ctx, req.ID, model.FriendRequestPending, model.FriendRequestAccepted)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.ErrNotPending
		}
		if _, err := tx.CreateFriendship(ctx, req.RequesterID, req.ReceiverID); err != nil {
			if repository.IsDuplicate(err) {
				return apperr.ErrAlreadyFriends
			}
			return err
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Store("accept friend request failed", err)
	}

	req.Status = model.FriendRequestAccepted
	metrics.RecordFriendRequestTransition(string(model.FriendRequestAccepted))
	if err := s.counter.Decr(ctx, actingUserID); err != nil {
		logger.Warn("更新待处理请求计数失败", zap.String("user_id", actingUserID), zap.Error(err))
	}
	s.notifier.Notify(req.RequesterID, EventFriendRequestAccepted, map[string]string{
		"requestId": req.ID,
		"friendId":  actingUserID,
	})
	return req, nil
}

// DeclineRequest 拒绝请求，不创建好友关系
func (s *SocialService) DeclineRequest(ctx context.Context, requestID, actingUserID string) (*model.FriendRequest, error) {
	req, err := s.loadRespondable(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.friends.TransitionStatus(ctx, req.ID, model.FriendRequestPending, model.FriendRequestDeclined)
	if err != nil {
		return nil, apperr.Store("decline friend request failed", err)
	}
	if rows == 0 {
		return nil, apperr.ErrNotPending
	}

	req.Status = model.FriendRequestDeclined
	metrics.RecordFriendRequestTransition(string(model.FriendRequestDeclined))
	if err := s.counter.Decr(ctx, actingUserID); err != nil {
		logger.Warn("更新待处理请求计数失败", zap.String("user_id", actingUserID), zap.Error(err))
	}
	return req, nil
}

// Friends 好友列表（按用户名排序）
func (s *SocialService) Friends(ctx context.Context, userID string) ([]model.PublicUser, error) {
	friendships, err := s.friends.ListFriendships(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list friendships failed", err)
	}
	friends := make([]model.PublicUser, 0, len(friendships))
	for i := range friendships {
		other := friendships[i].Other(userID)
		friends = append(friends, other.Public())
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Username < friends[j].Username })
	return friends, nil
}

// ReceivedRequests 收到的待处理请求
func (s *SocialService) ReceivedRequests(ctx context.Context, userID string) ([]FriendRequestView, error) {
	reqs, err := s.friends.ListReceived(ctx, userID, model.FriendRequestPending)
	if err != nil {
		return nil, apperr.Store("list received requests failed", err)
	}
	views := make([]FriendRequestView, 0, len(reqs))
	for i := range reqs {
		views = append(views, requestView(&reqs[i], reqs[i].Requester))
	}
	return views, nil
}

// SentRequests 发出的全部请求（含已处理的）
func (s *SocialService) SentRequests(ctx context.Context, userID string) ([]FriendRequestView, error) {
	reqs, err := s.friends.ListSent(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list sent requests failed", err)
	}
	views := make([]FriendRequestView, 0, len(reqs))
	for i := range reqs {
		views = append(views, requestView(&reqs[i], reqs[i].Receiver))
	}
	return views, nil
}

func requestView(req *model.FriendRequest, other model.User) FriendRequestView {
	return FriendRequestView{
		ID:        req.ID,
		Status:    req.Status,
		User:      other.Public(),
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
}

// Users 全部用户的公开身份
func (s *SocialService) Users(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Store("list users failed", err)
	}
	result := make([]model.PublicUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].Public())
	}
	return result, nil
}

// PendingCount 待处理请求数，优先读缓存，未命中时查库并回填
func (s *SocialService) PendingCount(ctx context.Context, userID string) (int64, error) {
	if count, ok, err := s.counter.Get(ctx, userID); err == nil && ok {
		return count, nil
	} else if err != nil {
		logger.Warn("读取待处理请求计数缓存失败", zap.String("user_id", userID), zap.Error(err))
	}

	count, err := s.friends.CountPending(ctx, userID)
	if err != nil {
		return 0, apperr.Store("count pending requests failed", err)
	}
	if err := s.counter.Set(ctx, userID, count); err != nil {
		logger.Warn("回填待处理请求计数失败", zap.String("user_id", userID), zap.Error(err))
	}
	return count, nil
}

// FriendsPage 好友页数据
type FriendsPage struct {
	AllUsers         []model.PublicUser  `json:"allUsers"`
	ReceivedRequests []FriendRequestView `json:"receivedRequests"`
	SentRequests     []FriendRequestView `json:"sentRequests"`
	Friends          []model.PublicUser  `json:"friends"`
	PendingCount     int64               `json:"pendingCount"`
}

// FriendsPage 汇总好友页数据
func (s *SocialService) FriendsPage(ctx context.Context, userID string) (*FriendsPage, error) {
	page := &FriendsPage{}
	var err error
	if page.AllUsers, err = s.Users(ctx); err != nil {
		return nil, err
	}
	if page.ReceivedRequests, err = s.ReceivedRequests(ctx, userID); err != nil {
		return nil, err
	}
	if page.SentRequests, err = s.SentRequests(ctx, userID); err != nil {
		return nil, err
	}
	if page.Friends, err = s.Friends(ctx, userID); err != nil {
		return nil, err
	}
	if page.PendingCount, err = s.PendingCount(ctx, userID); err != nil {
		return nil, err
	}
	return page, nil
}
