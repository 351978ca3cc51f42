package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendRequestStatus 好友请求状态
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "PENDING"
	FriendRequestAccepted FriendRequestStatus = "ACCEPTED"
	FriendRequestDeclined FriendRequestStatus = "DECLINED"
)

// FriendRequest 好友请求
// 状态流转：PENDING -> ACCEPTED / DECLINED；DECLINED 的记录再次发起时复用同一行重置为 PENDING

type FriendRequest struct {
	ID          string              `gorm:"type:varchar(36);primaryKey"`
	RequesterID string              `gorm:"type:varchar(36);not null;index;comment:发起人ID"`
	ReceiverID  string              `gorm:"type:varchar(36);not null;index;comment:接收人ID"`
	Status      FriendRequestStatus `gorm:"type:varchar(16);not null;default:'PENDING';index;comment:请求状态"`
	CreatedAt   time.Time           `gorm:"comment:创建时间"`
	UpdatedAt   time.Time           `gorm:"comment:更新时间"`

	Requester User `gorm:"foreignKey:RequesterID"`
	Receiver  User `gorm:"foreignKey:ReceiverID"`
}

func (FriendRequest) TableName() string { return "friend_request" }

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Friendship 好友关系（对称）
// 按字典序存储：UserOneID < UserTwoID，保证每对用户最多一行

type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserOneID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair;comment:较小的用户ID"`
	UserTwoID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair;index;comment:较大的用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`

	UserOne User `gorm:"foreignKey:UserOneID"`
	UserTwo User `gorm:"foreignKey:UserTwoID"`
}

func (Friendship) TableName() string { return "friendship" }

// CanonicalPair 返回按字典序排列的用户对
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other 返回好友关系中除 userID 之外的另一方
func (f *Friendship) Other(userID string) User {
	if f.UserOneID == userID {
		return f.UserTwo
	}
	return f.UserOne
}
