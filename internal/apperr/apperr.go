// Package apperr 定义业务错误分类，供 handler 统一映射为响应码
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别
type Kind int

const (
	KindStore         Kind = iota // 未分类的存储错误
	KindValidation                // 缺失或格式错误的字段
	KindNotAuthorized             // 无权限或未登录
	KindNotFound                  // 引用的记录不存在
	KindConflict                  // 重复的收藏/好友请求/好友关系
	KindInvalidState              // 状态机不允许的流转
	KindUpstream                  // 电影目录API返回非成功状态
)

// String 返回类别名称
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotAuthorized:
		return "not_authorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindUpstream:
		return "upstream"
	default:
		return "store"
	}
}

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// forbidden 标记已登录但非资源所有者，响应 403 而不是 401
	forbidden bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// 好友请求状态机使用的固定错误
var (
	ErrSelfRequest    = &Error{Kind: KindValidation, Message: "You cannot send a friend request to yourself"}
	ErrAlreadyPending = &Error{Kind: KindConflict, Message: "Friend request already pending."}
	ErrAlreadyFriends = &Error{Kind: KindConflict, Message: "You are already friends with this user."}
	ErrNotPending     = &Error{Kind: KindInvalidState, Message: "This request is no longer pending."}
)

// Validation 构造校验错误
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotAuthorized 构造权限错误
func NotAuthorized(message string) error {
	return &Error{Kind: KindNotAuthorized, Message: message}
}

// Forbidden 构造所有权错误（例如删除他人的评论）
func Forbidden(message string) error {
	return &Error{Kind: KindNotAuthorized, Message: message, forbidden: true}
}

// NotFound 构造记录不存在错误
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict 构造冲突错误
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Upstream 构造上游错误
func Upstream(message string, err error) error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// Store 包装存储层错误
func Store(message string, err error) error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf 返回错误类别，非业务错误视为存储错误
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus 错误类别对应的状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindNotAuthorized:
		var appErr *Error
		if errors.As(err, &appErr) && appErr.forbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回可以展示给调用方的错误信息，5xx 统一返回通用提示
func PublicMessage(err error) string {
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return "An unexpected error occurred. Please try again."
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
