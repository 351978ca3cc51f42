package handler

import (
	"movie-tracker/internal/service"
	"movie-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友页与好友请求动作
type FriendHandler struct {
	social *service.SocialService
}

// NewFriendHandler 创建FriendHandler实例
func NewFriendHandler(social *service.SocialService) *FriendHandler {
	return &FriendHandler{social: social}
}

// Page 好友页（需要登录）
func (h *FriendHandler) Page(c *gin.Context) {
	page, err := h.social.FriendsPage(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var form sendRequestForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Receiver ID is required")
		return
	}
	req, err := h.social.SendRequest(c.Request.Context(), currentUserID(c), form.ReceiverID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, response.ActionResult{
		Success:   true,
		RequestID: req.ID,
		Message:   "Friend request sent.",
	})
}

// AcceptRequest 接受好友请求
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	var form respondRequestForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Request ID is required")
		return
	}
	req, err := h.social.AcceptRequest(c.Request.Context(), form.RequestID, currentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, response.ActionResult{
		Success:   true,
		RequestID: req.ID,
		Message:   "Friend request accepted.",
	})
}

// DeclineRequest 拒绝好友请求
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	var form respondRequestForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Request ID is required")
		return
	}
	req, err := h.social.DeclineRequest(c.Request.Context(), form.RequestID, currentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, response.ActionResult{
		Success:   true,
		RequestID: req.ID,
		Message:   "Friend request declined.",
	})
}
