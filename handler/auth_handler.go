package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docchat-io/docchat-be/service"
	"github.com/docchat-io/docchat-be/types"
)

type AuthHandler struct {
	userService service.UserService
}

func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		sendError(c, types.ErrInvalidRequest)
		return
	}
	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, types.RegisterResponse{
		UserID: user.ID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		sendError(c, types.ErrInvalidRequest)
		return
	}
	token, user, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, types.LoginResponse{
		AccessToken: token,
		User:        user,
	})
}
