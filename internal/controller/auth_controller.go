package controller

import (
	"simedu_backend/internal/service"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "email and password are required")
		return
	}

	token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req forgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "a valid email is required")
		return
	}

	if err := c.AuthService.RequestPasswordReset(req.Email); err != nil {
		if err == util.ErrDeliveryFailed {
			util.BadGateway(ctx, "reset mail could not be delivered")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	// Same response whether or not the address exists.
	util.Success(ctx, gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req resetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "token and a password of at least 8 characters are required")
		return
	}

	if err := c.AuthService.ResetPassword(req.Token, req.Password); err != nil {
		if err == util.ErrResetTokenInvalid {
			util.BadRequest(ctx, "reset token invalid or expired")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"reset": true})
}

func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, user)
}
