package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/cinepass/internal/middleware"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/services"
)

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type otpVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func RequestOTP(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponseWithDetail("invalid request payload", err.Error()))
			return
		}

		if err := u.RequestOTP(c.Request.Context(), req.Email); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, models.SuccessResponse(nil, "Login code sent"))
	}
}

// VerifyOTP exchanges a login code for a session. The token is returned in the
// body for scanner apps and set as an http-only cookie for browsers.
func VerifyOTP(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req otpVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponseWithDetail("invalid request payload", err.Error()))
			return
		}

		result, err := u.VerifyOTP(c.Request.Context(), req.Email, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.AccessTokenName, result.Token, result.ExpiresIn, "/", "", secureCookies, true)
		c.JSON(http.StatusOK, models.SuccessResponse(result, "Logged in successfully"))
	}
}

func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(middleware.AccessTokenName, "", -1, "/", "", secureCookies, true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
