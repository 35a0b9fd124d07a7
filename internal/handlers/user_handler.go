package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/cinepass/internal/middleware"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/services"
)

func GetProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			return
		}

		user, err := u.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user":     user,
			"role":     claims.GetSafeRole(),
			"provider": claims.Provider,
			"is_admin": claims.IsAdmin(),
		}, "Profile retrieved successfully"))
	}
}
