package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/cinepass/internal/middleware"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/services"
)

type verifyQRRequest struct {
	Token string `json:"token" form:"token"`
}

// VerifyQR is the gate scanner endpoint. It accepts {"token": "..."} as a JSON
// body or ?token= from the link encoded in the QR image.
func VerifyQR(v *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyQRRequest
		if c.Request.Method == http.MethodGet {
			req.Token = c.Query("token")
		} else if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("token is required"))
			return
		}
		if req.Token == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("token is required"))
			return
		}

		result, err := v.Verify(c.Request.Context(), req.Token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(result, "QR code verified successfully"))
	}
}

type issueQRRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

func IssueQRSignature(t *services.TicketService, v *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			return
		}

		var req issueQRRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponseWithDetail("transactionId is required", err.Error()))
			return
		}

		token, err := t.IssueForCaller(c.Request.Context(), c.Param("id"), req.TransactionID, claims)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{
			"token":     token,
			"verifyUrl": v.VerifyURL(token),
		}, "QR signature issued"))
	}
}

// GetTicketQR streams the booking's current QR code as an image.
func GetTicketQR(t *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			return
		}

		img, err := t.RenderCurrentQR(c.Request.Context(), c.Param("id"), claims)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, services.TicketQRContentType, img)
	}
}
