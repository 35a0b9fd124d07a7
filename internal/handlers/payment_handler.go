package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/cinepass/internal/middleware"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/services"
)

// maxWebhookBody matches the limit Stripe documents for event payloads.
const maxWebhookBody = int64(65536)

func CreatePaymentIntent(p *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			return
		}

		intent, err := p.CreatePaymentIntent(c.Request.Context(), c.Param("id"), claims)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(intent, "Payment intent created"))
	}
}

func StripeWebhook(p *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("Failed to read request body"))
			return
		}

		err = p.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, services.ErrInvalidWebhook) {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid webhook"))
				return
			}
			// A 5xx makes Stripe retry the delivery.
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event processed"))
	}
}
