package handlers

import (
	"net/http"

	"parcel-delivery-api/middleware"
	"parcel-delivery-api/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var body struct {
		AmountInCents int64 `json:"amountInCents"`
	}
	if !bindJSON(c, &body, false) {
		return
	}
	secret, err := h.svc.Payments.CreateIntent(c.Request.Context(), body.AmountInCents)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

// ListPayments returns the caller's payment history
func (h *Handler) ListPayments(c *gin.Context) {
	email := c.Query("email")
	if email != middleware.GetEmail(c) {
		forbidden(c)
		return
	}
	payments, err := h.svc.Payments.List(c.Request.Context(), email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// ConfirmPayment marks the parcel paid and records the payment
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var body services.Confirmation
	if !bindJSON(c, &body, false) {
		return
	}
	id, err := h.svc.Payments.Confirm(c.Request.Context(), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Payment recorded and parcel marked as paid",
		"insertedId": id,
	})
}
