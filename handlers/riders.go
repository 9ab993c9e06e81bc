package handlers

import (
	"context"
	"net/http"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"github.com/gin-gonic/gin"
)

// RegisterRider files a rider application
func (h *Handler) RegisterRider(c *gin.Context) {
	var rider models.Rider
	if !bindJSON(c, &rider, false) {
		return
	}
	id, err := h.svc.Riders.Register(c.Request.Context(), &rider)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

func (h *Handler) ListPendingRiders(c *gin.Context) {
	h.listRiders(c, h.svc.Riders.ListPending)
}

func (h *Handler) ListActiveRiders(c *gin.Context) {
	h.listRiders(c, h.svc.Riders.ListActive)
}

// ListAvailableRiders returns approved riders, optionally in ?district=
func (h *Handler) ListAvailableRiders(c *gin.Context) {
	riders, err := h.svc.Riders.ListAvailable(c.Request.Context(), c.Query("district"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, riders)
}

// ApproveRider accepts an application and makes the user a rider
func (h *Handler) ApproveRider(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if !bindJSON(c, &body, true) {
		return
	}
	res, err := h.svc.Riders.Approve(c.Request.Context(), c.Param("id"), body.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       statusMessage(res.UpdateResult, "Rider approved"),
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
		"roleUpdated":   res.RoleUpdated,
	})
}

func (h *Handler) RejectRider(c *gin.Context) {
	res, err := h.svc.Riders.Reject(c.Request.Context(), c.Param("id"))
	h.respondTransition(c, res, err, "Rider rejected")
}

func (h *Handler) DeactivateRider(c *gin.Context) {
	res, err := h.svc.Riders.Deactivate(c.Request.Context(), c.Param("id"))
	h.respondTransition(c, res, err, "Rider deactivated")
}

func (h *Handler) listRiders(c *gin.Context, list func(ctx context.Context) ([]models.Rider, error)) {
	riders, err := list(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, riders)
}

func (h *Handler) respondTransition(c *gin.Context, res store.UpdateResult, err error, done string) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       statusMessage(res, done),
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	})
}

func statusMessage(res store.UpdateResult, done string) string {
	if res.Modified() {
		return done
	}
	return "Rider status unchanged"
}
