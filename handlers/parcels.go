package handlers

import (
	"net/http"

	"parcel-delivery-api/middleware"
	"parcel-delivery-api/models"

	"github.com/gin-gonic/gin"
)

// ListParcels returns the caller's parcels, newest first. Admins may list
// everyone's parcels or pick a user with ?email=.
func (h *Handler) ListParcels(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.GetEmail(c)
	filter := models.ParcelFilter{
		CreatedBy:      c.Query("email"),
		PaymentStatus:  models.PaymentStatus(c.Query("payment_status")),
		DeliveryStatus: models.DeliveryStatus(c.Query("delivery_status")),
	}

	admin, err := h.svc.Users.IsAdmin(ctx, caller)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !admin {
		if filter.CreatedBy != "" && filter.CreatedBy != caller {
			forbidden(c)
			return
		}
		filter.CreatedBy = caller
	}

	parcels, err := h.svc.Parcels.List(ctx, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, parcels)
}

func (h *Handler) GetParcel(c *gin.Context) {
	parcel, err := h.svc.Parcels.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, parcel)
}

// CreateParcel books a shipment; it starts unpaid and pending
func (h *Handler) CreateParcel(c *gin.Context) {
	var parcel models.Parcel
	if !bindJSON(c, &parcel, false) {
		return
	}
	id, err := h.svc.Parcels.Create(c.Request.Context(), &parcel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"insertedId": id, "tracking_id": parcel.TrackingID})
}

func (h *Handler) DeleteParcel(c *gin.Context) {
	if err := h.svc.Parcels.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Parcel deleted", "deletedCount": 1})
}

// AssignRider puts a pending parcel in transit with an approved rider
func (h *Handler) AssignRider(c *gin.Context) {
	var body struct {
		RiderID string `json:"riderId"`
	}
	if !bindJSON(c, &body, true) {
		return
	}
	if err := h.svc.Parcels.AssignRider(c.Request.Context(), c.Param("id"), body.RiderID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rider assigned and statuses updated"})
}
