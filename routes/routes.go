package routes

import (
	"parcel-delivery-api/handlers"
	"parcel-delivery-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, verifier middleware.TokenVerifier, roles middleware.AdminChecker) {
	auth := middleware.Authenticate(verifier)
	admin := middleware.RequireAdmin(roles)

	// ── Public ─────────────────────────────────────────────────────
	r.GET("/", h.Welcome)
	r.GET("/health", h.Health)
	r.GET("/state-machine", h.GetStateMachineInfo)

	// ── Users ──────────────────────────────────────────────────────
	users := r.Group("/users")
	{
		users.GET("/search", h.SearchUsers)
		users.GET("/:email/role", h.GetUserRole)
		users.POST("", h.CreateUser)
		users.PATCH("/:id/role", auth, admin, h.UpdateUserRole)
	}

	// ── Parcels ────────────────────────────────────────────────────
	parcels := r.Group("/parcels")
	{
		parcels.GET("", auth, h.ListParcels)
		parcels.GET("/:id", h.GetParcel)
		parcels.POST("", h.CreateParcel)
		parcels.DELETE("/:id", h.DeleteParcel)
		parcels.PATCH("/:id/assign-rider", h.AssignRider)
	}

	// ── Payments ───────────────────────────────────────────────────
	r.POST("/create-payment-intent", h.CreatePaymentIntent)
	r.GET("/payments", auth, h.ListPayments)
	r.POST("/payments", h.ConfirmPayment)

	// ── Riders ─────────────────────────────────────────────────────
	riders := r.Group("/riders")
	{
		riders.POST("", h.RegisterRider)
		riders.GET("/pending", auth, admin, h.ListPendingRiders)
		riders.GET("/active", auth, admin, h.ListActiveRiders)
		riders.GET("/available", h.ListAvailableRiders)
		riders.PATCH("/approve/:id", h.ApproveRider)
		riders.PATCH("/reject/:id", h.RejectRider)
		riders.PATCH("/deactivate/:id", h.DeactivateRider)
	}
}
