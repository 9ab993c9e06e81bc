package handlers

import (
	"context"
	"net/http"
	"time"

	"parcel-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
)

const serviceName = "Parcel Delivery API"

func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the " + serviceName,
		"docs":    "/state-machine",
		"health":  "/health",
		"roles":   []string{"user", "rider", "admin"},
	})
}

// Health pings the store
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

type machineInfo struct {
	Field          string   `json:"field"`
	Transitions    any      `json:"transitions"`
	TerminalStates []string `json:"terminal_states"`
}

func describe[S ~string](m *statemachine.Machine[S], states ...S) machineInfo {
	var terminal []string
	for _, s := range states {
		if m.IsTerminal(s) {
			terminal = append(terminal, string(s))
		}
	}
	return machineInfo{Field: m.Name(), Transitions: m.Transitions(), TerminalStates: terminal}
}

// GetStateMachineInfo documents every status field and its transitions
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"parcel": []machineInfo{
			describe(statemachine.ParcelPayment, statemachine.PaymentStates...),
			describe(statemachine.ParcelDelivery, statemachine.DeliveryStates...),
		},
		"rider": []machineInfo{
			describe(statemachine.RiderApproval, statemachine.RiderStates...),
			describe(statemachine.RiderWork, statemachine.WorkStates...),
		},
		"description": "Parcel and rider lifecycle state machines",
	})
}
