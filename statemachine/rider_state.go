package statemachine

import "parcel-delivery-api/models"

// RiderApproval is the application workflow of a rider
var RiderApproval = New("status",
	// Admin reviews a pending application
	Transition[models.RiderStatus]{From: models.RiderPending, To: models.RiderApproved, Actor: "admin"},
	Transition[models.RiderStatus]{From: models.RiderPending, To: models.RiderRejected, Actor: "admin"},
	// Only working riders can be deactivated
	Transition[models.RiderStatus]{From: models.RiderApproved, To: models.RiderDeactivated, Actor: "admin"},
)

// RiderWork tracks whether a rider is carrying a parcel
var RiderWork = New("work_status",
	Transition[models.WorkStatus]{From: models.WorkIdle, To: models.WorkInDelivery, Actor: "system"},
)

var RiderStates = []models.RiderStatus{models.RiderPending, models.RiderApproved, models.RiderRejected, models.RiderDeactivated}

var WorkStates = []models.WorkStatus{models.WorkIdle, models.WorkInDelivery}
