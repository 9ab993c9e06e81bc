package statemachine

import "parcel-delivery-api/models"

// ParcelPayment: a parcel is paid for exactly once.
var ParcelPayment = New("payment_status",
	Transition[models.PaymentStatus]{From: models.PaymentUnpaid, To: models.PaymentPaid, Actor: "system"},
)

// ParcelDelivery: assignment puts a parcel in transit. Delivered has no
// operation yet but is kept so the table documents the full lifecycle.
var ParcelDelivery = New("delivery_status",
	Transition[models.DeliveryStatus]{From: models.DeliveryPending, To: models.DeliveryInTransit, Actor: "admin"},
	Transition[models.DeliveryStatus]{From: models.DeliveryInTransit, To: models.DeliveryDelivered, Actor: "rider"},
)

var PaymentStates = []models.PaymentStatus{models.PaymentUnpaid, models.PaymentPaid}

var DeliveryStates = []models.DeliveryStatus{models.DeliveryPending, models.DeliveryInTransit, models.DeliveryDelivered}
