package models

import "time"

// PaymentStatus tracks whether a parcel has been paid for
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// DeliveryStatus represents the delivery progress of a parcel
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryInTransit DeliveryStatus = "in-transit"
	DeliveryDelivered DeliveryStatus = "delivered"
)

type Parcel struct {
	ID                  string         `json:"_id" bson:"_id" gorm:"primaryKey;size:64"`
	Type                string         `json:"type" bson:"type"`
	Title               string         `json:"title" bson:"title"`
	Weight              float64        `json:"weight,omitempty" bson:"weight,omitempty"`
	SenderName          string         `json:"sender_name" bson:"sender_name"`
	SenderContact       string         `json:"sender_contact" bson:"sender_contact"`
	SenderRegion        string         `json:"sender_region" bson:"sender_region"`
	SenderDistrict      string         `json:"sender_district" bson:"sender_district"`
	SenderAddress       string         `json:"sender_address" bson:"sender_address"`
	PickupInstruction   string         `json:"pickup_instruction,omitempty" bson:"pickup_instruction,omitempty"`
	ReceiverName        string         `json:"receiver_name" bson:"receiver_name"`
	ReceiverContact     string         `json:"receiver_contact" bson:"receiver_contact"`
	ReceiverRegion      string         `json:"receiver_region" bson:"receiver_region"`
	ReceiverDistrict    string         `json:"receiver_district" bson:"receiver_district"`
	ReceiverAddress     string         `json:"receiver_address" bson:"receiver_address"`
	DeliveryInstruction string         `json:"delivery_instruction,omitempty" bson:"delivery_instruction,omitempty"`
	Cost                float64        `json:"cost" bson:"cost"`
	TrackingID          string         `json:"tracking_id" bson:"tracking_id" gorm:"index"`
	CreatedBy           string         `json:"created_by" bson:"created_by" gorm:"index;not null"`
	PaymentStatus       PaymentStatus  `json:"payment_status" bson:"payment_status" gorm:"index;not null"`
	DeliveryStatus      DeliveryStatus `json:"delivery_status" bson:"delivery_status" gorm:"index;not null"`
	AssignedRider       *string        `json:"assignedRider" bson:"assignedRider"`
	CreatedAt           time.Time      `json:"createdAt" bson:"createdAt" gorm:"index"`
}

// ParcelFilter narrows a parcel listing; empty fields are ignored.
type ParcelFilter struct {
	CreatedBy      string
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
}
