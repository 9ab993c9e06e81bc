package models

import "time"

// RiderStatus is the approval state of a rider application
type RiderStatus string

const (
	RiderPending     RiderStatus = "pending"
	RiderApproved    RiderStatus = "approved"
	RiderRejected    RiderStatus = "rejected"
	RiderDeactivated RiderStatus = "deactivated"
)

// WorkStatus says whether an approved rider is currently carrying a parcel
type WorkStatus string

const (
	WorkIdle       WorkStatus = "idle"
	WorkInDelivery WorkStatus = "in-delivery"
)

type Rider struct {
	ID               string      `json:"_id" bson:"_id" gorm:"primaryKey;size:64"`
	Name             string      `json:"name" bson:"name"`
	Email            string      `json:"email" bson:"email" gorm:"index"`
	Age              int         `json:"age,omitempty" bson:"age,omitempty"`
	Phone            string      `json:"phone" bson:"phone"`
	NID              string      `json:"nid,omitempty" bson:"nid,omitempty"`
	Region           string      `json:"region" bson:"region"`
	District         string      `json:"district" bson:"district" gorm:"index"`
	BikeBrand        string      `json:"bike_brand,omitempty" bson:"bike_brand,omitempty"`
	BikeRegistration string      `json:"bike_registration,omitempty" bson:"bike_registration,omitempty"`
	Status           RiderStatus `json:"status" bson:"status" gorm:"index;not null"`
	WorkStatus       WorkStatus  `json:"work_status" bson:"work_status"`
	SubmittedAt      time.Time   `json:"submittedAt" bson:"submittedAt"`
}

// RiderFilter narrows a rider listing; empty fields are ignored.
type RiderFilter struct {
	Status   RiderStatus
	District string
}
