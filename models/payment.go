package models

import "time"

// Payment is an append-only ledger entry written when a parcel is paid for
type Payment struct {
	ID            string    `json:"_id" bson:"_id" gorm:"primaryKey;size:64"`
	ParcelID      string    `json:"parcelId" bson:"parcelId" gorm:"index;not null"`
	Email         string    `json:"email" bson:"email" gorm:"index;not null"`
	Amount        float64   `json:"amount" bson:"amount"`
	PaymentMethod string    `json:"paymentMethod" bson:"paymentMethod"`
	TransactionID string    `json:"transactionId" bson:"transactionId" gorm:"uniqueIndex;size:255"`
	PaidAtString  string    `json:"paid_at_string" bson:"paid_at_string"`
	PaidAt        time.Time `json:"paid_at" bson:"paid_at" gorm:"index"`
}
