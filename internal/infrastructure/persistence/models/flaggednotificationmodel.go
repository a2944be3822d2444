package models

import (
	"time"

	"gorm.io/datatypes"
)

// FlaggedNotificationModel is a review-queue row. Envelope keeps the signed
// fields exactly as received.
type FlaggedNotificationModel struct {
	ID             string         `gorm:"primaryKey;size:36"`
	Reason         string         `gorm:"size:32;not null;index"`
	OrderReference string         `gorm:"size:12;index"`
	Envelope       datatypes.JSON `gorm:"not null"`
	SourceIP       string         `gorm:"size:45"`
	Detail         string         `gorm:"type:text"`
	ReceivedAt     time.Time      `gorm:"not null;index"`
}

func (FlaggedNotificationModel) TableName() string {
	return "flagged_notifications"
}

// FlaggedEnvelope is the JSON shape of FlaggedNotificationModel.Envelope.
type FlaggedEnvelope struct {
	SignatureVersion   string `json:"Ds_SignatureVersion"`
	MerchantParameters string `json:"Ds_MerchantParameters"`
	Signature          string `json:"Ds_Signature"`
}
