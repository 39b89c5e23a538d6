package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// DailyFreeCap is how many logos a free-tier account may acquire per calendar
// day. The counter rolls over when LastActivityDate falls behind today.
const DailyFreeCap = 3

// CreditAccount holds the per-user credit counters. Free-tier accounts use
// DailyUsed/LastActivityDate; paid accounts draw down Balance directly.
type CreditAccount struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID      `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Tier             Tier           `json:"tier" gorm:"not null;default:'free'"`
	Balance          int            `json:"balance" gorm:"not null;default:0"`
	DailyUsed        int            `json:"dailyUsed" gorm:"not null;default:0"`
	LastActivityDate datatypes.Date `json:"lastActivityDate"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Logo is one catalog entry in a user's durable library. BlobRef points at the
// payload in the blob store; the row and the blob are written together by the
// uploader and never partially.
type Logo struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Prompt      string         `json:"prompt" gorm:"not null"`
	Category    string         `json:"category" gorm:"not null"`
	AspectRatio string         `json:"aspectRatio"`
	BlobRef     string         `json:"blobRef" gorm:"uniqueIndex;not null"`
	SizeBytes   int64          `json:"sizeBytes" gorm:"not null"`
	Metadata    datatypes.JSON `json:"metadata" gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time      `json:"createdAt"`
}
