package domain

import "time"

const (
	// GuestAssetTTL bounds how long an anonymous generation survives locally
	// before it is swept.
	GuestAssetTTL = 2 * time.Hour

	// GuestSessionTTL bounds the pseudo-identity that groups guest assets
	// before a real account exists.
	GuestSessionTTL = 24 * time.Hour
)

// GuestAsset is a generated artifact that no account owns yet. It lives in the
// embedded guest store until it expires or is transferred into a catalog.
type GuestAsset struct {
	ID          string    `json:"id"`
	Payload     []byte    `json:"payload"`
	Prompt      string    `json:"prompt"`
	Category    string    `json:"category"`
	AspectRatio string    `json:"aspectRatio"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`

	// Transferred is flipped exactly once, right before the record is
	// deleted, so a racing read never hands the same asset out twice.
	Transferred bool `json:"transferred"`
}

func (a *GuestAsset) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// GuestSession correlates one browser/device context to its guest assets.
type GuestSession struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *GuestSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
