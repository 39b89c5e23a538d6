package domain

// CreditQuota is a point-in-time view of how many more logos an account may
// acquire. It is derived, never stored.
type CreditQuota struct {
	Available    int  `json:"available"`
	IsPrivileged bool `json:"isPrivileged"`
	CanAcquire   bool `json:"canAcquire"`
}

// TransferResult summarizes one reconciliation run. It is returned to the
// caller and never persisted.
type TransferResult struct {
	Success             bool     `json:"success"`
	TransferredCount    int      `json:"transferredCount"`
	FailedCount         int      `json:"failedCount"`
	SkippedCount        int      `json:"skippedCount"`
	InsufficientCredits bool     `json:"insufficientCredits"`
	CreditsNeeded       int      `json:"creditsNeeded"`
	CreditsAvailable    int      `json:"creditsAvailable"`
	Errors              []string `json:"errors,omitempty"`
}
