package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/gueststore"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email       string
	displayName string
	password    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:       fmt.Sprintf("testuser_%s@example.com", suffix),
		displayName: fmt.Sprintf("testuser_%s", suffix),
		password:    "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"email":       b.email,
		"displayName": b.displayName,
		"password":    b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		Email:       authResp.User.Email,
		DisplayName: authResp.User.DisplayName,
	}

	return user, authResp.AccessToken
}

// AccountBuilder creates credit accounts with a builder pattern
type AccountBuilder struct {
	userID       uuid.UUID
	tier         domain.Tier
	balance      int
	dailyUsed    int
	lastActivity time.Time
}

// NewAccountBuilder creates a new AccountBuilder with free-tier defaults
func NewAccountBuilder(userID uuid.UUID) *AccountBuilder {
	return &AccountBuilder{
		userID:       userID,
		tier:         domain.TierFree,
		lastActivity: time.Now(),
	}
}

// Paid switches the account to the paid tier with the given balance
func (b *AccountBuilder) Paid(balance int) *AccountBuilder {
	b.tier = domain.TierPaid
	b.balance = balance
	return b
}

// WithDailyUsed sets today's consumption counter
func (b *AccountBuilder) WithDailyUsed(n int) *AccountBuilder {
	b.dailyUsed = n
	return b
}

// WithLastActivity sets the stored activity date
func (b *AccountBuilder) WithLastActivity(t time.Time) *AccountBuilder {
	b.lastActivity = t
	return b
}

// Build creates the account in the database
func (b *AccountBuilder) Build(t *testing.T, db *gorm.DB) *domain.CreditAccount {
	t.Helper()

	account := &domain.CreditAccount{
		ID:               uuid.New(),
		UserID:           b.userID,
		Tier:             b.tier,
		Balance:          b.balance,
		DailyUsed:        b.dailyUsed,
		LastActivityDate: datatypes.Date(b.lastActivity),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create credit account: %v", err)
	}

	return account
}

// GuestAssetBuilder creates guest assets with a builder pattern
type GuestAssetBuilder struct {
	id        string
	payload   []byte
	prompt    string
	category  string
	createdAt time.Time
	expiresAt time.Time
}

// NewGuestAssetBuilder creates a new GuestAssetBuilder with default values
func NewGuestAssetBuilder() *GuestAssetBuilder {
	now := time.Now()
	return &GuestAssetBuilder{
		id:        fmt.Sprintf("guest_%d_%s", now.UnixMilli(), uuid.New().String()[:8]),
		payload:   []byte("png-bytes"),
		prompt:    "minimalist fox logo",
		category:  "animals",
		createdAt: now,
		expiresAt: now.Add(domain.GuestAssetTTL),
	}
}

// WithID sets the asset ID
func (b *GuestAssetBuilder) WithID(id string) *GuestAssetBuilder {
	b.id = id
	return b
}

// WithPrompt sets the prompt
func (b *GuestAssetBuilder) WithPrompt(prompt string) *GuestAssetBuilder {
	b.prompt = prompt
	return b
}

// ExpiresIn sets the asset deadline relative to now
func (b *GuestAssetBuilder) ExpiresIn(d time.Duration) *GuestAssetBuilder {
	b.expiresAt = time.Now().Add(d)
	return b
}

// Expired backdates the asset so it is already past its TTL
func (b *GuestAssetBuilder) Expired() *GuestAssetBuilder {
	b.createdAt = time.Now().Add(-3 * time.Hour)
	b.expiresAt = time.Now().Add(-time.Hour)
	return b
}

// Build writes the asset into the guest store
func (b *GuestAssetBuilder) Build(t *testing.T, store *gueststore.Store) domain.GuestAsset {
	t.Helper()

	asset := domain.GuestAsset{
		ID:          b.id,
		Payload:     b.payload,
		Prompt:      b.prompt,
		Category:    b.category,
		AspectRatio: "1:1",
		CreatedAt:   b.createdAt,
		ExpiresAt:   b.expiresAt,
	}

	if err := store.PutAsset(asset); err != nil {
		t.Fatalf("failed to store guest asset: %v", err)
	}

	return asset
}
