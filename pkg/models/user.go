package models

import "time"

const TierFree = "FREE"

// User is a signed-in member, keyed by their GitHub account.
type User struct {
	ID        int64     `json:"id"`
	GithubID  int64     `json:"github_id"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StripeCustomerID     string `json:"-"`
	StripeSubscriptionID string `json:"-"`
	SubscriptionStatus   string `json:"subscription_status,omitempty"`
	SubscriptionTier     string `json:"subscription_tier"`
}

// DisplayName prefers the profile name over the login.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}
