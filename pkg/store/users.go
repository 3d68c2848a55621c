package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"youbuildit/pkg/models"
)

var ErrNotFound = errors.New("user not found")

// GithubProfile is the identity provider's view of a member.
type GithubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type Users struct {
	db *DB
}

func NewUsers(db *DB) *Users {
	return &Users{db: db}
}

// UpsertGithubUser creates or refreshes the member for a GitHub account.
// Billing fields are never touched here.
func (u *Users) UpsertGithubUser(ctx context.Context, p GithubProfile) (*models.User, error) {
	var id int64
	err := u.db.QueryRowContext(ctx, `INSERT INTO users (github_id, login, name, email, avatar_url)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (github_id) DO UPDATE SET
	login = excluded.login,
	name = excluded.name,
	email = excluded.email,
	avatar_url = excluded.avatar_url,
	updated_at = CURRENT_TIMESTAMP
RETURNING id`, p.ID, p.Login, p.Name, p.Email, p.AvatarURL).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", p.Login, err)
	}
	return u.UserByID(ctx, id)
}

const userColumns = `id, github_id, login, name, email, avatar_url,
	stripe_customer_id, stripe_subscription_id, subscription_status, subscription_tier,
	created_at, updated_at`

func (u *Users) UserByID(ctx context.Context, id int64) (*models.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user                  models.User
		customer, sub, status sql.NullString
	)
	err := row.Scan(
		&user.ID, &user.GithubID, &user.Login, &user.Name, &user.Email, &user.AvatarURL,
		&customer, &sub, &status, &user.SubscriptionTier,
		timestamp{&user.CreatedAt}, timestamp{&user.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	user.StripeCustomerID = customer.String
	user.StripeSubscriptionID = sub.String
	user.SubscriptionStatus = status.String
	return &user, nil
}
