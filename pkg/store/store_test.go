package store

import (
	"context"
	"testing"

	"youbuildit/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Migrate(context.Background())
	require.NoError(t, err)
	return db
}

func setBilling(t *testing.T, db *DB, id int64, customer, sub, status, tier any) {
	t.Helper()
	_, err := db.Exec(`UPDATE users SET stripe_customer_id = $1, stripe_subscription_id = $2,
	subscription_status = $3, subscription_tier = $4 WHERE id = $5`, customer, sub, status, tier, id)
	require.NoError(t, err)
}

func TestParseDSN(t *testing.T) {
	cases := []struct {
		dsn     string
		dialect Dialect
		source  string
	}{
		{"postgres://u:p@localhost:5432/app", Postgres, "postgres://u:p@localhost:5432/app"},
		{"postgresql://localhost/app", Postgres, "postgresql://localhost/app"},
		{"sqlite:./data/app.db", SQLite, "./data/app.db"},
		{"sqlite://app.db", SQLite, "app.db"},
		{"file:app.db?cache=shared", SQLite, "file:app.db?cache=shared"},
		{"app.db", SQLite, "app.db"},
	}
	for _, tc := range cases {
		dialect, source, err := ParseDSN(tc.dsn)
		require.NoError(t, err, tc.dsn)
		assert.Equal(t, tc.dialect, dialect, tc.dsn)
		assert.Equal(t, tc.source, source, tc.dsn)
	}

	_, _, err := ParseDSN("mysql://localhost/app")
	assert.Error(t, err)
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)

	applied, err := db.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestUpsertGithubUser(t *testing.T) {
	db := openTestDB(t)
	users := NewUsers(db)
	ctx := context.Background()

	u, err := users.UpsertGithubUser(ctx, GithubProfile{ID: 42, Login: "octo", Name: "Octo Cat", Email: "octo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.GithubID)
	assert.Equal(t, "octo", u.Login)
	assert.Equal(t, models.TierFree, u.SubscriptionTier)
	assert.False(t, u.CreatedAt.IsZero())

	again, err := users.UpsertGithubUser(ctx, GithubProfile{ID: 42, Login: "octocat", Name: "Octo"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "octocat", again.Login)
	assert.Equal(t, "Octo", again.DisplayName())
}

func TestUpsertKeepsBilling(t *testing.T) {
	db := openTestDB(t)
	users := NewUsers(db)
	ctx := context.Background()

	u, err := users.UpsertGithubUser(ctx, GithubProfile{ID: 7, Login: "payer"})
	require.NoError(t, err)
	setBilling(t, db, u.ID, "cus_1", "sub_1", "active", "PRO")

	again, err := users.UpsertGithubUser(ctx, GithubProfile{ID: 7, Login: "payer"})
	require.NoError(t, err)
	assert.Equal(t, "cus_1", again.StripeCustomerID)
	assert.Equal(t, "PRO", again.SubscriptionTier)
}

func TestUserByIDNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := NewUsers(db).UserByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetBillingIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	users := NewUsers(db)
	ctx := context.Background()

	paid, err := users.UpsertGithubUser(ctx, GithubProfile{ID: 1, Login: "paid"})
	require.NoError(t, err)
	setBilling(t, db, paid.ID, "cus_1", "sub_1", "active", "PRO")

	lapsed, err := users.UpsertGithubUser(ctx, GithubProfile{ID: 2, Login: "lapsed"})
	require.NoError(t, err)
	setBilling(t, db, lapsed.ID, "cus_2", nil, "canceled", "FREE")

	_, err = users.UpsertGithubUser(ctx, GithubProfile{ID: 3, Login: "free"})
	require.NoError(t, err)

	pending, err := db.CountBillingToReset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	cleared, err := db.ResetBilling(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	cleared, err = db.ResetBilling(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cleared)

	u, err := users.UserByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.Empty(t, u.StripeCustomerID)
	assert.Empty(t, u.StripeSubscriptionID)
	assert.Empty(t, u.SubscriptionStatus)
	assert.Equal(t, models.TierFree, u.SubscriptionTier)
}
