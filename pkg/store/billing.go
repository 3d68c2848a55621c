package store

import (
	"context"
	"fmt"
)

// needsBillingReset matches rows holding any non-default billing field.
const needsBillingReset = `stripe_customer_id IS NOT NULL
	OR stripe_subscription_id IS NOT NULL
	OR subscription_status IS NOT NULL
	OR subscription_tier IS NULL
	OR subscription_tier <> 'FREE'`

// ResetBilling clears Stripe ids and subscription state for every member,
// leaving them on the FREE tier, and returns how many rows changed. Rows
// already in the default state are not matched, so a second run returns 0.
func (db *DB) ResetBilling(ctx context.Context) (int64, error) {
	res, err := db.ExecContext(ctx, `UPDATE users SET
	stripe_customer_id = NULL,
	stripe_subscription_id = NULL,
	subscription_status = NULL,
	subscription_tier = 'FREE',
	updated_at = CURRENT_TIMESTAMP
WHERE `+needsBillingReset)
	if err != nil {
		return 0, fmt.Errorf("reset billing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset billing rows affected: %w", err)
	}
	return n, nil
}

// CountBillingToReset reports how many rows ResetBilling would change.
func (db *DB) CountBillingToReset(ctx context.Context) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+needsBillingReset).Scan(&n); err != nil {
		return 0, fmt.Errorf("count billing to reset: %w", err)
	}
	return n, nil
}
