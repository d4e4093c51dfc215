package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateVolunteerAvailabilityTable, downCreateVolunteerAvailabilityTable)
}

func upCreateVolunteerAvailabilityTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE volunteer_availability (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	  day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	  start_time TEXT NOT NULL,
	  end_time TEXT NOT NULL
	);

	CREATE INDEX idx_volunteer_availability_user_id ON volunteer_availability(user_id);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateVolunteerAvailabilityTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS volunteer_availability;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
