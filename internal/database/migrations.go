package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGSERIAL PRIMARY KEY,
		username    VARCHAR(50)  NOT NULL UNIQUE,
		email       VARCHAR(255) NOT NULL UNIQUE,
		avatar_url  TEXT,
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id             BIGSERIAL PRIMARY KEY,
		owner_id       BIGINT       NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title          VARCHAR(200) NOT NULL,
		description    TEXT         NOT NULL DEFAULT '',
		category       VARCHAR(20)  NOT NULL DEFAULT 'meeting',
		start_time     TIMESTAMPTZ  NOT NULL,
		end_time       TIMESTAMPTZ,
		location_type  VARCHAR(10)  NOT NULL DEFAULT 'address',
		address        VARCHAR(500) NOT NULL DEFAULT '',
		online_link    TEXT         NOT NULL DEFAULT '',
		latitude       DOUBLE PRECISION,
		longitude      DOUBLE PRECISION,
		is_active      BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		CONSTRAINT events_time_order CHECK (end_time IS NULL OR end_time >= start_time),
		CONSTRAINT events_location CHECK (
			(location_type = 'address' AND address <> '') OR
			(location_type = 'online' AND online_link <> '') OR
			(location_type = 'map' AND latitude IS NOT NULL AND longitude IS NOT NULL)
		)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_owner ON events(owner_id, start_time DESC)`,

	`CREATE TABLE IF NOT EXISTS event_participants (
		id          BIGSERIAL PRIMARY KEY,
		event_id    BIGINT      NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id     BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status      VARCHAR(20) NOT NULL DEFAULT 'invited',
		role        VARCHAR(100) NOT NULL DEFAULT 'Participant',
		invited_by  BIGINT      REFERENCES users(id) ON DELETE SET NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (event_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_participants_user ON event_participants(user_id, status)`,

	`CREATE TABLE IF NOT EXISTS friendships (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		friend_id   BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		confirmed   BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, friend_id),
		CHECK (user_id <> friend_id)
	)`,

	`CREATE TABLE IF NOT EXISTS friend_requests (
		id            BIGSERIAL PRIMARY KEY,
		from_user_id  BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		to_user_id    BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		is_accepted   BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (from_user_id, to_user_id),
		CHECK (from_user_id <> to_user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_friend_requests_to ON friend_requests(to_user_id, is_accepted)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_friend_requests_pending_pair
		ON friend_requests (LEAST(from_user_id, to_user_id), GREATEST(from_user_id, to_user_id))
		WHERE NOT is_accepted`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id          BIGSERIAL PRIMARY KEY,
		event_id    BIGINT        NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		title       VARCHAR(200)  NOT NULL,
		amount      NUMERIC(10,2) NOT NULL CHECK (amount > 0),
		paid_by     BIGINT        NOT NULL REFERENCES users(id),
		created_by  BIGINT        NOT NULL REFERENCES users(id),
		split_type  VARCHAR(20)   NOT NULL DEFAULT 'MANUAL',
		is_settled  BOOLEAN       NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_event ON expenses(event_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS expense_participants (
		id            BIGSERIAL PRIMARY KEY,
		expense_id    BIGINT        NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
		user_id       BIGINT        NOT NULL REFERENCES users(id),
		share_amount  NUMERIC(10,2) NOT NULL CHECK (share_amount >= 0),
		is_paid       BOOLEAN       NOT NULL DEFAULT FALSE,
		UNIQUE (expense_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id           BIGSERIAL PRIMARY KEY,
		event_id     BIGINT       NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		title        VARCHAR(200) NOT NULL,
		description  TEXT         NOT NULL DEFAULT '',
		assigned_to  BIGINT       REFERENCES users(id) ON DELETE SET NULL,
		created_by   BIGINT       NOT NULL REFERENCES users(id),
		due_date     TIMESTAMPTZ,
		status       VARCHAR(20)  NOT NULL DEFAULT 'todo',
		created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_event ON tasks(event_id)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT       NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type             VARCHAR(30)  NOT NULL,
		title            VARCHAR(200) NOT NULL,
		message          TEXT         NOT NULL,
		related_event_id BIGINT       REFERENCES events(id) ON DELETE CASCADE,
		related_user_id  BIGINT       REFERENCES users(id) ON DELETE CASCADE,
		is_read          BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,
}

// RunMigrations applies the schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i, err)
		}
	}
	return nil
}
