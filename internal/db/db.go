package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ChatInsertChannel is the NOTIFY channel carrying inserted chat messages as JSON.
const ChatInsertChannel = "chat_messages_insert"

// Connect initializes the database connection and runs migrations.
func Connect(ctx context.Context, dsn string, notifyInserts bool, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(ctx, db, notifyInserts); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations applied", zap.Bool("notify_inserts", notifyInserts))
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            full_name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL CHECK (role IN ('tenant', 'owner')),
            avatar_url TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS rooms (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            price BIGINT NOT NULL CHECK (price >= 0),
            facilities TEXT[] NOT NULL DEFAULT '{}',
            image_url TEXT NOT NULL DEFAULT '',
            is_available BOOLEAN NOT NULL DEFAULT TRUE,
            size TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS bookings (
            id UUID PRIMARY KEY,
            room_id UUID NOT NULL REFERENCES rooms(id),
            user_id UUID NOT NULL REFERENCES profiles(id),
            check_in DATE NOT NULL,
            check_out DATE NOT NULL,
            total_price BIGINT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid', 'confirmed', 'cancelled')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE INDEX IF NOT EXISTS bookings_user_created_idx ON bookings (user_id, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS bookings_room_dates_idx ON bookings (room_id, check_in, check_out);`,
	`CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY,
            booking_id UUID NOT NULL UNIQUE REFERENCES bookings(id),
            amount BIGINT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid', 'failed')),
            payment_method TEXT NOT NULL,
            qr_code_url TEXT,
            transaction_id TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
            id UUID PRIMARY KEY,
            sender_id UUID NOT NULL REFERENCES profiles(id),
            receiver_id UUID NOT NULL REFERENCES profiles(id),
            message TEXT NOT NULL CHECK (length(message) > 0),
            booking_id UUID REFERENCES bookings(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE INDEX IF NOT EXISTS chat_messages_pair_idx ON chat_messages (sender_id, receiver_id, created_at);`,
}

var notifyMigrations = []string{
	`CREATE OR REPLACE FUNCTION notify_chat_message_insert() RETURNS trigger AS $$
        BEGIN
            PERFORM pg_notify('` + ChatInsertChannel + `', row_to_json(NEW)::text);
            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql;`,
	`DROP TRIGGER IF EXISTS chat_messages_notify ON chat_messages;`,
	`CREATE TRIGGER chat_messages_notify AFTER INSERT ON chat_messages
            FOR EACH ROW EXECUTE FUNCTION notify_chat_message_insert();`,
}

func runMigrations(ctx context.Context, db *sqlx.DB, notifyInserts bool) error {
	steps := migrations
	if notifyInserts {
		steps = append(append([]string{}, migrations...), notifyMigrations...)
	} else {
		steps = append(append([]string{}, migrations...), `DROP TRIGGER IF EXISTS chat_messages_notify ON chat_messages;`)
	}

	for _, m := range steps {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
