package database

import (
	"context"
	"fmt"
)

// migrationLockKey serialises Migrate across API instances starting together.
const migrationLockKey = 727001

// migrations are applied in order; a migration is never edited once released.
var migrations = []string{
	// 1: land record aggregate
	`
CREATE SEQUENCE IF NOT EXISTS land_id_seq START 1;

CREATE TABLE IF NOT EXISTS land_location (
	land_id      TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	state        TEXT NOT NULL,
	district     TEXT NOT NULL,
	mandal       TEXT,
	village      TEXT,
	location     TEXT,
	status       TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
	verification TEXT NOT NULL DEFAULT 'pending' CHECK (verification IN ('pending', 'verified', 'rejected')),
	remarks      TEXT,
	verifier_id  TEXT,
	verified_at  TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_land_location_owner ON land_location(owner_id);
CREATE INDEX IF NOT EXISTS idx_land_location_status ON land_location(status, verification);
CREATE INDEX IF NOT EXISTS idx_land_location_created ON land_location(created_at DESC);

CREATE TABLE IF NOT EXISTS farmer_details (
	land_id         TEXT PRIMARY KEY REFERENCES land_location(land_id) ON DELETE CASCADE,
	name            TEXT,
	phone           TEXT,
	whatsapp_number TEXT,
	literacy        TEXT,
	age_group       TEXT,
	nature          TEXT,
	land_ownership  TEXT,
	mortgage        TEXT
);

CREATE TABLE IF NOT EXISTS land_details (
	land_id          TEXT PRIMARY KEY REFERENCES land_location(land_id) ON DELETE CASCADE,
	land_area        NUMERIC(14,4),
	guntas           NUMERIC(14,4),
	price_per_acre   NUMERIC(16,2),
	total_land_price NUMERIC(16,2),
	passbook_photo   TEXT,
	land_type        TEXT,
	water_source     JSONB NOT NULL DEFAULT '[]'::jsonb,
	garden           JSONB NOT NULL DEFAULT '[]'::jsonb,
	shed_details     JSONB NOT NULL DEFAULT '[]'::jsonb,
	farm_pond        TEXT,
	residential      TEXT,
	fencing          TEXT
);

CREATE TABLE IF NOT EXISTS gps_tracking (
	land_id     TEXT PRIMARY KEY REFERENCES land_location(land_id) ON DELETE CASCADE,
	latitude    DOUBLE PRECISION CHECK (latitude BETWEEN -90 AND 90),
	longitude   DOUBLE PRECISION CHECK (longitude BETWEEN -180 AND 180),
	road_path   TEXT,
	land_border TEXT
);

CREATE TABLE IF NOT EXISTS dispute_details (
	land_id                     TEXT PRIMARY KEY REFERENCES land_location(land_id) ON DELETE CASCADE,
	dispute_type                TEXT,
	siblings_involve_in_dispute TEXT,
	path_to_land                TEXT
);

CREATE TABLE IF NOT EXISTS document_media (
	land_id    TEXT PRIMARY KEY REFERENCES land_location(land_id) ON DELETE CASCADE,
	land_photo TEXT[] NOT NULL DEFAULT '{}',
	land_video TEXT[] NOT NULL DEFAULT '{}'
);
`,
	// 2: ledger
	`
CREATE TABLE IF NOT EXISTS ledger_entries (
	id               BIGSERIAL PRIMARY KEY,
	kind             TEXT NOT NULL CHECK (kind IN ('creation_work', 'month_end_work', 'physical_verification', 'travel')),
	land_id          TEXT REFERENCES land_location(land_id) ON DELETE CASCADE,
	session_id       TEXT,
	payee_id         TEXT NOT NULL,
	verification_tag TEXT NOT NULL DEFAULT 'pending' CHECK (verification_tag IN ('pending', 'verified')),
	amount           NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (amount >= 0),
	distance_km      NUMERIC(10,2),
	status           TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'paid')),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK ((land_id IS NULL) <> (session_id IS NULL))
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_verified_once
	ON ledger_entries(land_id)
	WHERE kind = 'physical_verification' AND verification_tag = 'verified';

CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_work_once
	ON ledger_entries(land_id, kind)
	WHERE kind IN ('creation_work', 'month_end_work');

CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_travel_once
	ON ledger_entries(session_id)
	WHERE kind = 'travel';

CREATE INDEX IF NOT EXISTS idx_ledger_payee ON ledger_entries(payee_id, created_at DESC);
`,
	// 3: land codes and purchase requests
	`
CREATE TABLE IF NOT EXISTS land_codes (
	id           BIGSERIAL PRIMARY KEY,
	code         TEXT NOT NULL UNIQUE,
	state_id     TEXT NOT NULL,
	district_id  TEXT NOT NULL,
	town_id      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'Available' CHECK (status IN ('Available', 'Assigned')),
	farmer_name  TEXT,
	farmer_phone TEXT,
	village_name TEXT,
	allotted_at  TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_land_codes_region ON land_codes(state_id, district_id, town_id);

CREATE TABLE IF NOT EXISTS purchase_requests (
	id         BIGSERIAL PRIMARY KEY,
	land_id    TEXT NOT NULL REFERENCES land_location(land_id) ON DELETE CASCADE,
	buyer_id   TEXT NOT NULL,
	land_code  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	decided_at TIMESTAMPTZ,
	UNIQUE (land_id, buyer_id)
);

CREATE INDEX IF NOT EXISTS idx_purchase_requests_buyer ON purchase_requests(buyer_id, created_at DESC);
`,
}

// SchemaVersion is the number of migrations compiled into the binary.
func SchemaVersion() int {
	return len(migrations)
}

// Migrate applies every migration that has not yet been recorded in schema_version.
// Each migration runs in its own transaction together with its version row.
func (db *Database) Migrate(ctx context.Context) (int, error) {
	if _, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	applied := 0
	for i, stmt := range migrations {
		version := i + 1
		err := db.WithTx(ctx, func(q Querier) error {
			if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
				return fmt.Errorf("failed to acquire migration lock: %w", err)
			}

			var exists bool
			if err := q.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM schema_version WHERE version = $1)`, version,
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			if exists {
				return nil
			}

			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d failed: %w", version, err)
			}
			if _, err := q.Exec(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", version, err)
			}
			applied++
			return nil
		})
		if err != nil {
			return applied, err
		}
	}

	return applied, nil
}
