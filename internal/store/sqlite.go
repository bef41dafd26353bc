package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			points REAL NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0,
			class TEXT NOT NULL DEFAULT '',
			blades INTEGER NOT NULL DEFAULT 0,
			class_xp INTEGER NOT NULL DEFAULT 0,
			rank TEXT NOT NULL DEFAULT '',
			first_seen TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS duels (
			id TEXT PRIMARY KEY,
			pair_key TEXT NOT NULL,
			chat_id TEXT,
			challenger_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			challenger_move TEXT,
			target_move TEXT,
			outcome TEXT NOT NULL,
			winner_id TEXT,
			loser_id TEXT,
			gain REAL NOT NULL DEFAULT 0,
			loss REAL NOT NULL DEFAULT 0,
			loss_waived INTEGER NOT NULL DEFAULT 0,
			resolved_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_duels_resolved ON duels(resolved_at)`,
		`CREATE TABLE IF NOT EXISTS push_subscriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			endpoint TEXT NOT NULL UNIQUE,
			p256dh TEXT NOT NULL,
			auth TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_push_player ON push_subscriptions(player_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetProfile retrieves a profile by player identity. Missing profiles return
// nil, not an error.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, points, wins, losses, streak, class, blades, class_xp, rank, first_seen, updated_at
		 FROM profiles WHERE id = ?`, id).Scan(
		&p.ID, &p.DisplayName, &p.Points, &p.Wins, &p.Losses, &p.Streak,
		&p.Class, &p.Blades, &p.ClassXP, &p.Rank, &p.FirstSeen, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile creates or fully updates a profile record.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, display_name, points, wins, losses, streak, class, blades, class_xp, rank, first_seen, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 	display_name = excluded.display_name,
		 	points = excluded.points,
		 	wins = excluded.wins,
		 	losses = excluded.losses,
		 	streak = excluded.streak,
		 	class = excluded.class,
		 	blades = excluded.blades,
		 	class_xp = excluded.class_xp,
		 	rank = excluded.rank,
		 	updated_at = excluded.updated_at`,
		p.ID, p.DisplayName, p.Points, p.Wins, p.Losses, p.Streak,
		string(p.Class), p.Blades, p.ClassXP, p.Rank, p.FirstSeen, p.UpdatedAt,
	)
	return err
}

// ListProfiles returns every known profile ordered by points descending.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, points, wins, losses, streak, class, blades, class_xp, rank, first_seen, updated_at
		 FROM profiles ORDER BY points DESC, display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Points, &p.Wins, &p.Losses, &p.Streak,
			&p.Class, &p.Blades, &p.ClassXP, &p.Rank, &p.FirstSeen, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// RecordDuel appends one duel history row.
func (s *SQLiteStore) RecordDuel(ctx context.Context, d *DuelRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO duels (id, pair_key, chat_id, challenger_id, target_id, challenger_move, target_move,
		 	outcome, winner_id, loser_id, gain, loss, loss_waived, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.PairKey, d.ChatID, d.ChallengerID, d.TargetID, d.ChallengerMove, d.TargetMove,
		d.Outcome, d.WinnerID, d.LoserID, d.Gain, d.Loss, d.LossWaived, d.ResolvedAt,
	)
	return err
}

// ListDuels retrieves the most recent duel records.
func (s *SQLiteStore) ListDuels(ctx context.Context, limit int) ([]DuelRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pair_key, chat_id, challenger_id, target_id, challenger_move, target_move,
		 	outcome, winner_id, loser_id, gain, loss, loss_waived, resolved_at
		 FROM duels ORDER BY resolved_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duels []DuelRecord
	for rows.Next() {
		var d DuelRecord
		if err := rows.Scan(&d.ID, &d.PairKey, &d.ChatID, &d.ChallengerID, &d.TargetID,
			&d.ChallengerMove, &d.TargetMove, &d.Outcome, &d.WinnerID, &d.LoserID,
			&d.Gain, &d.Loss, &d.LossWaived, &d.ResolvedAt); err != nil {
			return nil, err
		}
		duels = append(duels, d)
	}
	return duels, rows.Err()
}

// SavePushSubscription stores a push endpoint, replacing a previous
// registration of the same endpoint.
func (s *SQLiteStore) SavePushSubscription(ctx context.Context, sub *PushSubscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (player_id, endpoint, p256dh, auth)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
		 	player_id = excluded.player_id,
		 	p256dh = excluded.p256dh,
		 	auth = excluded.auth`,
		sub.PlayerID, sub.Endpoint, sub.P256dh, sub.Auth,
	)
	return err
}

// GetPushSubscriptions returns all push endpoints registered by a player.
func (s *SQLiteStore) GetPushSubscriptions(ctx context.Context, playerID string) ([]PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_id, endpoint, p256dh, auth, created_at
		 FROM push_subscriptions WHERE player_id = ?`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []PushSubscription
	for rows.Next() {
		var sub PushSubscription
		if err := rows.Scan(&sub.ID, &sub.PlayerID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeletePushSubscription removes a push endpoint, typically after the push
// service reported it gone.
func (s *SQLiteStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	return err
}
