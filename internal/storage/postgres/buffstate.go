package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/player"
)

// ErrSnapshotNotFound is returned when no saved state exists for a player.
var ErrSnapshotNotFound = errors.New("player snapshot not found")

// BuffStateRepository saves and loads player snapshots.
type BuffStateRepository struct {
	db *pgxpool.Pool
}

// NewBuffStateRepository creates a BuffStateRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBuffStateRepository(db *pgxpool.Pool) *BuffStateRepository {
	return &BuffStateRepository{db: db}
}

// Save writes s, replacing any earlier save for the same player.
//
// Precondition: s.ID must not be uuid.Nil.
// Postcondition: the player row, its durations, and its permabuffs are
// replaced atomically, or nothing is written and a non-nil error returns.
func (r *BuffStateRepository) Save(ctx context.Context, s player.Snapshot) error {
	if s.ID == uuid.Nil {
		return errors.New("saving snapshot: player id is nil")
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO players
				(id, name, hp, max_hp, base_str, base_int, base_dex, form,
				 deflect_missiles, swiftness, bone_armour, icy_armour_power,
				 max_spell_levels, shroud_recharge, projectile_debt,
				 memorised, library, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, hp = EXCLUDED.hp, max_hp = EXCLUDED.max_hp,
				base_str = EXCLUDED.base_str, base_int = EXCLUDED.base_int,
				base_dex = EXCLUDED.base_dex, form = EXCLUDED.form,
				deflect_missiles = EXCLUDED.deflect_missiles,
				swiftness = EXCLUDED.swiftness, bone_armour = EXCLUDED.bone_armour,
				icy_armour_power = EXCLUDED.icy_armour_power,
				max_spell_levels = EXCLUDED.max_spell_levels,
				shroud_recharge = EXCLUDED.shroud_recharge,
				projectile_debt = EXCLUDED.projectile_debt,
				memorised = EXCLUDED.memorised, library = EXCLUDED.library,
				updated_at = NOW()`,
			s.ID, s.Name, s.HP, s.MaxHP, s.Base.Str, s.Base.Int, s.Base.Dex, s.Form,
			s.Attributes.DeflectMissiles, s.Attributes.Swiftness, s.Attributes.BoneArmour,
			s.IcyArmourPower, s.MaxSpellLevels,
			s.Permabuffs.ShroudRecharge, s.Permabuffs.ProjectileDebt,
			nonNil(s.Memorised), nonNil(s.Library),
		)
		if err != nil {
			return fmt.Errorf("upserting player: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM player_durations WHERE player_id = $1`, s.ID); err != nil {
			return fmt.Errorf("clearing durations: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM player_permabuffs WHERE player_id = $1`, s.ID); err != nil {
			return fmt.Errorf("clearing permabuffs: %w", err)
		}

		batch := &pgx.Batch{}
		for _, name := range sortedKeys(s.Durations) {
			batch.Queue(`INSERT INTO player_durations (player_id, name, turns) VALUES ($1,$2,$3)`,
				s.ID, name, s.Durations[name])
		}
		for _, sub := range s.Permabuffs.Subscriptions {
			batch.Queue(`
				INSERT INTO player_permabuffs
					(player_id, permabuff, active, reserve, slaying_bonus, benefit, hunger, mp)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				s.ID, sub.ID, sub.Active, sub.Companion.Reserve, sub.Companion.SlayingBonus,
				sub.Aux.Benefit, sub.Aux.Hunger, sub.Aux.MP)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("writing buff rows: %w", err)
		}
		return nil
	})
}

// Load reads the saved state for id.
//
// Postcondition: returns the snapshot or ErrSnapshotNotFound.
func (r *BuffStateRepository) Load(ctx context.Context, id uuid.UUID) (player.Snapshot, error) {
	s := player.Snapshot{ID: id, Durations: map[string]int{}}
	err := r.db.QueryRow(ctx, `
		SELECT name, hp, max_hp, base_str, base_int, base_dex, form,
		       deflect_missiles, swiftness, bone_armour, icy_armour_power,
		       max_spell_levels, shroud_recharge, projectile_debt, memorised, library
		FROM players WHERE id = $1`,
		id,
	).Scan(
		&s.Name, &s.HP, &s.MaxHP, &s.Base.Str, &s.Base.Int, &s.Base.Dex, &s.Form,
		&s.Attributes.DeflectMissiles, &s.Attributes.Swiftness, &s.Attributes.BoneArmour,
		&s.IcyArmourPower, &s.MaxSpellLevels,
		&s.Permabuffs.ShroudRecharge, &s.Permabuffs.ProjectileDebt,
		&s.Memorised, &s.Library,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return player.Snapshot{}, ErrSnapshotNotFound
		}
		return player.Snapshot{}, fmt.Errorf("querying player: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT name, turns FROM player_durations WHERE player_id = $1`, id)
	if err != nil {
		return player.Snapshot{}, fmt.Errorf("querying durations: %w", err)
	}
	for rows.Next() {
		var name string
		var turns int
		if err := rows.Scan(&name, &turns); err != nil {
			rows.Close()
			return player.Snapshot{}, fmt.Errorf("scanning duration row: %w", err)
		}
		s.Durations[name] = turns
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return player.Snapshot{}, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT permabuff, active, reserve, slaying_bonus, benefit, hunger, mp
		FROM player_permabuffs WHERE player_id = $1 ORDER BY permabuff`, id)
	if err != nil {
		return player.Snapshot{}, fmt.Errorf("querying permabuffs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sub permabuff.SubscriptionSnapshot
		if err := rows.Scan(
			&sub.ID, &sub.Active, &sub.Companion.Reserve, &sub.Companion.SlayingBonus,
			&sub.Aux.Benefit, &sub.Aux.Hunger, &sub.Aux.MP,
		); err != nil {
			return player.Snapshot{}, fmt.Errorf("scanning permabuff row: %w", err)
		}
		s.Permabuffs.Subscriptions = append(s.Permabuffs.Subscriptions, sub)
	}
	return s, rows.Err()
}

// Delete removes the saved state for id. Deleting a missing player is not an error.
func (r *BuffStateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
