package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ignitionAdapters/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	chain_id         BIGINT  NOT NULL,
	pool_address     TEXT    NOT NULL,
	blueprint        TEXT    NOT NULL,
	token0           TEXT    NOT NULL,
	token1           TEXT    NOT NULL,
	fee              INTEGER NOT NULL,
	tick_spacing     INTEGER NOT NULL,
	first_seen_block BIGINT  NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address)
);

CREATE TABLE IF NOT EXISTS bin_snapshots (
	chain_id       BIGINT    NOT NULL,
	pool_address   TEXT      NOT NULL,
	block_number   BIGINT    NOT NULL,
	tx_hash        TEXT      NOT NULL,
	log_index      BIGINT    NOT NULL,
	block_ts       TIMESTAMPTZ NOT NULL,
	tick           INTEGER   NOT NULL,
	sqrt_price_x96 NUMERIC   NOT NULL,
	spot           NUMERIC   NOT NULL,
	adjusted_spot  NUMERIC,
	tick_spacing   INTEGER   NOT NULL,
	active_bin     INTEGER   NOT NULL,
	lower_bins     INTEGER[] NOT NULL,
	higher_bins    INTEGER[] NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, block_number, tx_hash, log_index)
);

CREATE TABLE IF NOT EXISTS indexer_state (
	name                 TEXT   PRIMARY KEY,
	last_processed_block BIGINT NOT NULL,
	fingerprint          TEXT   NOT NULL DEFAULT '',
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for pools, snapshots and run state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables the store writes to.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertPools inserts or updates pool metadata.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				chain_id, pool_address, blueprint, token0, token1, fee, tick_spacing, first_seen_block, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				blueprint = EXCLUDED.blueprint,
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				fee = EXCLUDED.fee,
				tick_spacing = EXCLUDED.tick_spacing,
				first_seen_block = LEAST(pools.first_seen_block, EXCLUDED.first_seen_block),
				updated_at = now()
		`,
			int64(pool.ChainID),
			pool.Address,
			pool.Blueprint,
			pool.Token0,
			pool.Token1,
			int32(pool.Fee),
			pool.TickSpacing,
			int64(pool.FirstSeenBlock),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool: %w", err)
		}
	}
	return nil
}

// PutSnapshotBatch upserts bin snapshots. Replaying a block range rewrites
// the same rows.
func (s *Store) PutSnapshotBatch(ctx context.Context, snapshots []model.BinSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		var adjusted *string
		if snap.AdjustedSpot != "" {
			value := snap.AdjustedSpot
			adjusted = &value
		}
		lower := snap.LowerBins
		if lower == nil {
			lower = []int32{}
		}
		higher := snap.HigherBins
		if higher == nil {
			higher = []int32{}
		}
		batch.Queue(`
			INSERT INTO bin_snapshots (
				chain_id, pool_address, block_number, tx_hash, log_index, block_ts,
				tick, sqrt_price_x96, spot, adjusted_spot, tick_spacing, active_bin, lower_bins, higher_bins
			) VALUES ($1, $2, $3, $4, $5, to_timestamp($6), $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (chain_id, pool_address, block_number, tx_hash, log_index)
			DO UPDATE SET
				block_ts = EXCLUDED.block_ts,
				tick = EXCLUDED.tick,
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				spot = EXCLUDED.spot,
				adjusted_spot = EXCLUDED.adjusted_spot,
				tick_spacing = EXCLUDED.tick_spacing,
				active_bin = EXCLUDED.active_bin,
				lower_bins = EXCLUDED.lower_bins,
				higher_bins = EXCLUDED.higher_bins
		`,
			int64(snap.ChainID),
			snap.Pool,
			int64(snap.BlockNumber),
			snap.TxHash,
			int64(snap.LogIndex),
			int64(snap.Timestamp),
			snap.Tick,
			snap.SqrtPriceX96,
			snap.Spot,
			adjusted,
			snap.TickSpacing,
			snap.ActiveBin,
			lower,
			higher,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert bin snapshot: %w", err)
		}
	}
	return nil
}

// State is the persisted progress of a named run.
type State struct {
	LastProcessedBlock uint64
	Fingerprint        string
}

// LoadState returns the progress stored under name.
func (s *Store) LoadState(ctx context.Context, name string) (State, bool, error) {
	if name == "" {
		return State{}, false, fmt.Errorf("state name required")
	}
	var (
		block       int64
		fingerprint string
	)
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block, fingerprint FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block, &fingerprint); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("load state %s: %w", name, err)
	}
	return State{LastProcessedBlock: uint64(block), Fingerprint: fingerprint}, true, nil
}

// SaveState upserts the progress stored under name.
func (s *Store) SaveState(ctx context.Context, name string, state State) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, fingerprint, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block,
			fingerprint = EXCLUDED.fingerprint,
			updated_at = now()
	`, name, int64(state.LastProcessedBlock), state.Fingerprint)
	if err != nil {
		return fmt.Errorf("save state %s: %w", name, err)
	}
	return nil
}
