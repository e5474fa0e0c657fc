package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stableScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	chain_id BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	lp_token TEXT NOT NULL,
	tokens TEXT[] NOT NULL,
	first_seen_block BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address)
);
CREATE TABLE IF NOT EXISTS pool_snapshots (
	chain_id BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	block_ts BIGINT NOT NULL,
	initial_a NUMERIC NOT NULL,
	future_a NUMERIC NOT NULL,
	initial_a_time BIGINT NOT NULL,
	future_a_time BIGINT NOT NULL,
	swap_fee NUMERIC NOT NULL,
	admin_fee NUMERIC NOT NULL,
	lp_supply NUMERIC NOT NULL,
	balances NUMERIC[] NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, block_number)
);
CREATE TABLE IF NOT EXISTS quotes (
	chain_id BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	quote_ts BIGINT NOT NULL,
	token_from INT NOT NULL,
	token_to INT NOT NULL,
	amount_in NUMERIC NOT NULL,
	amount_out NUMERIC NOT NULL,
	swap_fee NUMERIC NOT NULL,
	admin_fee NUMERIC NOT NULL,
	a_precise NUMERIC NOT NULL,
	virtual_price NUMERIC,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, block_number, quote_ts, token_from, token_to, amount_in)
);
CREATE TABLE IF NOT EXISTS tracker_state (
	name TEXT PRIMARY KEY,
	last_processed_block BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for snapshots and quotes.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertPools inserts or updates pool records.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				chain_id, pool_address, lp_token, tokens, first_seen_block, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				lp_token = EXCLUDED.lp_token,
				tokens = EXCLUDED.tokens,
				first_seen_block = LEAST(pools.first_seen_block, EXCLUDED.first_seen_block),
				updated_at = now()
		`,
			int64(pool.ChainID),
			pool.Address,
			pool.LPToken,
			pool.Tokens,
			int64(pool.FirstSeenBlock),
		)
	}
	return s.sendBatch(ctx, batch, len(pools))
}

// UpsertPoolSnapshots stores pool state per block.
func (s *Store) UpsertPoolSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snaps {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				chain_id, pool_address, block_number, block_ts, initial_a, future_a,
				initial_a_time, future_a_time, swap_fee, admin_fee, lp_supply, balances, created_at
			) VALUES ($1,$2,$3,$4,$5::text::numeric,$6::text::numeric,$7,$8,$9::text::numeric,$10::text::numeric,$11::text::numeric,$12::text[]::numeric[],now())
			ON CONFLICT (chain_id, pool_address, block_number)
			DO UPDATE SET
				block_ts = EXCLUDED.block_ts,
				initial_a = EXCLUDED.initial_a,
				future_a = EXCLUDED.future_a,
				initial_a_time = EXCLUDED.initial_a_time,
				future_a_time = EXCLUDED.future_a_time,
				swap_fee = EXCLUDED.swap_fee,
				admin_fee = EXCLUDED.admin_fee,
				lp_supply = EXCLUDED.lp_supply,
				balances = EXCLUDED.balances
		`,
			int64(snap.ChainID),
			snap.Pool,
			int64(snap.BlockNumber),
			int64(snap.Timestamp),
			snap.InitialA,
			snap.FutureA,
			int64(snap.InitialATime),
			int64(snap.FutureATime),
			snap.SwapFee,
			snap.AdminFee,
			numericOrZero(snap.LPSupply),
			snap.Balances,
		)
	}
	return s.sendBatch(ctx, batch, len(snaps))
}

// PutQuoteBatch inserts or replaces quote records.
func (s *Store) PutQuoteBatch(ctx context.Context, quotes []model.QuoteRecord) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		var virtualPrice *string
		if q.VirtualPrice != "" {
			vp := q.VirtualPrice
			virtualPrice = &vp
		}
		batch.Queue(`
			INSERT INTO quotes (
				chain_id, pool_address, block_number, quote_ts, token_from, token_to,
				amount_in, amount_out, swap_fee, admin_fee, a_precise, virtual_price, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7::text::numeric,$8::text::numeric,$9::text::numeric,$10::text::numeric,$11::text::numeric,$12::text::numeric,now())
			ON CONFLICT (chain_id, pool_address, block_number, quote_ts, token_from, token_to, amount_in)
			DO UPDATE SET
				amount_out = EXCLUDED.amount_out,
				swap_fee = EXCLUDED.swap_fee,
				admin_fee = EXCLUDED.admin_fee,
				a_precise = EXCLUDED.a_precise,
				virtual_price = EXCLUDED.virtual_price
		`,
			int64(q.ChainID),
			q.Pool,
			int64(q.BlockNumber),
			int64(q.QuoteTime),
			q.From,
			q.To,
			q.AmountIn,
			q.AmountOut,
			q.SwapFee,
			q.AdminFee,
			q.A,
			virtualPrice,
		)
	}
	return s.sendBatch(ctx, batch, len(quotes))
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM tracker_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tracker_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}

func numericOrZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
