package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"politrades/internal/models"
)

const (
	createKVTableSQL = `CREATE TABLE IF NOT EXISTS kv_store (
        key        TEXT PRIMARY KEY,
        value      JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );`

	getValueSQL = `SELECT value FROM kv_store WHERE key = $1;`

	upsertValueSQL = `INSERT INTO kv_store (key, value, updated_at)
    VALUES ($1, $2, now())
    ON CONFLICT (key) DO UPDATE
    SET value      = EXCLUDED.value,
        updated_at = EXCLUDED.updated_at;`

	deleteValueSQL = `DELETE FROM kv_store WHERE key = $1;`

	listPoliticiansSQL = `SELECT
        id,
        name,
        short_name,
        initials,
        party,
        chamber,
        state,
        position,
        photo_url,
        total_trades,
        avg_return::text,
        win_rate::text,
        total_value::text,
        top_sector
    FROM politicians
    ORDER BY name;`

	listTradesSQL = `SELECT
        t.id,
        t.politician_id,
        p.name,
        p.initials,
        p.party,
        p.chamber,
        p.state,
        t.ticker,
        t.company,
        t.trade_type,
        t.amount_min::text,
        t.amount_max::text,
        t.transaction_date,
        t.filing_date,
        t.sector,
        t.return_since_filing::text,
        t.price_at_trade::text,
        t.current_price::text,
        t.source_url,
        t.source_type
    FROM trades t
    JOIN politicians p ON p.id = t.politician_id
    ORDER BY t.filing_date DESC, t.id;`

	listTickersSQL = `SELECT
        symbol,
        company,
        price::text,
        change::text,
        change_percent::text,
        sparkline::text[],
        sector
    FROM tickers
    ORDER BY symbol;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store is the PostgreSQL-backed key-value backend and dataset repository.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the kv_store table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, createKVTableSQL); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

// Get returns the stored JSON blob for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	var value []byte
	if scanErr := pool.QueryRow(ctx, getValueSQL, key).Scan(&value); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, scanErr)
	}
	return value, nil
}

// Set upserts the JSON blob for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, upsertValueSQL, key, value); execErr != nil {
		return fmt.Errorf("upsert %s: %w", key, execErr)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteValueSQL, key); execErr != nil {
		return fmt.Errorf("delete %s: %w", key, execErr)
	}
	return nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

// Politicians lists all politicians ordered by name.
func (s *Store) Politicians(ctx context.Context) ([]models.Politician, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listPoliticiansSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list politicians: %w", queryErr)
	}
	defer rows.Close()

	out := make([]models.Politician, 0)
	for rows.Next() {
		p, scanErr := scanPolitician(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Trades lists all trades, most recently filed first.
func (s *Store) Trades(ctx context.Context) ([]models.Trade, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listTradesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list trades: %w", queryErr)
	}
	defer rows.Close()

	out := make([]models.Trade, 0)
	for rows.Next() {
		t, scanErr := scanTrade(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Tickers lists all tickers ordered by symbol.
func (s *Store) Tickers(ctx context.Context) ([]models.Ticker, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listTickersSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list tickers: %w", queryErr)
	}
	defer rows.Close()

	out := make([]models.Ticker, 0)
	for rows.Next() {
		var (
			tk                       models.Ticker
			priceStr, chgStr, pctStr string
			spark                    []string
		)
		if err := rows.Scan(&tk.Symbol, &tk.Company, &priceStr, &chgStr, &pctStr, &spark, &tk.Sector); err != nil {
			return nil, err
		}
		if tk.Price, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("parse price %s: %w", tk.Symbol, err)
		}
		if tk.Change, err = decimal.NewFromString(chgStr); err != nil {
			return nil, fmt.Errorf("parse change %s: %w", tk.Symbol, err)
		}
		if tk.ChangePercent, err = decimal.NewFromString(pctStr); err != nil {
			return nil, fmt.Errorf("parse change pct %s: %w", tk.Symbol, err)
		}
		tk.Sparkline = make([]decimal.Decimal, 0, len(spark))
		for _, v := range spark {
			d, convErr := decimal.NewFromString(v)
			if convErr != nil {
				return nil, fmt.Errorf("parse sparkline %s: %w", tk.Symbol, convErr)
			}
			tk.Sparkline = append(tk.Sparkline, d)
		}
		out = append(out, tk)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func scanPolitician(rows pgx.Rows) (models.Politician, error) {
	var (
		p                        models.Politician
		party, chamber           string
		position, photo          sql.NullString
		avgStr, winStr, totalStr string
	)
	if err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.ShortName,
		&p.Initials,
		&party,
		&chamber,
		&p.State,
		&position,
		&photo,
		&p.Stats.TotalTrades,
		&avgStr,
		&winStr,
		&totalStr,
		&p.Stats.TopSector,
	); err != nil {
		return models.Politician{}, err
	}

	var err error
	if p.Party, err = models.ParseParty(party); err != nil {
		return models.Politician{}, err
	}
	if p.Chamber, err = models.ParseChamber(chamber); err != nil {
		return models.Politician{}, err
	}
	if p.Stats.AvgReturn, err = decimal.NewFromString(avgStr); err != nil {
		return models.Politician{}, fmt.Errorf("parse avg return: %w", err)
	}
	if p.Stats.WinRate, err = decimal.NewFromString(winStr); err != nil {
		return models.Politician{}, fmt.Errorf("parse win rate: %w", err)
	}
	if p.Stats.TotalValue, err = decimal.NewFromString(totalStr); err != nil {
		return models.Politician{}, fmt.Errorf("parse total value: %w", err)
	}
	p.Position = position.String
	p.PhotoURL = photo.String
	return p, nil
}

func scanTrade(rows pgx.Rows) (models.Trade, error) {
	var (
		t                     models.Trade
		party, chamber        string
		tradeType, sourceType string
		minStr, maxStr        sql.NullString
		returnStr             string
		priceStr, currentStr  sql.NullString
		sourceURL             sql.NullString
	)
	if err := rows.Scan(
		&t.ID,
		&t.PoliticianID,
		&t.Politician.Name,
		&t.Politician.Initials,
		&party,
		&chamber,
		&t.Politician.State,
		&t.Ticker,
		&t.Company,
		&tradeType,
		&minStr,
		&maxStr,
		&t.TransactionDate,
		&t.FilingDate,
		&t.Sector,
		&returnStr,
		&priceStr,
		&currentStr,
		&sourceURL,
		&sourceType,
	); err != nil {
		return models.Trade{}, err
	}

	var err error
	if t.Politician.Party, err = models.ParseParty(party); err != nil {
		return models.Trade{}, err
	}
	if t.Politician.Chamber, err = models.ParseChamber(chamber); err != nil {
		return models.Trade{}, err
	}
	t.Type = models.TradeType(tradeType)
	t.SourceType = models.SourceType(sourceType)
	t.SourceURL = sourceURL.String

	if t.Amount.Min, err = parseNullDecimal(minStr); err != nil {
		return models.Trade{}, fmt.Errorf("parse amount min: %w", err)
	}
	if t.Amount.Max, err = parseNullDecimal(maxStr); err != nil {
		return models.Trade{}, fmt.Errorf("parse amount max: %w", err)
	}
	if t.ReturnSinceFiling, err = decimal.NewFromString(returnStr); err != nil {
		return models.Trade{}, fmt.Errorf("parse return: %w", err)
	}
	if t.PriceAtTrade, err = parseNullDecimal(priceStr); err != nil {
		return models.Trade{}, fmt.Errorf("parse price at trade: %w", err)
	}
	if t.CurrentPrice, err = parseNullDecimal(currentStr); err != nil {
		return models.Trade{}, fmt.Errorf("parse current price: %w", err)
	}
	return t, nil
}

func parseNullDecimal(v sql.NullString) (decimal.NullDecimal, error) {
	if !v.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

var (
	_ Backend        = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)
