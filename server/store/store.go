package store

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("store: not found")

// SolveRun is one persisted solve. Probabilities are stored as exact
// fraction strings; nothing in the database is ever a float.
type SolveRun struct {
	ID              int64
	WheelSize       int
	AllowDecline    bool
	Mode            string
	FirstWin        string
	SecondWin       string
	ThirdWin        string
	ReplayFirstWin  string
	ReplaySecondWin string
	CreatedAt       time.Time
}

// AssumptionCheck is one persisted per-parameter verdict of an
// assumption-mode solve.
type AssumptionCheck struct {
	RunID     int64
	Parameter string
	Assumed   string
	MinBound  string
	MaxBound  string
	Feasible  bool
	TrueValue string
	Valid     bool
}

// SimRun is one persisted simulation tally. RunID links back to the solve
// whose tables drove it, when that solve was persisted.
type SimRun struct {
	ID               int64
	RunID            *int64
	WheelSize        int
	Seed             int64
	Rounds           int
	Wins             [3]int
	TwoWaySpinoffs   int
	ThreeWaySpinoffs int
	CreatedAt        time.Time
}

// Insert a solve run and return its id.
func (db *DB) InsertSolveRun(ctx context.Context, r SolveRun) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO solve_runs(
            wheel_size, allow_decline, mode,
            first_win, second_win, third_win,
            replay_first_win, replay_second_win
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id
    `, r.WheelSize, r.AllowDecline, r.Mode,
		r.FirstWin, r.SecondWin, r.ThirdWin,
		r.ReplayFirstWin, r.ReplaySecondWin).Scan(&id)
	return id, err
}

func (db *DB) InsertAssumptionCheck(ctx context.Context, c AssumptionCheck) error {
	_, err := db.Exec(ctx, `
        INSERT INTO assumption_checks(
            run_id, parameter, assumed,
            min_bound, max_bound, feasible,
            true_value, valid
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, c.RunID, c.Parameter, c.Assumed,
		c.MinBound, c.MaxBound, c.Feasible,
		c.TrueValue, c.Valid)
	return err
}

// Insert a simulation tally and return its id.
func (db *DB) InsertSimRun(ctx context.Context, r SimRun) (int64, error) {
	var runID any
	if r.RunID != nil {
		runID = *r.RunID
	}
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO sim_runs(
            run_id, wheel_size, seed, rounds,
            first_wins, second_wins, third_wins,
            two_way_spinoffs, three_way_spinoffs
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id
    `, runID, r.WheelSize, r.Seed, r.Rounds,
		r.Wins[0], r.Wins[1], r.Wins[2],
		r.TwoWaySpinoffs, r.ThreeWaySpinoffs).Scan(&id)
	return id, err
}

func (db *DB) GetSolveRun(ctx context.Context, id int64) (SolveRun, []AssumptionCheck, error) {
	var r SolveRun
	err := db.QueryRow(ctx, `
        SELECT id, wheel_size, allow_decline, mode,
               first_win, second_win, third_win,
               replay_first_win, replay_second_win, created_at
          FROM solve_runs WHERE id = $1
    `, id).Scan(&r.ID, &r.WheelSize, &r.AllowDecline, &r.Mode,
		&r.FirstWin, &r.SecondWin, &r.ThirdWin,
		&r.ReplayFirstWin, &r.ReplaySecondWin, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SolveRun{}, nil, ErrNotFound
		}
		return SolveRun{}, nil, err
	}

	rows, err := db.Query(ctx, `
        SELECT run_id, parameter, assumed,
               min_bound, max_bound, feasible,
               true_value, valid
          FROM assumption_checks
         WHERE run_id = $1
         ORDER BY id
    `, id)
	if err != nil {
		return SolveRun{}, nil, err
	}
	defer rows.Close()
	var checks []AssumptionCheck
	for rows.Next() {
		var c AssumptionCheck
		if err := rows.Scan(&c.RunID, &c.Parameter, &c.Assumed,
			&c.MinBound, &c.MaxBound, &c.Feasible,
			&c.TrueValue, &c.Valid); err != nil {
			return SolveRun{}, nil, err
		}
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return SolveRun{}, nil, err
	}
	return r, checks, nil
}

func (db *DB) ListSolveRuns(ctx context.Context, limit int) ([]SolveRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
        SELECT id, wheel_size, allow_decline, mode,
               first_win, second_win, third_win,
               replay_first_win, replay_second_win, created_at
          FROM solve_runs
         ORDER BY id DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SolveRun
	for rows.Next() {
		var r SolveRun
		if err := rows.Scan(&r.ID, &r.WheelSize, &r.AllowDecline, &r.Mode,
			&r.FirstWin, &r.SecondWin, &r.ThirdWin,
			&r.ReplayFirstWin, &r.ReplaySecondWin, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
