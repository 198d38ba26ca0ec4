// server/router.go
package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asubramanian08/PriceIsRight/server/engine"
	"github.com/asubramanian08/PriceIsRight/server/rational"
	"github.com/asubramanian08/PriceIsRight/server/sim"
	"github.com/asubramanian08/PriceIsRight/server/solver"
	"github.com/asubramanian08/PriceIsRight/server/store"
)

// Prob renders one exact probability alongside a float approximation for
// human readers. The exact string is authoritative.
type Prob struct {
	Exact  string  `json:"exact"`
	Approx float64 `json:"approx"`
}

func prob(r rational.Rational) Prob {
	return Prob{Exact: r.String(), Approx: r.Float64()}
}

type checkPayload struct {
	Parameter string `json:"parameter"`
	Assumed   string `json:"assumed"`
	MinBound  string `json:"min_bound"`
	MaxBound  string `json:"max_bound"`
	Feasible  bool   `json:"feasible"`
	TrueValue string `json:"true_value"`
	Valid     bool   `json:"valid"`
}

type solvePayload struct {
	RunID        *int64         `json:"run_id,omitempty"`
	WheelSize    int            `json:"wheel_size"`
	AllowDecline bool           `json:"allow_decline"`
	Mode         string         `json:"mode"`
	Seats        [3]Prob        `json:"seats"`
	Replay       [2]Prob        `json:"replay"`
	Checks       []checkPayload `json:"checks,omitempty"`
}

func newSolvePayload(res *solver.Result) solvePayload {
	p := solvePayload{
		WheelSize:    res.Rules.WheelSize,
		AllowDecline: res.Rules.AllowDecline,
		Mode:         string(res.Mode),
		Seats:        [3]Prob{prob(res.Final[0]), prob(res.Final[1]), prob(res.Final[2])},
		Replay:       [2]Prob{prob(res.Replay.FirstWin), prob(res.Replay.SecondWin)},
	}
	for _, c := range res.Checks {
		p.Checks = append(p.Checks, checkPayload{
			Parameter: c.Parameter.String(),
			Assumed:   c.Assumed.String(),
			MinBound:  c.Bounds.Min.String(),
			MaxBound:  c.Bounds.Max.String(),
			Feasible:  c.Feasible,
			TrueValue: c.TrueValue.String(),
			Valid:     c.Valid,
		})
	}
	return p
}

// persistSolve writes a finished solve when a database is attached. A nil
// db keeps the server in compute-only mode.
func persistSolve(r *http.Request, db *store.DB, res *solver.Result) *int64 {
	if db == nil {
		return nil
	}
	ctx := r.Context()
	id, err := db.InsertSolveRun(ctx, store.SolveRun{
		WheelSize:       res.Rules.WheelSize,
		AllowDecline:    res.Rules.AllowDecline,
		Mode:            string(res.Mode),
		FirstWin:        res.Final[0].String(),
		SecondWin:       res.Final[1].String(),
		ThirdWin:        res.Final[2].String(),
		ReplayFirstWin:  res.Replay.FirstWin.String(),
		ReplaySecondWin: res.Replay.SecondWin.String(),
	})
	if err != nil {
		log.Printf("solve run not persisted: %v", err)
		return nil
	}
	for _, c := range res.Checks {
		err := db.InsertAssumptionCheck(ctx, store.AssumptionCheck{
			RunID:     id,
			Parameter: c.Parameter.String(),
			Assumed:   c.Assumed.String(),
			MinBound:  c.Bounds.Min.String(),
			MaxBound:  c.Bounds.Max.String(),
			Feasible:  c.Feasible,
			TrueValue: c.TrueValue.String(),
			Valid:     c.Valid,
		})
		if err != nil {
			log.Printf("assumption check for run %d not persisted: %v", id, err)
		}
	}
	return &id
}

func rulesFromQuery(r *http.Request) (engine.Rules, error) {
	rules := engine.DefaultRules()
	if s := r.URL.Query().Get("wheel"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return engine.Rules{}, errors.New("wheel must be an integer")
		}
		rules.WheelSize = n
	}
	if s := r.URL.Query().Get("decline"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return engine.Rules{}, errors.New("decline must be a boolean")
		}
		rules.AllowDecline = b
	}
	return rules, rules.Validate()
}

func solveErrStatus(err error) int {
	var inv *solver.InvariantError
	if errors.As(err, &inv) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, engine.ErrWheelSize) {
		return http.StatusBadRequest
	}
	if errors.Is(err, solver.ErrNoFixedPoint) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func Router(db *store.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		dbOK := false
		if db != nil {
			dbOK = db.Ping(req.Context()) == nil
		}
		writeJSON(w, map[string]any{"ok": true, "db": dbOK})
	})

	// Exact solve, recursive tie resolution.
	r.Get("/api/solve", func(w http.ResponseWriter, req *http.Request) {
		rules, err := rulesFromQuery(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := solver.Solve(solver.Config{Rules: rules})
		if err != nil {
			http.Error(w, err.Error(), solveErrStatus(err))
			return
		}
		p := newSolvePayload(res)
		p.RunID = persistSolve(req, db, res)
		writeJSON(w, p)
	})

	// Assumption-mode solve plus audit of the assumed tie values.
	r.Post("/api/assumptions", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Wheel             int    `json:"wheel"`
			Decline           bool   `json:"decline"`
			TwoPlayerSecond   string `json:"two_player_second"`
			ThreePlayerThird  string `json:"three_player_third"`
			ThreePlayerSecond string `json:"three_player_second"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		rules := engine.DefaultRules()
		if body.Wheel != 0 {
			rules.WheelSize = body.Wheel
		}
		rules.AllowDecline = body.Decline

		var assumed solver.Assumptions
		for _, f := range []struct {
			name string
			raw  string
			dst  *rational.Rational
		}{
			{"two_player_second", body.TwoPlayerSecond, &assumed.TwoPlayerSecond},
			{"three_player_third", body.ThreePlayerThird, &assumed.ThreePlayerThird},
			{"three_player_second", body.ThreePlayerSecond, &assumed.ThreePlayerSecond},
		} {
			v, err := rational.Parse(f.raw)
			if err != nil {
				http.Error(w, f.name+": "+err.Error(), http.StatusBadRequest)
				return
			}
			*f.dst = v
		}

		res, err := solver.Solve(solver.Config{
			Rules:   rules,
			Mode:    solver.ModeAssumption,
			Assumed: assumed,
		})
		if err != nil {
			http.Error(w, err.Error(), solveErrStatus(err))
			return
		}
		p := newSolvePayload(res)
		p.RunID = persistSolve(req, db, res)
		writeJSON(w, p)
	})

	// Monte Carlo playouts under the solved policy.
	r.Post("/api/simulate", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Wheel   int   `json:"wheel"`
			Decline bool  `json:"decline"`
			Seed    int64 `json:"seed"`
			Rounds  int   `json:"rounds"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		rules := engine.DefaultRules()
		if body.Wheel != 0 {
			rules.WheelSize = body.Wheel
		}
		rules.AllowDecline = body.Decline
		rounds := body.Rounds
		if rounds <= 0 {
			rounds = 100000
		}
		if rounds > 10_000_000 {
			http.Error(w, "rounds too large", http.StatusBadRequest)
			return
		}

		res, err := solver.Solve(solver.Config{Rules: rules})
		if err != nil {
			http.Error(w, err.Error(), solveErrStatus(err))
			return
		}
		tally := sim.New(res, body.Seed).Run(rounds)

		runID := persistSolve(req, db, res)
		var simID *int64
		if db != nil {
			if id, err := db.InsertSimRun(req.Context(), store.SimRun{
				RunID:            runID,
				WheelSize:        rules.WheelSize,
				Seed:             body.Seed,
				Rounds:           tally.Rounds,
				Wins:             tally.Wins,
				TwoWaySpinoffs:   tally.TwoWaySpinoffs,
				ThreeWaySpinoffs: tally.ThreeWaySpinoffs,
			}); err == nil {
				simID = &id
			} else {
				log.Printf("sim run not persisted: %v", err)
			}
		}

		writeJSON(w, map[string]any{
			"sim_id":             simID,
			"run_id":             runID,
			"wheel_size":         rules.WheelSize,
			"rounds":             tally.Rounds,
			"rates":              [3]float64{tally.Rate(0), tally.Rate(1), tally.Rate(2)},
			"wins":               tally.Wins,
			"two_way_spinoffs":   tally.TwoWaySpinoffs,
			"three_way_spinoffs": tally.ThreeWaySpinoffs,
			"exact": [3]Prob{
				prob(res.Final[0]), prob(res.Final[1]), prob(res.Final[2]),
			},
		})
	})

	// Persisted runs.
	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		if db == nil {
			http.Error(w, "no database attached", http.StatusServiceUnavailable)
			return
		}
		limit := 0
		if s := req.URL.Query().Get("limit"); s != "" {
			limit, _ = strconv.Atoi(s)
		}
		rows, err := db.ListSolveRuns(req.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"rows": rows})
	})

	r.Get("/api/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		if db == nil {
			http.Error(w, "no database attached", http.StatusServiceUnavailable)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		run, checks, err := db.GetSolveRun(req.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "no such run", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"run": run, "checks": checks})
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
