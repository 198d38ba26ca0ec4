package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/asubramanian08/PriceIsRight/server/engine"
	"github.com/asubramanian08/PriceIsRight/server/rational"
	"github.com/asubramanian08/PriceIsRight/server/sim"
	"github.com/asubramanian08/PriceIsRight/server/solver"
	"github.com/asubramanian08/PriceIsRight/server/store"
)

//
// ===== pretty printing =====
//

var useColor bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
	colCyan   = "\033[36m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func cyan(s string) string { return c(colCyan, s) }
func section(title string) { fmt.Printf("\n%s %s %s\n", dim("──"), bold(title), dim("──")) }
func sub(title string)     { fmt.Printf("%s %s\n", dim("•"), bold(title)) }

func probTag(r rational.Rational) string {
	return fmt.Sprintf("%s %s", bold(r.String()), dim(fmt.Sprintf("(≈%.5f)", r.Float64())))
}

//
// ===== bootstrap =====
//

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
func ratEnv(k, def string) rational.Rational {
	s := getenv(k, def)
	v, err := rational.Parse(s)
	if err != nil {
		log.Fatalf("%s=%q: %v", k, s, err)
	}
	return v
}

func rulesFromEnv() engine.Rules {
	rules := engine.DefaultRules()
	rules.WheelSize = atoiDef(os.Getenv("WHEEL_SIZE"), rules.WheelSize)
	rules.AllowDecline = asBool(os.Getenv("ALLOW_DECLINE"))
	if err := rules.Validate(); err != nil {
		log.Fatal(err)
	}
	return rules
}

func openDB() *store.DB {
	dsn := getenv("DATABASE_URL", "")
	if dsn == "" {
		return nil
	}
	db, err := store.Open(dsn)
	if err != nil {
		log.Printf("DB disabled (open failed): %v", err)
		return nil
	}
	if asBool(os.Getenv("AUTO_MIGRATE")) {
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Printf("migrate failed (continuing without DB): %v", err)
			db.Close(context.Background())
			return nil
		}
	}
	return db
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	useColor = (os.Getenv("NO_COLOR") == "") && (strings.TrimSpace(os.Getenv("USE_COLOR")) != "0")

	var migrate, solve, audit, simulate bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--solve":
			solve = true
		case "--audit":
			audit = true
		case "--simulate":
			simulate = true
		}
	}

	if migrate {
		dsn := getenv("DATABASE_URL", "")
		if dsn == "" {
			log.Fatal("Missing required env var DATABASE_URL. Put it in .env (dev) or set it on the host (prod).")
		}
		db, err := store.Open(dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close(context.Background())
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Fatal(err)
		}
		log.Println("migrated")
		return
	}

	rules := rulesFromEnv()

	switch {
	case solve:
		runSolve(rules)
		return
	case audit:
		runAudit(rules)
		return
	case simulate:
		runSimulate(rules)
		return
	}

	// server mode; the database is optional and its absence means
	// compute-only endpoints.
	db := openDB()
	if db != nil {
		defer db.Close(context.Background())
	} else {
		log.Println("no DATABASE_URL, running compute-only")
	}

	port := getenv("PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      Router(db),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go watchSignals(srv)
	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func watchSignals(srv *http.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	<-ch
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

//
// ===== console reports =====
//

// spinsThrough returns the largest total the policy still spins from, walking
// up from 1.
func spinsThrough(n int, spins func(total int) bool) int {
	last := 0
	for s := 1; s <= n; s++ {
		if spins(s) {
			last = s
		}
	}
	return last
}

func printDistribution(res *solver.Result) {
	for seat := engine.SeatFirst; seat <= engine.SeatThird; seat++ {
		fmt.Printf("  %-6s %s\n", cyan(seat.String()), probTag(res.Final[seat]))
	}
	fmt.Printf("  %s %s\n", dim("sum"), res.Final.Sum())
}

func runSolve(rules engine.Rules) {
	start := time.Now()
	res, err := solver.Solve(solver.Config{Rules: rules})
	if err != nil {
		log.Fatal(err)
	}

	section(fmt.Sprintf("Exact solve, wheel 1..%d", rules.WheelSize))
	printDistribution(res)

	sub("Spin-again thresholds")
	n := rules.WheelSize
	fmt.Printf("  first seat spins through %s\n",
		bold(strconv.Itoa(spinsThrough(n, res.FirstSpinsAgain))))
	fmt.Printf("  second seat over a bust spins through %s\n",
		bold(strconv.Itoa(spinsThrough(n, func(s int) bool { return res.SecondSpinsAgain(0, s) }))))
	fmt.Printf("  third seat holding a three-way tie spins through %s\n",
		bold(strconv.Itoa(spinsThrough(n, func(s int) bool { return res.ThirdSpinsAgain(s, s, s) }))))

	sub("Two-way spin-off")
	fmt.Printf("  first mover  %s\n", probTag(res.Replay.FirstWin))
	fmt.Printf("  second mover %s %s\n", probTag(res.Replay.SecondWin),
		dim(fmt.Sprintf("(settled in %d pass(es))", res.Replay.Iterations)))

	fmt.Printf("\n%s\n", dim(fmt.Sprintf("solved in %s", time.Since(start).Round(time.Millisecond))))
}

func runAudit(rules engine.Rules) {
	assumed := solver.Assumptions{
		TwoPlayerSecond:   ratEnv("ASSUME_TWO_PLAYER_SECOND", "1/2"),
		ThreePlayerThird:  ratEnv("ASSUME_THREE_PLAYER_THIRD", "1/3"),
		ThreePlayerSecond: ratEnv("ASSUME_THREE_PLAYER_SECOND", "1/3"),
	}
	res, err := solver.Solve(solver.Config{
		Rules:   rules,
		Mode:    solver.ModeAssumption,
		Assumed: assumed,
	})
	if err != nil {
		log.Fatal(err)
	}

	section(fmt.Sprintf("Assumption audit, wheel 1..%d", rules.WheelSize))
	printDistribution(res)

	sub("Verdicts")
	for _, ch := range res.Checks {
		verdict := good("valid")
		switch {
		case !ch.Feasible:
			verdict = bad("infeasible")
		case !ch.Valid:
			verdict = warn("invalid")
		}
		fmt.Printf("  %-22s assumed %-10s bounds %-22s truth %-24s %s\n",
			ch.Parameter, ch.Assumed, ch.Bounds, ch.TrueValue, verdict)
	}
}

func runSimulate(rules engine.Rules) {
	rounds := atoiDef(os.Getenv("SIM_ROUNDS"), 1_000_000)
	seed := int64(atoiDef(os.Getenv("SIM_SEED"), 0))

	res, err := solver.Solve(solver.Config{Rules: rules})
	if err != nil {
		log.Fatal(err)
	}
	start := time.Now()
	tally := sim.New(res, seed).Run(rounds)

	section(fmt.Sprintf("Simulation, wheel 1..%d, %d rounds", rules.WheelSize, rounds))
	for seat := engine.SeatFirst; seat <= engine.SeatThird; seat++ {
		exact := res.Final[seat].Float64()
		rate := tally.Rate(seat)
		fmt.Printf("  %-6s observed %.5f  exact %.5f  %s\n",
			cyan(seat.String()), rate, exact, dim(fmt.Sprintf("Δ=%+.5f", rate-exact)))
	}
	fmt.Printf("  %s two-way %d, three-way %d\n",
		dim("spin-offs:"), tally.TwoWaySpinoffs, tally.ThreeWaySpinoffs)
	fmt.Printf("\n%s\n", dim(fmt.Sprintf("played in %s", time.Since(start).Round(time.Millisecond))))

	if db := openDB(); db != nil {
		defer db.Close(context.Background())
		id, err := db.InsertSimRun(context.Background(), store.SimRun{
			WheelSize:        rules.WheelSize,
			Seed:             seed,
			Rounds:           tally.Rounds,
			Wins:             tally.Wins,
			TwoWaySpinoffs:   tally.TwoWaySpinoffs,
			ThreeWaySpinoffs: tally.ThreeWaySpinoffs,
		})
		if err != nil {
			log.Printf("sim run not persisted: %v", err)
		} else {
			log.Printf("sim run %d persisted", id)
		}
	}
}
