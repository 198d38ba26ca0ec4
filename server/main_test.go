package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asubramanian08/PriceIsRight/server/store"
)

func TestHealthComputeOnly(t *testing.T) {
	srv := httptest.NewServer(Router(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		OK bool `json:"ok"`
		DB bool `json:"db"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.DB {
		t.Fatalf("health = %+v, want ok without db", body)
	}
}

func TestSolveEndpoint(t *testing.T) {
	srv := httptest.NewServer(Router(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/solve?wheel=5")
	if err != nil {
		t.Fatalf("GET /api/solve: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body solvePayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.WheelSize != 5 || body.Mode != "recursive" {
		t.Fatalf("payload = %+v", body)
	}
	if body.Seats[0].Exact != "271979/890625" {
		t.Fatalf("first seat = %s, want 271979/890625", body.Seats[0].Exact)
	}
	if body.Replay[1].Exact != "125/228" {
		t.Fatalf("replay second mover = %s, want 125/228", body.Replay[1].Exact)
	}
	if body.RunID != nil {
		t.Fatalf("compute-only solve should not carry a run id")
	}
}

func TestSolveEndpointRejectsBadWheel(t *testing.T) {
	srv := httptest.NewServer(Router(nil))
	defer srv.Close()

	for _, q := range []string{"wheel=0", "wheel=abc", "decline=maybe"} {
		resp, err := http.Get(srv.URL + "/api/solve?" + q)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestAssumptionsEndpoint(t *testing.T) {
	srv := httptest.NewServer(Router(nil))
	defer srv.Close()

	req := `{"wheel":5,"two_player_second":"1/2","three_player_third":"1/3","three_player_second":"1/3"}`
	resp, err := http.Post(srv.URL+"/api/assumptions", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatalf("POST /api/assumptions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body solvePayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Mode != "assumption" || len(body.Checks) != 3 {
		t.Fatalf("payload = %+v, want assumption mode with 3 checks", body)
	}
	for _, ch := range body.Checks {
		if ch.TrueValue == "" {
			t.Fatalf("check %s missing truth", ch.Parameter)
		}
	}
}

func TestAssumptionsEndpointRejectsBadFraction(t *testing.T) {
	srv := httptest.NewServer(Router(nil))
	defer srv.Close()

	req := `{"wheel":5,"two_player_second":"half","three_player_third":"1/3","three_player_second":"1/3"}`
	resp, err := http.Post(srv.URL+"/api/assumptions", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSimulateEndpoint(t *testing.T) {
	srv := httptest.NewServer(Router(nil))
	defer srv.Close()

	req := `{"wheel":5,"seed":7,"rounds":5000}`
	resp, err := http.Post(srv.URL+"/api/simulate", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatalf("POST /api/simulate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Rounds int        `json:"rounds"`
		Wins   [3]int     `json:"wins"`
		Rates  [3]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Rounds != 5000 {
		t.Fatalf("rounds = %d, want 5000", body.Rounds)
	}
	total := body.Wins[0] + body.Wins[1] + body.Wins[2]
	if total != 5000 {
		t.Fatalf("wins sum to %d, want 5000", total)
	}
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	// The pool opens lazily, so a dead address only fails at insert time.
	// The solve must still come back, just without a run id.
	db, err := store.Open("postgres://nobody@127.0.0.1:1/nothing")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close(context.Background())

	srv := httptest.NewServer(Router(db))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/solve?wheel=5")
	if err != nil {
		t.Fatalf("GET /api/solve: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body solvePayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RunID != nil {
		t.Fatalf("run id %d from an unreachable database", *body.RunID)
	}
	if body.Seats[0].Exact != "271979/890625" {
		t.Fatalf("first seat = %s, want 271979/890625", body.Seats[0].Exact)
	}
}

func TestRunsRequireDatabase(t *testing.T) {
	srv := httptest.NewServer(Router(nil))
	defer srv.Close()

	for _, path := range []string{"/api/runs", "/api/runs/1"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("%s: status = %d, want 503", path, resp.StatusCode)
		}
	}
}
