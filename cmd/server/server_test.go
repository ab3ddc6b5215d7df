package main

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/madebycotrim/printlog-sub001/internal/config"
	"github.com/madebycotrim/printlog-sub001/internal/history"
	"github.com/madebycotrim/printlog-sub001/internal/seed"
	"github.com/madebycotrim/printlog-sub001/internal/settings"
)

func newTestServer(t *testing.T) (*server, http.Handler) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			energy_cost_per_kwh NUMERIC NOT NULL DEFAULT 0,
			labor_hour_rate NUMERIC NOT NULL DEFAULT 0,
			machine_hour_rate NUMERIC NOT NULL DEFAULT 0,
			setup_fee NUMERIC NOT NULL DEFAULT 0,
			printer_consumption_kw NUMERIC NOT NULL DEFAULT 0,
			target_margin NUMERIC NOT NULL DEFAULT 0,
			tax_rate NUMERIC NOT NULL DEFAULT 0,
			failure_rate NUMERIC NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE quote_history (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			input_json TEXT NOT NULL,
			result_json TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	require.NoError(t, err)

	_, err = seed.Run(db)
	require.NoError(t, err)

	srv := &server{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		settings: settings.NewStore(db),
		history:  history.NewStore(db),
	}

	cfg := config.Config{AllowedOrigins: []string{"http://localhost:5173"}}
	return srv, srv.routes(cfg)
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
