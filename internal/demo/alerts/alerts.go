// Package alerts manages the journal of failed operations.
package alerts

//go:generate go run github.com/scbrown/newman/cmd/newman-gen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/scbrown/newman/internal/config"
	"github.com/scbrown/newman/internal/model"
	"github.com/scbrown/newman/internal/server"
	"github.com/scbrown/newman/internal/store"
	"github.com/scbrown/newman/internal/table"
)

// Stdout receives listings.
var Stdout io.Writer = os.Stdout

// ConfigPath is the configuration read when no --db is given; "" is the
// default location.
var ConfigPath string

// ErrJournalOff is returned when no journal is given and store_mode is off.
var ErrJournalOff = errors.New("alert journal is off (store_mode = \"off\"); pass --db")

// open returns the store named by db, a database path or a collector URL.
// An empty db falls back to the configuration.
func open(db string) (store.Store, error) {
	if db == "" {
		path := ConfigPath
		if path == "" {
			path = config.Path()
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return nil, err
		}
		if db = cfg.StoreTarget(); db == "" {
			return nil, ErrJournalOff
		}
	}
	return store.Open(db)
}

// Serve runs an alert collector on addr until interrupted.
//
// Remote hosts report to it with store_mode = "remote".
//
//newman:default addr=":7273"
//newman:default db=""
func Serve(ctx context.Context, addr, db string) error {
	s, err := open(db)
	if err != nil {
		return err
	}
	defer s.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := server.New(s)
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	slog.InfoContext(ctx, "alert collector listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// List prints the most recent alerts, newest first.
//
//newman:default db=""
//newman:default limit=20
//newman:default severity=""
func List(ctx context.Context, db string, limit int, severity string) error {
	s, err := open(db)
	if err != nil {
		return err
	}
	defer s.Close()

	alerts, err := s.ListAlerts(ctx, store.ListOpts{Severity: severity, Limit: limit})
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(Stdout, "No alerts recorded.")
		return nil
	}
	tbl := table.New(Stdout, "WHEN", "SEVERITY", "OPERATION", "ERROR", "MESSAGE")
	for _, a := range alerts {
		target := a.Target()
		if target == "" {
			target = "-"
		}
		tbl.Row(table.Ago(a.Timestamp), a.Severity, target, a.ErrorType, table.Truncate(a.Message, 60))
	}
	return tbl.Flush()
}

// Stats prints a summary of the alert journal.
//
//newman:default db=""
func Stats(ctx context.Context, db string) error {
	s, err := open(db)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	color := table.IsTTY(Stdout)
	fmt.Fprintf(Stdout, "Total alerts:  %s\n", humanize.Comma(int64(st.Total)))
	if st.Total == 0 {
		return nil
	}
	fmt.Fprintf(Stdout, "Last 24h:      %s\n", humanize.Comma(int64(st.Last24h)))
	fmt.Fprintf(Stdout, "First:         %s\n", table.Ago(st.Earliest))
	fmt.Fprintf(Stdout, "Latest:        %s\n", table.Ago(st.Latest))

	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, table.Bold("By severity:", color))
	for _, sev := range []string{model.SeverityCritical, model.SeverityError, model.SeverityWarning, model.SeverityInfo} {
		if n := st.BySeverity[sev]; n > 0 {
			fmt.Fprintf(Stdout, "  %-20s %s\n", sev, humanize.Comma(int64(n)))
		}
	}
	if len(st.TopOperations) > 0 {
		fmt.Fprintln(Stdout)
		fmt.Fprintln(Stdout, table.Bold("Top operations:", color))
		for _, nc := range st.TopOperations {
			fmt.Fprintf(Stdout, "  %-20s %s\n", nc.Name, humanize.Comma(int64(nc.Count)))
		}
	}
	return nil
}

// Raise fails with message to exercise the alert sink.
//
// A non-zero code becomes the exit status.
//
//newman:default message="test alert"
//newman:default code=0
func Raise(message string, code int) (int, error) {
	return code, errors.New(message)
}
