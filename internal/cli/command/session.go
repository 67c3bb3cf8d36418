package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/foteam/sessionstore/internal/cli/output"
	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/storage/filestore"
)

// ListCommand lists the records in the session directory.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List session records",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stale",
				Usage: "Only show records idle for longer than the TTL",
			},
		},
		Action: sessionList,
	}
}

// listRow is the table view of a record.
type listRow struct {
	ID           string    `json:"id"`
	Size         int64     `json:"size"`
	Modified     time.Time `json:"modified"`
	LastActivity time.Time `json:"last_activity"`
	Cart         int       `json:"cart"`
	Renewed      bool      `json:"renewed" table:"wide"`
	Expired      bool      `json:"expired" table:"wide"`
	Stale        bool      `json:"stale"`
}

func sessionList(c *cli.Context) error {
	store, _, err := openStore(c)
	if err != nil {
		return err
	}

	records, err := store.List(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("stale") {
		kept := records[:0]
		for _, r := range records {
			if r.Stale {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	flags := ParseGlobalFlags(c)
	if flags.Output != output.FormatTable {
		return render(c, records)
	}

	rows := make([]listRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, listRow{
			ID:           shortID(r.ID, flags.Wide),
			Size:         r.Size,
			Modified:     r.ModTime,
			LastActivity: r.LastActivity,
			Cart:         r.CartItems,
			Renewed:      r.Renewed,
			Expired:      r.Expired,
			Stale:        r.Stale,
		})
	}
	if err := render(c, rows); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nTotal: %d sessions\n", len(rows))
	return nil
}

// InspectCommand prints one record without touching it.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Aliases:   []string{"get"},
		Usage:     "Show a record's metadata and attributes (read-only)",
		ArgsUsage: "SESSION_ID",
		Action:    sessionInspect,
	}
}

type inspectResult struct {
	Record     filestore.RecordInfo `json:"record" yaml:"record"`
	Attributes map[string]any       `json:"attributes" yaml:"attributes"`
}

func sessionInspect(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	store, _, err := openStore(c)
	if err != nil {
		return err
	}

	info, attrs, err := store.Inspect(c.Context, id)
	if err != nil {
		return err
	}

	if ParseGlobalFlags(c).Output != output.FormatTable {
		return render(c, inspectResult{Record: info, Attributes: attrs})
	}
	if err := render(c, info); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer)
	return render(c, attrs)
}

// DestroyCommand removes one record.
func DestroyCommand() *cli.Command {
	return &cli.Command{
		Name:      "destroy",
		Aliases:   []string{"rm"},
		Usage:     "Delete a session record",
		ArgsUsage: "SESSION_ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip confirmation",
			},
		},
		Action: sessionDestroy,
	}
}

func sessionDestroy(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	if !domain.IsValidSessionID(id) {
		return domain.ErrInvalidSessionID
	}
	store, _, err := openStore(c)
	if err != nil {
		return err
	}

	if !c.Bool("force") && !confirm(c, "Destroy session "+shortID(id, false)+"?") {
		fmt.Fprintln(c.App.ErrWriter, "aborted")
		return nil
	}
	if !store.Destroy(c.Context, id) {
		return domain.ErrStorageError.WithDetails("destroy " + shortID(id, false))
	}
	fmt.Fprintf(c.App.Writer, "destroyed %s\n", shortID(id, ParseGlobalFlags(c).Wide))
	return nil
}

// ValidateCommand runs the store's id validation, which refreshes live
// records and resets stale ones like a real request would.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a session id (refreshes or resets its record)",
		ArgsUsage: "SESSION_ID",
		Action:    sessionValidate,
	}
}

type validateResult struct {
	ID    string `json:"id" yaml:"id"`
	Valid bool   `json:"valid" yaml:"valid"`
}

func sessionValidate(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	store, _, err := openStore(c)
	if err != nil {
		return err
	}

	valid := store.ValidateID(c.Context, id)
	if ParseGlobalFlags(c).Output != output.FormatTable {
		if err := render(c, validateResult{ID: id, Valid: valid}); err != nil {
			return err
		}
	} else if valid {
		fmt.Fprintln(c.App.Writer, "valid")
	}
	if !valid {
		return cli.Exit(domain.ErrInvalidSessionID.Error(), 1)
	}
	return nil
}

// GCCommand runs one retention sweep.
func GCCommand() *cli.Command {
	return &cli.Command{
		Name:  "gc",
		Usage: "Delete records not modified within the retention window",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "max-lifetime",
				Usage: "Retention window (default: session.gc_max_lifetime)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "List what would be deleted without deleting",
			},
		},
		Action: sessionGC,
	}
}

type gcResult struct {
	MaxLifetime string   `json:"max_lifetime" yaml:"max_lifetime"`
	DryRun      bool     `json:"dry_run" yaml:"dry_run"`
	Deleted     int      `json:"deleted" yaml:"deleted"`
	Candidates  []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

func sessionGC(c *cli.Context) error {
	store, cfg, err := openStore(c)
	if err != nil {
		return err
	}

	maxLifetime := cfg.Session.GCMaxLifetime
	if c.IsSet("max-lifetime") {
		maxLifetime = c.Duration("max-lifetime")
	}
	if maxLifetime <= 0 {
		return fmt.Errorf("max-lifetime must be positive, got %s", maxLifetime)
	}

	res := gcResult{MaxLifetime: maxLifetime.String(), DryRun: c.Bool("dry-run")}
	if res.DryRun {
		records, err := store.List(c.Context)
		if err != nil {
			return err
		}
		cutoff := time.Now().Add(-maxLifetime)
		for _, r := range records {
			if r.ModTime.Before(cutoff) {
				res.Candidates = append(res.Candidates, r.ID)
			}
		}
	} else {
		res.Deleted = store.GC(c.Context, maxLifetime)
	}

	if ParseGlobalFlags(c).Output != output.FormatTable {
		return render(c, res)
	}
	if res.DryRun {
		for _, id := range res.Candidates {
			fmt.Fprintln(c.App.Writer, id)
		}
		fmt.Fprintf(c.App.Writer, "%d records older than %s would be deleted\n", len(res.Candidates), res.MaxLifetime)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "deleted %d records older than %s\n", res.Deleted, res.MaxLifetime)
	return nil
}
