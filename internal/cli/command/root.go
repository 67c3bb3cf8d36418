package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/foteam/sessionstore/internal/cli/output"
	"github.com/foteam/sessionstore/internal/infra/buildinfo"
	"github.com/foteam/sessionstore/internal/infra/confloader"
	"github.com/foteam/sessionstore/internal/server/config"
	"github.com/foteam/sessionstore/internal/storage/filestore"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "foteam-sessctl",
		Usage:   "Inspect and maintain the foteam session directory",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ListCommand(),
			InspectCommand(),
			DestroyCommand(),
			ValidateCommand(),
			GCCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Session directory (overrides session.dir from --config)",
			EnvVars: []string{"FOTEAM_SESSION_DIR"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "foteam-server configuration file",
			EnvVars: []string{"FOTEAM_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns, full ids)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log store activity to stderr",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Dir     string
	Config  string
	Output  output.Format
	Wide    bool
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Dir:     c.String("dir"),
		Config:  c.String("config"),
		Output:  format,
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// loadConfig resolves the server configuration the commands act on.
func loadConfig(flags *GlobalFlags) (*config.ServerConfig, error) {
	cfg := config.Default()
	var opts []confloader.Option
	if flags.Config != "" {
		opts = append(opts, confloader.WithConfigFile(flags.Config))
	}
	if flags.Dir != "" {
		opts = append(opts, confloader.WithOverrides(map[string]any{"session.dir": flags.Dir}))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured directory. Unlike the server, the tool
// refuses to create a missing directory.
func openStore(c *cli.Context) (*filestore.Store, *config.ServerConfig, error) {
	flags := ParseGlobalFlags(c)
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(cfg.Session.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("session directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("session directory: %s is not a directory", cfg.Session.Dir)
	}

	log := logger.Discard()
	if flags.Verbose {
		log, err = logger.New(logger.Config{Level: "debug", Format: "text", Output: c.App.ErrWriter})
		if err != nil {
			return nil, nil, err
		}
	}

	store, err := filestore.Open(filestore.Config{
		Dir:    cfg.Session.Dir,
		TTL:    cfg.Session.TTL,
		Logger: log,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// render writes data in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// requireID returns the single positional SESSION_ID argument.
func requireID(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.New("exactly one SESSION_ID argument required")
	}
	return c.Args().First(), nil
}

// confirm asks a yes/no question on the app's reader.
func confirm(c *cli.Context, prompt string) bool {
	fmt.Fprintf(c.App.ErrWriter, "%s [y/N]: ", prompt)
	var in io.Reader = os.Stdin
	if c.App.Reader != nil {
		in = c.App.Reader
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// shortID truncates ids for table output.
func shortID(id string, wide bool) string {
	if wide || len(id) <= 16 {
		return id
	}
	return id[:16] + "..."
}
