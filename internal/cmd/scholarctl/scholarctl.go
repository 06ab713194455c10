// Package scholarctl implements the ScholarFlow maintenance CLI.
package scholarctl

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	cachemigrations "github.com/louisbranch/scholarflow/internal/platform/cache/sqlite/migrations"
	entrypoint "github.com/louisbranch/scholarflow/internal/platform/cmd"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/platform/storage/sqlitemigrate"
	authmigrations "github.com/louisbranch/scholarflow/internal/services/auth/storage/sqlite/migrations"
	"github.com/louisbranch/scholarflow/internal/services/scholar/orcid"
	"github.com/louisbranch/scholarflow/internal/services/scholar/orcidid"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	scholarsqlite "github.com/louisbranch/scholarflow/internal/services/scholar/storage/sqlite"
	scholarmigrations "github.com/louisbranch/scholarflow/internal/services/scholar/storage/sqlite/migrations"
	"github.com/louisbranch/scholarflow/internal/services/scholar/username"
)

// Config holds defaults the CLI reads from the server environment.
type Config struct {
	AuthDBPath    string `env:"SCHOLARFLOW_AUTH_DB_PATH" envDefault:"data/auth.db"`
	ProfileDBPath string `env:"SCHOLARFLOW_PROFILE_DB_PATH" envDefault:"data/scholar.db"`
	CacheDBPath   string `env:"SCHOLARFLOW_CACHE_DB_PATH" envDefault:"data/cache.db"`

	Logging logging.Config
	ORCID   orcid.Config
}

// WorksFetcher lists an ORCID iD's works.
type WorksFetcher interface {
	FetchWorks(ctx context.Context, orcidID string) ([]profile.Publication, error)
}

// Run parses the environment and executes the command tree.
func Run(ctx context.Context, args []string, out io.Writer) error {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return err
	}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceScholarCtl, entrypoint.RunOptions{Logging: cfg.Logging}, func(ctx context.Context) error {
		root := NewRootCommand(cfg, orcid.New(cfg.ORCID))
		root.SetArgs(args)
		root.SetOut(out)
		return root.ExecuteContext(ctx)
	})
}

// NewRootCommand builds the scholarctl command tree.
func NewRootCommand(cfg Config, works WorksFetcher) *cobra.Command {
	root := &cobra.Command{
		Use:           "scholarctl",
		Short:         "ScholarFlow maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCommand(cfg), newORCIDCommand(works), newUsernameCommand(cfg))
	return root
}

type database struct {
	name       string
	path       *string
	migrations fs.FS
}

func newMigrateCommand(cfg Config) *cobra.Command {
	var statusOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite migrations and report their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			databases := []database{
				{name: "auth", path: &cfg.AuthDBPath, migrations: authmigrations.FS},
				{name: "profiles", path: &cfg.ProfileDBPath, migrations: scholarmigrations.FS},
				{name: "cache", path: &cfg.CacheDBPath, migrations: cachemigrations.FS},
			}
			for _, db := range databases {
				if strings.TrimSpace(*db.path) == "" {
					continue
				}
				if err := migrateOne(cmd.Context(), cmd.OutOrStdout(), db, statusOnly); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.AuthDBPath, "auth-db", cfg.AuthDBPath, "Auth SQLite database path")
	cmd.Flags().StringVar(&cfg.ProfileDBPath, "profile-db", cfg.ProfileDBPath, "Profile SQLite database path")
	cmd.Flags().StringVar(&cfg.CacheDBPath, "cache-db", cfg.CacheDBPath, "Cache SQLite database path; empty skips it")
	cmd.Flags().BoolVar(&statusOnly, "status", false, "Report status without applying")
	return cmd
}

func migrateOne(ctx context.Context, out io.Writer, db database, statusOnly bool) error {
	var migrations fs.FS
	if !statusOnly {
		migrations = db.migrations
	}
	sqlDB, err := sqlitemigrate.Open(ctx, *db.path, migrations)
	if err != nil {
		return fmt.Errorf("%s: %w", db.name, err)
	}
	defer sqlDB.Close()

	status, err := sqlitemigrate.MigrationStatus(ctx, sqlDB, db.migrations, "")
	if err != nil {
		return fmt.Errorf("%s: %w", db.name, err)
	}
	fmt.Fprintf(out, "%s (%s)\n", db.name, *db.path)
	for _, m := range status {
		state := "pending"
		if m.Applied {
			state = "applied " + m.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "  %-32s %s\n", m.Name, state)
	}
	return nil
}

func newORCIDCommand(works WorksFetcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orcid",
		Short: "Inspect ORCID records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "works <orcid-id>",
		Short: "List the public works of an ORCID iD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := validORCID(args[0])
			if err != nil {
				return err
			}
			publications, err := works.FetchWorks(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range publications {
				year := "----"
				if p.Year > 0 {
					year = fmt.Sprint(p.Year)
				}
				fmt.Fprintf(out, "%s  %-18s %s\n", year, p.Type, p.Title)
				if p.DOI != "" {
					fmt.Fprintf(out, "      doi:%s\n", p.DOI)
				}
			}
			fmt.Fprintf(out, "%d works\n", len(publications))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "format <id>",
		Short: "Normalize an ORCID iD to hyphenated form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := validORCID(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})
	return cmd
}

func validORCID(raw string) (string, error) {
	id := orcidid.Format(strings.ToUpper(strings.TrimSpace(raw)))
	if !orcidid.IsValid(id) {
		return "", fmt.Errorf("invalid ORCID iD %q", raw)
	}
	return id, nil
}

func newUsernameCommand(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "username",
		Short: "Username utilities",
	}
	var check bool
	suggest := &cobra.Command{
		Use:   "suggest <first> <last>",
		Short: "Suggest the username a new profile would receive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := username.Base(args[0], args[1])
			if !check {
				fmt.Fprintln(cmd.OutOrStdout(), base)
				return nil
			}
			store, err := scholarsqlite.Open(cmd.Context(), cfg.ProfileDBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			name, err := username.Allocate(cmd.Context(), base, store.UsernameExists)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	suggest.Flags().BoolVar(&check, "check", false, "Skip usernames already taken in the profile database")
	suggest.Flags().StringVar(&cfg.ProfileDBPath, "profile-db", cfg.ProfileDBPath, "Profile SQLite database path")
	cmd.AddCommand(suggest)
	return cmd
}
