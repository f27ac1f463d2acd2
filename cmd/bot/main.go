// Package main provides the guardia binary entry point: the project
// lifecycle daemon plus admin maintenance commands.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/config"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/gateway"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/notify"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/platform"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/sqlite"
	"github.com/benbjohnson/clock"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

const (
	Version = "2.0.0"
	appName = "guardia"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Community project lifecycle bot",
		Long: `Guardia manages per-project channel/role groups on a chat server:
it provisions project groups, tracks members, progress and tasks, and runs
the timed termination confirmation flow.

The chat gateway sidecar and the daemon talk over NATS; project state
lives in SQLite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})
	cmd.AddCommand(projectsCmd())
	cmd.AddCommand(auditCmd())

	return cmd
}

// app bundles the wired services shared by the daemon and admin commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sqlite.DB
	conn     *nats.Conn
	projects *project.Service
	audits   *audit.Service
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	conn, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to NATS at %s: %w", cfg.NATS.URL, err)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)

	auditSvc := audit.NewService(auditRepo, logger)
	platformClient := platform.New(conn, cfg.NATS.SubjectPrefix)
	notifier := notify.New(conn, cfg.NATS.SubjectPrefix)

	gate := project.NewTerminationGate(projectRepo, platformClient, notifier, auditSvc, clock.New(), project.GateOptions{
		Window:            cfg.Projects.ConfirmWindow(),
		DeleteOnTerminate: cfg.Projects.DeleteOnTerminate,
	}, logger)
	projectSvc := project.NewService(projectRepo, platformClient, notifier, auditSvc, gate, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		conn:     conn,
		projects: projectSvc,
		audits:   auditSvc,
	}, nil
}

func (a *app) Close() {
	a.conn.Drain()
	a.db.Close()
}

func runDaemon() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.Projects.Enabled {
		a.logger.Warn("projects module disabled by configuration")
	}

	dispatcher := gateway.NewDispatcher(a.projects, a.logger)
	sub, err := dispatcher.Subscribe(a.conn, a.cfg.NATS.SubjectPrefix)
	if err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	defer sub.Unsubscribe()

	a.logger.Info("daemon started",
		"db", a.cfg.DB.Path,
		"nats", a.cfg.NATS.URL,
		"confirm_window", a.cfg.Projects.ConfirmWindow())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.logger.Info("shutting down")
	return nil
}

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project administration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			projects, err := a.projects.ListActive(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("no active projects")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("group %d  leader=%s  members=%d  progress=%d%%  pending=%t\n",
					p.GroupNumber, p.LeaderID, len(p.MemberIDs), p.Progress, p.ConfirmationPending)
			}
			return nil
		},
	})

	var adminID string

	deleteCmd := &cobra.Command{
		Use:   "delete <group-number>",
		Short: "Force-delete a project without a confirmation window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupNumber, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid group number %q", args[0])
			}
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.projects.ForceDelete(cmd.Context(), adminID, groupNumber)
		},
	}
	deleteCmd.Flags().StringVar(&adminID, "admin", "cli", "Acting admin identity for the audit log")
	cmd.AddCommand(deleteCmd)

	clearCmd := &cobra.Command{
		Use:   "clear-lock <group-number>",
		Short: "Clear a stuck termination confirmation lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupNumber, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid group number %q", args[0])
			}
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.projects.ClearLock(cmd.Context(), adminID, groupNumber)
		},
	}
	clearCmd.Flags().StringVar(&adminID, "admin", "cli", "Acting admin identity for the audit log")
	cmd.AddCommand(clearCmd)

	return cmd
}

func auditCmd() *cobra.Command {
	var (
		groupNumber int
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.audits.List(cmd.Context(), audit.ListOptions{
				GroupNumber: groupNumber,
				Limit:       limit,
			})
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s  group=%d  actor=%s  %s  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.GroupNumber, e.ActorID, e.Action, e.Details)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&groupNumber, "group", 0, "Filter by group number")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")

	return cmd
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
