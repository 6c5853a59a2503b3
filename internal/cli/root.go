// Package cli implements linkctl, the command-line client of a linkshelf server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkshelf/internal/config"
	"github.com/MrSnakeDoc/linkshelf/internal/localstore"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/remote"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
)

// Command annotations controlling session setup.
const (
	annotationNoSession = "linkshelf/no-session" // command does not touch the shelf
	annotationNoRefresh = "linkshelf/no-refresh" // command refreshes on its own
)

type globalFlags struct {
	offline bool
	json    bool
	yes     bool
}

// session is the state shared by every command of one invocation.
type session struct {
	flags globalFlags
	out   io.Writer
	errw  io.Writer
	in    io.Reader

	cfg   *config.ClientConfig
	log   logger.Logger
	cache *localstore.Store
	shelf *shelf.Shelf
}

// Execute runs linkctl with os.Args.
func Execute() error {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, in io.Reader, out, errw io.Writer) error {
	s := &session{in: in, out: out, errw: errw}
	defer s.close()

	root := s.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errw)

	err := root.Execute()
	if err != nil {
		fmt.Fprintln(errw, s.styles().Error.Render("Error: "+err.Error()))
	}
	return err
}

func (s *session) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "linkctl",
		Short:         "Manage a linkshelf collection from the terminal",
		Long:          "linkctl keeps a local copy of your links, records every change in a bounded\nhistory and mirrors each change to a linkshelf server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoSession] != "" {
				return nil
			}
			if err := s.open(); err != nil {
				return err
			}
			if cmd.Annotations[annotationNoRefresh] == "" {
				s.refresh(cmd.Context())
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&s.flags.offline, "offline", false, "work on the local cache only")
	pf.BoolVar(&s.flags.json, "json", false, "print raw JSON")
	pf.BoolVarP(&s.flags.yes, "yes", "y", false, "do not ask for confirmation")

	root.AddCommand(
		s.listCmd(),
		s.addCmd(),
		s.editCmd(),
		s.rmCmd(),
		s.historyCmd(),
		s.restoreCmd(),
		s.importCmd(),
		s.themeCmd(),
		s.syncCmd(),
		s.versionCmd(),
	)
	return root
}

// open loads the configuration, the local cache and, unless offline, the remote client.
func (s *session) open() error {
	s.cfg = config.LoadClient()
	s.log = logger.New(s.cfg.LogLevel, s.cfg.PrettyLog).Named("linkctl")

	cache, err := localstore.Open(s.cfg.CacheFile, s.log)
	if err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}
	s.cache = cache

	var syncer shelf.Syncer
	if !s.flags.offline && s.cfg.ServerURL != "" {
		syncer = remote.New(remote.Options{
			BaseURL: s.cfg.ServerURL,
			Timeout: s.cfg.RemoteTimeout,
		}, s.log)
	}

	s.shelf = shelf.New(shelf.Params{
		Cache:        cache,
		Syncer:       syncer,
		Confirmer:    s.confirmer(),
		HistoryLimit: s.cfg.HistoryLimit,
		Logger:       s.log,
	})
	return nil
}

// refresh pulls the remote state before the command runs. Failures leave the cache in charge.
func (s *session) refresh(parent context.Context) remote.Result {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, s.cfg.RefreshTimeout)
	defer cancel()
	return s.shelf.Refresh(ctx)
}

// close drains pending pushes and releases the cache.
func (s *session) close() {
	if s.shelf != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.DrainTimeout)
		if err := s.shelf.Close(ctx); err != nil {
			s.log.Warn("some changes were not sent to the server", logger.Error(err))
		}
		cancel()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.log.Debug("failed to close local cache", logger.Error(err))
		}
	}
	if s.log != nil {
		_ = s.log.Sync()
	}
}
