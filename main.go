package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crab-xieyujin/foshuo/internal/config"
	"github.com/crab-xieyujin/foshuo/internal/library"
	"github.com/crab-xieyujin/foshuo/internal/logging"
	"github.com/crab-xieyujin/foshuo/internal/lrc"
	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/reader"
	"github.com/crab-xieyujin/foshuo/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	errNoInput = errors.New("no input provided. Provide a file, a library --id or pipe text to stdin")
	errNoText  = errors.New("no text to read")
)

// app carries what every command needs once flags and config are read.
type app struct {
	configPath string
	verbose    bool

	cfg   config.Config
	log   *zap.Logger
	state *state.Store
	lib   *library.Store

	stdin  io.Reader
	stdout io.Writer
}

type readOptions struct {
	id    string
	size  string
	mode  string
	lrc   string
	fresh bool
}

func newApp() *app {
	return &app{
		log:    logging.Nop(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

func newRootCmd(a *app) *cobra.Command {
	var opts readOptions

	root := &cobra.Command{
		Use:   "foshuo [file]",
		Short: "Foshuo - paginated scripture reader",
		Long: `Foshuo lays out scripture text as pages of a book and lets you flip
through them in the terminal (or in a window when built with -tags gui).

Supported inputs: ` + strings.Join(reader.SupportedFormats(), ", ") + `, or text on stdin.

Controls:
  ←/→      Flip page
  +/-      Bigger/smaller font (re-paginates)
  m        Switch flip/scroll mode
  a        Toggle auto-play
  t        Next chapter
  q        Quit`,
		Example: `  foshuo heart-sutra.txt        Read a file
  foshuo --size large sutra.md  Read with large type
  cat sutra.txt | foshuo        Read from stdin
  foshuo read --id heart        Read a library scripture`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRead(cmd.Context(), opts, args)
		},
	}

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("foshuo {{.Version}} (commit: %s, built: %s)\n", commit, date))

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	addReadFlags(root, &opts)

	root.AddCommand(
		newReadCmd(a),
		newPaginateCmd(a),
		newLibraryCmd(a),
		newReleaseCmd(a),
		newSettingsCmd(a),
		newMeritCmd(a),
		newVersionCmd(a),
	)
	return root
}

func addReadFlags(cmd *cobra.Command, opts *readOptions) {
	cmd.Flags().StringVar(&opts.id, "id", "", "read a scripture from the library")
	cmd.Flags().StringVarP(&opts.size, "size", "s", "", "font size for this session: small, medium, large or huge")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "reading mode for this session: flip or scroll")
	cmd.Flags().StringVar(&opts.lrc, "lrc", "", "LRC caption file to show while reading")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "ignore saved reading position")
}

func newReadCmd(a *app) *cobra.Command {
	var opts readOptions
	cmd := &cobra.Command{
		Use:   "read [file]",
		Short: "Open a document in the reader",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRead(cmd.Context(), opts, args)
		},
	}
	addReadFlags(cmd, &opts)
	return cmd
}

// setup loads config, then opens the logger and the state store.
func (a *app) setup(ctx context.Context) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.StateDir, cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}
	a.log = log

	store, err := state.Open(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	a.state = store
	if store.Fresh() {
		err := store.UpdateSettings(func(s *state.Settings) error {
			s.Size = cfg.Reader.Size
			s.Mode = cfg.Reader.Mode
			return nil
		})
		if err != nil {
			return err
		}
	}
	a.log.Debug("configured",
		zap.String("config", path),
		zap.String("state", store.Path()),
		zap.String("library", cfg.LibraryPath))
	return nil
}

// library opens the scripture library on first use.
func (a *app) library(ctx context.Context) (*library.Store, error) {
	if a.lib != nil {
		return a.lib, nil
	}
	lib, err := library.Open(ctx, a.cfg.LibraryPath)
	if err != nil {
		return nil, err
	}
	a.lib = lib
	return lib, nil
}

func (a *app) close() {
	if a.lib != nil {
		a.lib.Close()
		a.lib = nil
	}
	a.log.Sync()
}

// loadDocument reads from the library, a file or stdin, in that order.
func (a *app) loadDocument(ctx context.Context, id string, args []string) (reader.Document, error) {
	switch {
	case id != "":
		lib, err := a.library(ctx)
		if err != nil {
			return reader.Document{}, err
		}
		sc, err := lib.Get(ctx, id)
		if err != nil {
			return reader.Document{}, err
		}
		return reader.NewDocument(sc.Title, sc.Content), nil

	case len(args) > 0:
		doc, err := reader.LoadFile(args[0])
		if err != nil {
			return reader.Document{}, fmt.Errorf("failed to read file '%s': %w", args[0], err)
		}
		return doc, nil
	}

	if f, ok := a.stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return reader.Document{}, errNoInput
		}
	}
	doc, err := reader.LoadReader("stdin", a.stdin)
	if err != nil {
		return reader.Document{}, fmt.Errorf("error reading stdin: %w", err)
	}
	return doc, nil
}

func (a *app) runRead(ctx context.Context, opts readOptions, args []string) error {
	doc, err := a.loadDocument(ctx, opts.id, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return errNoText
	}

	settings := a.state.Settings()
	if opts.size != "" {
		if settings.Size, err = pagination.ParseSize(opts.size); err != nil {
			return err
		}
	}
	if opts.mode != "" {
		if settings.Mode, err = reader.ParseMode(opts.mode); err != nil {
			return err
		}
	}

	s := newSession(doc, settings, a.cfg.Paginator(), a.state, a.log)
	defer s.close()
	if !opts.fresh {
		s.restore()
	}
	if opts.lrc != "" {
		lines, err := lrc.ParseFile(opts.lrc)
		if err != nil {
			return fmt.Errorf("failed to read captions: %w", err)
		}
		s.captions = lines
	}

	a.log.Info("opened document",
		zap.String("title", doc.Title),
		zap.Int("chars", doc.Len()),
		zap.Int("chapters", len(doc.Chapters)),
		zap.Stringer("size", s.Size()),
		zap.Int("pages", s.PageCount()),
		zap.Int("leaf", s.Current()))

	if err := runReader(s); err != nil {
		return err
	}
	return s.save()
}

func main() {
	a := newApp()
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
