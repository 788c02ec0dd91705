package main

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/state"
)

type pageOut struct {
	Page  int    `json:"page"`
	Chars int    `json:"chars"`
	Text  string `json:"text"`
}

func newPaginateCmd(a *app) *cobra.Command {
	var (
		id     string
		size   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "paginate [file]",
		Short: "Print a document's pages for a font size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sz := a.state.Settings().Size
			if size != "" {
				var err error
				if sz, err = pagination.ParseSize(size); err != nil {
					return err
				}
			}
			doc, err := a.loadDocument(cmd.Context(), id, args)
			if err != nil {
				return err
			}

			profile := pagination.ProfileFor(sz)
			pages := a.cfg.Paginator().Paginate(doc.Text, profile)
			a.log.Debug("paginated",
				zap.String("title", doc.Title),
				zap.Stringer("size", sz),
				zap.Int("capacity", profile.Capacity()),
				zap.Int("pages", len(pages)))

			if asJSON {
				out := make([]pageOut, len(pages))
				for i, p := range pages {
					out[i] = pageOut{Page: i + 1, Chars: utf8.RuneCountInString(p), Text: p}
				}
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for i, p := range pages {
				fmt.Fprintf(a.stdout, "--- page %d/%d (%d chars) ---\n%s\n", i+1, len(pages), utf8.RuneCountInString(p), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "paginate a scripture from the library")
	cmd.Flags().StringVarP(&size, "size", "s", "", "font size: small, medium, large or huge (default from settings)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print pages as JSON")
	return cmd
}

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change reader settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.state.Settings()
			for _, key := range state.SettingKeys {
				v, err := s.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%-16s %s\n", key, v)
			}
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.state.Set(args[0], args[1]); err != nil {
				return err
			}
			a.log.Info("setting changed", zap.String("key", args[0]), zap.String("value", args[1]))
			fmt.Fprintf(a.stdout, "%s = %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

func newMeritCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merit",
		Short: "Show the merit count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "功德 %d\n", a.state.Merit())
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "tap",
		Short: "Strike the wooden fish once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merit, _, err := a.state.Tap(time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "功德 +1 (%d)\n", merit)
			return nil
		},
	})
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "foshuo %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
