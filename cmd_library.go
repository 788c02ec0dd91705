package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crab-xieyujin/foshuo/internal/library"
	"github.com/crab-xieyujin/foshuo/internal/reader"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

type scriptureFlags struct {
	id          string
	title       string
	author      string
	description string
	audio       string
	cover       string
}

func (f *scriptureFlags) register(cmd *cobra.Command, withID bool) {
	if withID {
		cmd.Flags().StringVar(&f.id, "id", "", "scripture id (generated when empty)")
	}
	cmd.Flags().StringVar(&f.title, "title", "", "title (defaults to the document title)")
	cmd.Flags().StringVar(&f.author, "author", "", "author or translator")
	cmd.Flags().StringVar(&f.description, "description", "", "short description (defaults to the opening text)")
	cmd.Flags().StringVar(&f.audio, "audio", "", "chanting audio URL")
	cmd.Flags().StringVar(&f.cover, "cover", "", "cover image URL")
}

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the scripture library",
	}

	var add scriptureFlags
	addCmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Add a scripture from a text, Markdown or EPUB file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := reader.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file '%s': %w", args[0], err)
			}
			title := add.title
			if title == "" {
				title = doc.Title
			}
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			sc, err := lib.Add(ctx, library.Scripture{
				ID:          add.id,
				Title:       title,
				Author:      add.author,
				Description: add.description,
				Content:     doc.Text,
				AudioURL:    add.audio,
				CoverImage:  add.cover,
			})
			if err != nil {
				return err
			}
			a.log.Info("scripture added", zap.String("id", sc.ID), zap.String("title", sc.Title))
			fmt.Fprintf(a.stdout, "Added %s (%s)\n", sc.Title, sc.ID)
			return nil
		},
	}
	add.register(addCmd, true)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List scriptures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			all, err := lib.List(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(a.stdout, "The library is empty.")
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return lipgloss.NewStyle().Padding(0, 1)
				}).
				Headers("ID", "TITLE", "AUTHOR", "CHARS", "DESCRIPTION")
			for _, sc := range all {
				t.Row(sc.ID, sc.Title, sc.Author, strconv.Itoa(utf8.RuneCountInString(sc.Content)), sc.Description)
			}
			fmt.Fprintln(a.stdout, t.String())
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a scripture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			sc, err := lib.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, headerStyle.Render(sc.Title))
			if sc.Author != "" {
				fmt.Fprintf(a.stdout, "Author:  %s\n", sc.Author)
			}
			if sc.AudioURL != "" {
				fmt.Fprintf(a.stdout, "Audio:   %s\n", sc.AudioURL)
			}
			fmt.Fprintf(a.stdout, "Updated: %s\n\n", sc.UpdatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintln(a.stdout, sc.Content)
			return nil
		},
	}

	var upd scriptureFlags
	updateCmd := &cobra.Command{
		Use:   "update ID [FILE]",
		Short: "Change a scripture's fields or replace its text",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			sc, err := lib.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				doc, err := reader.LoadFile(args[1])
				if err != nil {
					return fmt.Errorf("failed to read file '%s': %w", args[1], err)
				}
				sc.Content = doc.Text
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				sc.Title = upd.title
			}
			if flags.Changed("author") {
				sc.Author = upd.author
			}
			if flags.Changed("description") {
				sc.Description = upd.description
			}
			if flags.Changed("audio") {
				sc.AudioURL = upd.audio
			}
			if flags.Changed("cover") {
				sc.CoverImage = upd.cover
			}
			if sc, err = lib.Update(ctx, sc); err != nil {
				return err
			}
			a.log.Info("scripture updated", zap.String("id", sc.ID))
			fmt.Fprintf(a.stdout, "Updated %s (%s)\n", sc.Title, sc.ID)
			return nil
		},
	}
	upd.register(updateCmd, false)

	removeCmd := &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete a scripture",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			if err := lib.Remove(ctx, args[0]); err != nil {
				return err
			}
			a.log.Info("scripture removed", zap.String("id", args[0]))
			fmt.Fprintf(a.stdout, "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, removeCmd)
	return cmd
}

func newReleaseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Publish and query app releases",
	}

	var (
		rel       library.Release
		installer string
	)
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Record a new release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := rel
			if installer != "" {
				dst, digest, err := library.StoreInstaller(installer, filepath.Join(a.cfg.StateDir, "releases"))
				if err != nil {
					return fmt.Errorf("failed to store installer: %w", err)
				}
				r.Digest = digest
				if r.DownloadURL == "" {
					r.DownloadURL = dst
				}
			}
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			if r, err = lib.Publish(ctx, r); err != nil {
				return err
			}
			a.log.Info("release published",
				zap.String("version", r.Version),
				zap.Int("build", r.Build),
				zap.String("digest", r.Digest))
			fmt.Fprintf(a.stdout, "Published %s (build %d)\n", r.Version, r.Build)
			return nil
		},
	}
	publishCmd.Flags().StringVar(&rel.Version, "version", "", "version name, e.g. 1.2.0")
	publishCmd.Flags().IntVar(&rel.Build, "build", 0, "build number, must grow with every release")
	publishCmd.Flags().StringVar(&rel.DownloadURL, "url", "", "download URL (defaults to the stored installer path)")
	publishCmd.Flags().StringVar(&rel.Notes, "notes", "", "release notes")
	publishCmd.Flags().StringVar(&installer, "installer", "", "installer file to store and fingerprint")

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the newest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			r, err := lib.Latest(ctx)
			if err != nil {
				return err
			}
			printRelease(a, r)
			return nil
		},
	}

	var current int
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a build is out of date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lib, err := a.library(ctx)
			if err != nil {
				return err
			}
			r, ok, err := lib.CheckUpdate(ctx, current)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.stdout, "Build %d is up to date.\n", current)
				return nil
			}
			fmt.Fprintln(a.stdout, "Update available:")
			printRelease(a, r)
			return nil
		},
	}
	checkCmd.Flags().IntVar(&current, "build", 0, "installed build number")

	cmd.AddCommand(publishCmd, latestCmd, checkCmd)
	return cmd
}

func printRelease(a *app, r library.Release) {
	fmt.Fprintf(a.stdout, "Version:   %s (build %d)\n", r.Version, r.Build)
	fmt.Fprintf(a.stdout, "Download:  %s\n", r.DownloadURL)
	if r.Digest != "" {
		fmt.Fprintf(a.stdout, "BLAKE3:    %s\n", r.Digest)
	}
	fmt.Fprintf(a.stdout, "Published: %s\n", r.PublishedAt.Local().Format("2006-01-02 15:04"))
	if r.Notes != "" {
		fmt.Fprintf(a.stdout, "\n%s\n", r.Notes)
	}
}
