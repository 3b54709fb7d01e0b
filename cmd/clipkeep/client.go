package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"go.klb.dev/clipkeep/internal/control"
)

func newListCmd() *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded clipboard history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, c *control.Client) error {
				items, err := c.List(ctx, limit)
				if err != nil {
					return fmt.Errorf("list: %w", err)
				}
				if jsonOut {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(items)
				}
				printSummaries(cmd.OutOrStdout(), items, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of items (0 = all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func printSummaries(out io.Writer, items []control.Summary, now time.Time) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPIN\tAGE\tAPP\tTITLE")
	for _, it := range items {
		pin := it.Pin
		if pin == "" {
			pin = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(it.ID), pin, age(now.Sub(it.CreatedAt)), it.Application, oneLine(it.Title, 60))
	}
	_ = tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}

// resolveID expands a short id prefix from "list" to the full id.
func resolveID(ctx context.Context, c *control.Client, prefix string) (string, error) {
	items, err := c.List(ctx, 0)
	if err != nil {
		return "", fmt.Errorf("list: %w", err)
	}
	var match string
	for _, it := range items {
		if it.ID == prefix {
			return it.ID, nil
		}
		if strings.HasPrefix(it.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = it.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no history item matches %q", prefix)
	}
	return match, nil
}

func newCopyCmd() *cobra.Command {
	var (
		pin                  string
		strip, record, paste bool
		stdin                bool
	)
	cmd := &cobra.Command{
		Use:   "copy [id]",
		Short: "Put a history item (or stdin) back on the clipboard",
		Long: `Copies a recorded item back to the clipboard. Select it by id (a prefix
from "clipkeep list" is enough) or by --pin.

With --stdin the input is copied as plain text instead, like pbcopy, and
recorded as a new history item.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				return withClient(func(ctx context.Context, c *control.Client) error {
					return c.CopyText(ctx, string(data))
				})
			}
			if len(args) == 0 && pin == "" {
				return fmt.Errorf("an id or --pin is required")
			}
			return withClient(func(ctx context.Context, c *control.Client) error {
				opts := control.CopyOptions{Pin: pin, Record: record, Paste: paste}
				if len(args) == 1 {
					id, err := resolveID(ctx, c, args[0])
					if err != nil {
						return err
					}
					opts.ID = id
				}
				if cmd.Flags().Changed("strip-formatting") {
					opts.StripFormatting = &strip
				}
				return c.Copy(ctx, opts)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&pin, "pin", "", "select the item pinned to this key")
	f.BoolVar(&strip, "strip-formatting", false, "copy plain text only (default from the daemon config)")
	f.BoolVar(&record, "record", false, "record the copy as a new history item")
	f.BoolVar(&paste, "paste", false, "paste into the focused application after copying")
	f.BoolVar(&stdin, "stdin", false, "copy stdin as plain text")
	return cmd
}

func newPasteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paste",
		Short: "Press the paste shortcut in the focused application",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, c *control.Client) error {
				return c.Paste(ctx)
			})
		},
	}
}

func newPinCmd() *cobra.Command {
	var unpin bool
	cmd := &cobra.Command{
		Use:   "pin <id> [key]",
		Short: "Pin a history item to a single-character key",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			key := ""
			switch {
			case unpin:
			case len(args) == 2:
				key = args[1]
			default:
				return fmt.Errorf("a pin key is required (or --unpin)")
			}
			return withClient(func(ctx context.Context, c *control.Client) error {
				id, err := resolveID(ctx, c, args[0])
				if err != nil {
					return err
				}
				return c.Pin(ctx, id, key)
			})
		},
	}
	cmd.Flags().BoolVar(&unpin, "unpin", false, "remove the item's pin")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a history item",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *control.Client) error {
				id, err := resolveID(ctx, c, args[0])
				if err != nil {
					return err
				}
				return c.Delete(ctx, id)
			})
		},
	}
}

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Stop recording clipboard changes until resumed",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return setPaused(cmd, true) },
	}
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume recording clipboard changes",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return setPaused(cmd, false) },
	}
}

func setPaused(cmd *cobra.Command, paused bool) error {
	return withClient(func(ctx context.Context, c *control.Client) error {
		now, err := c.Pause(ctx, paused)
		if err != nil {
			return err
		}
		state := "recording"
		if now {
			state = "paused"
		}
		fmt.Fprintln(cmd.OutOrStdout(), state)
		return nil
	})
}

func newShowCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Write one representation of a history item to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *control.Client) error {
				id, err := resolveID(ctx, c, args[0])
				if err != nil {
					return err
				}
				data, _, err := c.Content(ctx, id, typ)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "clipboard type to show (default: the first stored)")
	return cmd
}
