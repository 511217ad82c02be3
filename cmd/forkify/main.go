package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"forkify"
)

func main() {
	ctx := context.Background()
	c := &cli{}
	err := c.rootCmd().ExecuteContext(ctx)
	if c.app != nil {
		if cerr := c.app.close(ctx); cerr != nil {
			slog.Error("SHUTDOWN: Failed to release resources", "error", cerr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

type cli struct {
	opts appOptions
	app  *app
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "forkify",
		Short:        "Search recipes, scale servings and manage bookmarks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if c.opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			a, err := newApp(cmd.Context(), c.opts)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.opts.debug {
				forkify.Dump(cmd.ErrOrStderr(), c.app.state.State())
			}
		},
	}

	root.PersistentFlags().BoolVar(&c.opts.journal, "journal", false, "write a JSON line per state operation to stderr")
	root.PersistentFlags().StringVar(&c.opts.journalFile, "journal-file", "", "write the session's operations as one JSON document to this file")
	root.PersistentFlags().BoolVar(&c.opts.otel, "otel", false, "export traces and metrics over OTLP")
	root.PersistentFlags().BoolVar(&c.opts.debug, "debug", false, "debug logging and a state dump after the command")

	root.AddCommand(
		c.searchCmd(),
		c.recipeCmd(),
		c.bookmarksCmd(),
		c.uploadCmd(),
		c.toolCmd(),
	)
	return root
}

func (c *cli) searchCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search recipes and print one page of results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.state
			if err := state.LoadSearchResults(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			results := state.SearchResultsPage(page)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"query":   state.State().Search.Query,
				"page":    page,
				"pages":   state.PageCount(),
				"results": results,
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "results page to show")
	return cmd
}

func (c *cli) recipeCmd() *cobra.Command {
	var (
		servings float64
		bookmark bool
	)
	cmd := &cobra.Command{
		Use:   "recipe <id>",
		Short: "Load a recipe, optionally rescale it and bookmark it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.state
			if err := state.LoadRecipe(cmd.Context(), args[0]); err != nil {
				return err
			}
			if servings > 0 {
				if err := state.UpdateServings(servings); err != nil {
					return err
				}
			}
			if recipe := state.State().Recipe; bookmark && !recipe.Bookmarked {
				if err := state.AddBookmark(cmd.Context(), *recipe); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), state.State().Recipe)
		},
	}
	cmd.Flags().Float64Var(&servings, "servings", 0, "rescale ingredients to this many servings")
	cmd.Flags().BoolVar(&bookmark, "bookmark", false, "bookmark the recipe")
	return cmd
}

func (c *cli) bookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Manage saved bookmarks",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print saved bookmarks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printJSON(cmd.OutOrStdout(), c.app.state.State().Bookmarks)
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Remove a bookmark",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.app.state.DeleteBookmark(cmd.Context(), args[0]); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), c.app.state.State().Bookmarks)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the persisted bookmarks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.state.ClearBookmarks(cmd.Context())
			},
		},
	)
	return cmd
}

func (c *cli) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <form.json>",
		Short: "Upload a recipe from a JSON object of form fields",
		Long: `Upload a recipe. The file holds a flat JSON object of strings:
title, sourceUrl, image, publisher, cookingTime, servings and
ingredient1..ingredientN as "quantity,unit,description".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var form map[string]string
			if err := json.Unmarshal(b, &form); err != nil {
				return fmt.Errorf("parse form %s: %w", args[0], err)
			}
			if err := c.app.state.UploadRecipe(cmd.Context(), form); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.app.state.State().Recipe)
		},
	}
}

func (c *cli) toolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tool <name> [json-input]",
		Short: "Run a registered tool",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := c.app.registry.GetTool(args[0])
			if err != nil {
				return err
			}
			input := map[string]any{}
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
					return fmt.Errorf("parse tool input: %w", err)
				}
			}
			out, err := tool.Run(cmd.Context(), input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
