package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/editor"
	"github.com/goliatone/go-adlform/pkg/renderers/tui"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// modeFlag resolves --mode, falling back to the configured default.
func (a *app) modeFlag(cmd *cobra.Command) (schema.Mode, error) {
	if cmd.Flags().Changed("mode") {
		raw, _ := cmd.Flags().GetString("mode")
		return schema.ParseMode(raw)
	}
	return a.cfg.Mode()
}

func (a *app) renderCmd() *cobra.Command {
	var docPath, at string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the form descriptors for a document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mode, err := a.modeFlag(cmd)
			if err != nil {
				return err
			}
			s, err := a.session(ctx, mode)
			if err != nil {
				return err
			}
			if docPath == "" {
				err = s.CreateNew()
			} else {
				var data []byte
				if data, err = os.ReadFile(docPath); err == nil {
					err = s.LoadFromRecord(string(data), "")
				}
			}
			if err != nil {
				return err
			}

			path, err := document.ParsePath(at)
			if err != nil {
				return err
			}
			descriptors, err := s.RenderAt(path)
			if err != nil {
				return err
			}
			payload, err := json.MarshalIndent(descriptors, "", "  ")
			if err != nil {
				return fmt.Errorf("encode descriptors: %w", err)
			}
			return a.writeOutput("", string(payload)+"\n")
		},
	}
	cmd.Flags().String("mode", "", "display mode: simple or advanced")
	cmd.Flags().StringVar(&docPath, "doc", "", "document to render (defaults to a new document)")
	cmd.Flags().StringVar(&at, "at", "", "render only the subtree at this path")
	return cmd
}

func (a *app) newCmd() *cobra.Command {
	var (
		output string
		author editor.Author
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write a document built from the schema defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, _ := a.cfg.Mode()
			s, err := a.session(cmd.Context(), mode)
			if err != nil {
				return err
			}
			if err := s.CreateNew(); err != nil {
				return err
			}
			if err := s.ApplyAuthor(a.author()); err != nil {
				return err
			}
			if err := s.ApplyAuthor(author); err != nil {
				return err
			}
			text, err := s.RegenerateYAML()
			if err != nil {
				return err
			}
			return a.writeOutput(output, text)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&author.Name, "author-name", "", "metadata.author.name")
	flags.StringVar(&author.Email, "author-email", "", "metadata.author.email")
	flags.StringVar(&author.Organization, "author-organization", "", "metadata.author.organization")
	flags.StringVar(&author.Role, "author-role", "", "metadata.author.role")
	flags.StringVar(&author.Contact, "author-contact", "", "metadata.author.contact")
	return cmd
}

func (a *app) setCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "set <file.yaml> <path>=<value>...",
		Short: "Apply field edits to a document",
		Long: `Apply field edits to a document. Values are coerced to the type the schema
declares at each path: booleans accept true/false/yes/no, numbers are parsed,
and structured fields accept JSON.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			for _, arg := range args[1:] {
				rawPath, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("edit %q: expected <path>=<value>", arg)
				}
				path, err := document.ParsePath(rawPath)
				if err != nil {
					return err
				}
				if err := s.ApplyFieldEdit(path, value); err != nil {
					return fmt.Errorf("edit %s: %w", rawPath, err)
				}
			}
			text, err := s.RegenerateYAML()
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			return a.writeOutput(output, text)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (overwrites the input if empty, - for stdout)")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.yaml>",
		Short: "Check a document against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			issues := s.Validate()
			for _, issue := range issues {
				fmt.Fprintln(a.stdout, issue.String())
			}
			if len(issues) > 0 {
				return &exitError{code: 1, err: fmt.Errorf("%s: %d validation issue(s)", args[0], len(issues))}
			}
			fmt.Fprintf(a.stdout, "%s: valid, %d%% of required fields filled\n", args[0], s.Progress())
			return nil
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <file.yaml>",
		Short: "Edit a document interactively in the terminal",
		Long: `Edit a document interactively. A missing file starts from the schema
defaults. The file is only written when something changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode, err := a.modeFlag(cmd)
			if err != nil {
				return err
			}
			path := args[0]

			s, err := a.loadSession(ctx, path, "")
			created := errors.Is(err, os.ErrNotExist)
			if created {
				if s, err = a.session(ctx, mode); err == nil {
					if err = s.CreateNew(); err == nil {
						err = s.ApplyAuthor(a.author())
					}
				}
			}
			if err != nil {
				return err
			}

			options := []tui.Option{tui.WithMode(mode)}
			if a.driver != nil {
				options = append(options, tui.WithPromptDriver(a.driver))
			}
			if err := tui.New(options...).Edit(ctx, s); err != nil {
				return err
			}
			if !s.Modified() && !created {
				fmt.Fprintf(a.stdout, "%s: no changes\n", path)
				return nil
			}
			text, err := s.RegenerateYAML()
			if err != nil {
				return err
			}
			if err := a.writeOutput(path, text); err != nil {
				return err
			}
			for _, issue := range s.Validate() {
				a.logger.Warn("document incomplete", "issue", issue.String())
			}
			fmt.Fprintf(a.stdout, "%s: written, %d%% of required fields filled\n", path, s.Progress())
			return nil
		},
	}
	cmd.Flags().String("mode", "", "display mode: simple or advanced")
	return cmd
}
