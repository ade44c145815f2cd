package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-adlform"
	"github.com/goliatone/go-adlform/internal/config"
	"github.com/goliatone/go-adlform/pkg/editor"
	"github.com/goliatone/go-adlform/pkg/form"
	"github.com/goliatone/go-adlform/pkg/record"
	"github.com/goliatone/go-adlform/pkg/renderers/tui"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// app is the state shared by every command: flags, the resolved config and
// the logger built from it.
type app struct {
	configPath string
	logLevel   string
	source     string
	component  string
	database   string
	owner      string

	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	driver tui.PromptDriver
}

func newRootCmd(stdout, stderr io.Writer, driver tui.PromptDriver) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, driver: driver}

	root := &cobra.Command{
		Use:   "adlform",
		Short: "Edit assistant definition documents through a schema-driven form",
		Long: `adlform builds form descriptors from an assistant definition schema and
keeps a YAML document in sync with the edits made through them.

The schema comes from --schema (a YAML/JSON schema file, an OpenAPI document,
or an http(s) URL) or the built-in assistant definition schema.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.logLevel, "log", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.source, "schema", "", "schema file, OpenAPI document or URL")
	flags.StringVar(&a.component, "component", "", "OpenAPI component schema name")
	flags.StringVar(&a.database, "db", "", "SQLite database path")
	flags.StringVar(&a.owner, "owner", "", "record owner")

	root.AddCommand(
		a.renderCmd(),
		a.newCmd(),
		a.setCmd(),
		a.validateCmd(),
		a.editCmd(),
		a.saveCmd(),
		a.listCmd(),
		a.exportCmd(),
		a.deleteCmd(),
	)
	return root
}

// setup loads the config file and lets explicitly set flags override it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("schema") {
		cfg.SchemaSource = a.source
	}
	if flags.Changed("component") {
		cfg.OpenAPIComponent = a.component
	}
	if flags.Changed("db") {
		cfg.DatabasePath = a.database
	}
	if flags.Changed("owner") {
		cfg.Owner = a.owner
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, _ := cfg.Level()
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// schema fetches the configured schema. A failing provider is logged and the
// built-in schema is used instead.
func (a *app) schema(ctx context.Context) *schema.Node {
	provider, err := adlform.NewProvider(a.cfg.SchemaSource, a.cfg.OpenAPIComponent,
		schema.WithHTTPFallback(a.cfg.HTTPTimeout))
	if err == nil {
		var node *schema.Node
		if node, err = provider.FetchSchema(ctx); err == nil {
			return node
		}
	}
	a.logger.Warn("schema unavailable, using built-in schema", "source", a.cfg.SchemaSource, "error", err)
	return schema.Fallback()
}

func (a *app) session(ctx context.Context, mode schema.Mode) (*editor.Session, error) {
	tools, _ := a.cfg.Tools()
	renderer := form.NewRenderer(
		form.WithLongTextThreshold(a.cfg.LongTextThreshold),
		form.WithToolsPath(tools),
	)
	return adlform.NewSession(a.schema(ctx),
		editor.WithLogger(a.logger),
		editor.WithRenderer(renderer),
		editor.WithMode(mode),
	)
}

// loadSession opens path as the session document, binding it to id.
func (a *app) loadSession(ctx context.Context, path, id string) (*editor.Session, error) {
	mode, _ := a.cfg.Mode()
	s, err := a.session(ctx, mode)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := s.LoadFromRecord(string(data), id); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (a *app) openStore(ctx context.Context) (*record.SQLiteStore, error) {
	store, err := record.OpenSQLite(ctx, a.cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("record store opened", "path", a.cfg.DatabasePath)
	return store, nil
}

func (a *app) author() editor.Author {
	author := a.cfg.Author
	return editor.Author{
		Name:         author.Name,
		Email:        author.Email,
		Organization: author.Organization,
		Role:         author.Role,
		Contact:      author.Contact,
	}
}

// writeOutput writes text to path, or to stdout when path is empty or "-".
func (a *app) writeOutput(path, text string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(a.stdout, text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
