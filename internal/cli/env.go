package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pablasso/specflow/internal/config"
	"github.com/pablasso/specflow/internal/log"
	"github.com/pablasso/specflow/internal/templates"
	"github.com/pablasso/specflow/internal/workspace"
	"github.com/spf13/cobra"
)

// env bundles what every command needs: the workspace, its configuration
// and a logger configured from both.
type env struct {
	ws     *workspace.Workspace
	cfg    *config.Config
	logger *log.Logger
}

// loadEnv locates the workspace from the current directory and loads its
// configuration. Log output goes to logOut.
func loadEnv(logOut io.Writer) (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	root := workspace.FindRoot(cwd)

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	return &env{
		ws:     workspace.New(root, cfg.SpecsDir),
		cfg:    cfg,
		logger: newLogger(cfg, logOut),
	}, nil
}

// loadInitializedEnv is loadEnv for commands that need an initialized workspace.
func loadInitializedEnv(logOut io.Writer) (*env, error) {
	e, err := loadEnv(logOut)
	if err != nil {
		return nil, err
	}
	if err := checkInitialized(e.ws); err != nil {
		return nil, err
	}
	return e, nil
}

// newLogger applies the --log-level and --log-format flags over the config.
func newLogger(cfg *config.Config, out io.Writer) *log.Logger {
	level, format := cfg.Log.Level, cfg.Log.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	return log.New(log.Config{
		Level:  log.ParseLevel(level),
		Format: log.ParseFormat(format),
		Output: out,
	})
}

func (e *env) templatesDir() string {
	return resolve(e.ws.Root(), e.cfg.TemplatesDir)
}

func (e *env) installer() *templates.Installer {
	return templates.NewInstaller(e.templatesDir())
}

func (e *env) renderer() *templates.Renderer {
	return templates.NewRenderer(e.templatesDir())
}

// stdout returns the command's output writer, or os.Stdout when the command
// is invoked directly.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stdin(cmd *cobra.Command) io.Reader {
	if cmd == nil {
		return os.Stdin
	}
	return cmd.InOrStdin()
}
