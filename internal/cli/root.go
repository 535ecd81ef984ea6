// Package cli implements the gqlvariants command line.
package cli

import (
	"fmt"
	"os"

	"github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/llehouerou/go-graphql-variants/schema"
)

// environment is shared by the commands of one invocation.
type environment struct {
	viper      *viper.Viper
	configFile string
	verbose    bool

	zap    *zap.Logger
	logger abstractlogger.Logger
}

// NewRootCommand returns the gqlvariants command with its sub commands.
func NewRootCommand() *cobra.Command {
	env := &environment{
		viper:  viper.New(),
		logger: abstractlogger.NoopLogger,
	}

	root := &cobra.Command{
		Use:   "gqlvariants",
		Short: "gqlvariants renders, checks and decodes polymorphic GraphQL positions",
		Long: `gqlvariants works on the polymorphic positions declared in a YAML file:

  schema: schema.graphql
  positions:
    - name: allData
      type: PostOrAuthor
      fallback: capture
      variants:
        - type: BlogPost
          fields: [id]

Settings can be overridden with GQLVARIANTS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.zap != nil {
				_ = env.zap.Sync() // nolint
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&env.configFile, "config", "c", "gqlvariants.yaml", "declaration file")
	flags.String("schema", "", "schema file, overrides the declaration file; relative to the declaration file")
	flags.BoolVarP(&env.verbose, "verbose", "v", false, "log debug output")
	_ = env.viper.BindPFlag("schema", flags.Lookup("schema"))
	env.viper.SetEnvPrefix("GQLVARIANTS")
	env.viper.AutomaticEnv()

	root.AddCommand(
		newRenderCommand(env),
		newCheckCommand(env),
		newDecodeCommand(env),
	)
	return root
}

// Execute runs the root command with the process arguments.
func Execute() {
	err := NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gqlvariants:", err)
		os.Exit(1)
	}
}

func (e *environment) setupLogger() error {
	cfg := zap.NewProductionConfig()
	level := abstractlogger.InfoLevel
	if e.verbose {
		cfg = zap.NewDevelopmentConfig()
		level = abstractlogger.DebugLevel
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	e.zap = l
	e.logger = abstractlogger.NewZapLogger(l, level)
	return nil
}

// load reads the declarations and, if one is configured, the schema.
func (e *environment) load() (*Declarations, *schema.Schema, error) {
	decl, err := loadDeclarations(e.viper, e.configFile)
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("declarations loaded",
		abstractlogger.String("file", e.configFile),
		abstractlogger.Int("positions", len(decl.Positions)),
	)
	if decl.Schema == "" {
		return decl, nil, nil
	}

	sdl, err := os.ReadFile(decl.Schema)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read schema: %w", err)
	}
	s, err := schema.Load(decl.Schema, string(sdl))
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("schema loaded", abstractlogger.String("file", decl.Schema))
	return decl, s, nil
}
