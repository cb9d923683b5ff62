package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reoring/gopdm"
	"github.com/reoring/gopdm/classdef"
)

// app holds what every command needs once flags and configuration are read.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *Config
	log     *zap.Logger
	factory *gopdm.Factory
	ser     *gopdm.Serializer
	ui      *ui
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"classes":      "classes",
	"verbose":      "verbose",
	"no-color":     "no_color",
	"max-depth":    "limits.max_depth",
	"max-bytes":    "limits.max_bytes",
	"addr":         "server.addr",
	"jwt-secret":   "server.jwt_secret",
	"session-ttl":  "server.session_ttl",
	"store":        "store.kind",
	"driver":       "store.driver",
	"dsn":          "store.dsn",
	"table":        "store.table",
	"redis-addr":   "store.redis.addr",
	"redis-prefix": "store.redis.prefix",
}

func (a *app) setup(cmd *cobra.Command) error {
	// Bound here rather than at construction since several commands share
	// a key.
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.ui = newUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.NoColor)

	a.log = zap.NewNop()
	if cfg.Verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			a.log = l
		}
	}
	gopdm.SetLogger(a.log)

	a.factory = gopdm.NewFactory()
	gopdm.RegisterCreator(a.factory, gopdm.DocumentClass, gopdm.NewDocument)
	for _, path := range cfg.Classes {
		set, err := classdef.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load classes: %w", err)
		}
		classes, err := classdef.Register(a.factory, set)
		if err != nil {
			return fmt.Errorf("failed to register classes from %s: %w", path, err)
		}
		a.log.Debug("registered classes", zap.String("file", path), zap.Int("count", len(classes)))
	}
	a.ser = gopdm.NewSerializer(a.factory, gopdm.SerializeOpt{
		MaxDepth: cfg.Limits.MaxDepth,
		MaxBytes: cfg.Limits.MaxBytes,
	}).WithLogger(a.log)
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "gopdm",
		Short: "Inspect, convert, persist and serve gopdm object graphs",
		Long: `gopdm works with object graphs serialized as JSON records carrying
"Class" and "UUID" keys. Classes come from YAML or TOML definition files
passed with --classes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./gopdm.yaml)")
	pf.StringSlice("classes", nil, "class definition files (YAML or TOML)")
	pf.BoolP("verbose", "v", false, "verbose logging")
	pf.Bool("no-color", false, "disable colored output")
	pf.Int("max-depth", 0, "maximum nesting depth of read documents (0 = unlimited)")
	pf.Int64("max-bytes", 0, "maximum size of read documents (0 = unlimited)")

	root.AddCommand(
		newVersionCmd(),
		newClassesCmd(a),
		newSchemaCmd(a),
		newValidateCmd(a),
		newConvertCmd(a),
		newServeCmd(a),
		newSaveCmd(a),
		newLoadCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gopdm version: %s\nGit commit: %s\n", Version, GitCommit)
		},
	}
}
