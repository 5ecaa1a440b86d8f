package cmd

import (
	"fmt"
	"os"

	"github.com/JPM1118/diapo/internal/config"
	"github.com/JPM1118/diapo/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logFile    string
	verbose    bool

	cfg config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "diapo [deck.md]",
	Short: "Diapo: present markdown slide decks in the terminal",
	Long: `Diapo presents a markdown file as a slideshow in the terminal.

Slides are separated by lines containing only "---". Navigate with the
arrow keys, space, a mouse click on the prev/next buttons, or a
horizontal swipe. Run with a deck path to start presenting.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}

		file := cfg.Log.File
		if logFile != "" {
			file = logFile
		}
		logger, err := logging.New(logging.Options{
			File:    file,
			Level:   cfg.Log.Level,
			Verbose: verbose,
		})
		if err != nil {
			return err
		}
		log = logger
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runShow(cmd, args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/diapo/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	addShowFlags(rootCmd)
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
