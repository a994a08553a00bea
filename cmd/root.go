package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/heathj/minibrowser/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "minibrowser",
	Short: "Parsing core of a minimal browser engine",
	Long: `minibrowser turns markup into a document tree.

The supported element vocabulary is html, head, style, script, body,
p, h1 and h2. Anything else is skipped unless --strict is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $"+config.EnvPath+" or ./minibrowser.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parse errors and mode switches")
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// loadConfig resolves the configuration and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = logrus.DebugLevel.String()
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logrus.Logger {
	l := cfg.Logger()
	l.SetOutput(cmd.ErrOrStderr())
	return l
}

// openInput returns the named file, or stdin for no argument or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", errors.Wrap(err, "opening input")
	}
	return f, args[0], nil
}
