package cmd

import (
	"fmt"

	"github.com/heathj/minibrowser/config"
	"github.com/heathj/minibrowser/parser"
	"github.com/heathj/minibrowser/parser/dom"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	parseFormat string
	parseStrict bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a document and print its tree",
	Long: `Parses a document and prints the resulting tree.

Examples:
  minibrowser parse index.html
  minibrowser parse --format yaml index.html
  echo '<p>hi' | minibrowser parse --format html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "output format: tree, html or yaml (default from config)")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "fail on elements outside the supported vocabulary")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = parseFormat
	}
	if cmd.Flags().Changed("strict") {
		cfg.Parser.Strict = parseStrict
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	in, name, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	log := logrus.NewEntry(newLogger(cmd, cfg)).WithField("source", name)
	w, parseErrors, err := parser.ParseReader(in, parser.Config{
		Strict: cfg.Parser.Strict,
		Logger: log,
	})
	if err != nil {
		return errors.Wrapf(err, "parsing %s", name)
	}
	log.WithFields(logrus.Fields{
		"window": w.ID().String(),
		"nodes":  w.Document().Len(),
		"errors": len(parseErrors),
	}).Info("parsed document")

	return writeDocument(cmd, cfg, w.Document())
}

func writeDocument(cmd *cobra.Command, cfg *config.Config, d *dom.Document) error {
	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case config.FormatHTML:
		_, err := fmt.Fprintln(out, d.OuterHTML())
		return err
	case config.FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(out, newRenderer(cfg.Output.Color).tree(d))
		return err
	}
}
