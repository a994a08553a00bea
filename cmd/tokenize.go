package cmd

import (
	"fmt"
	"io"

	"github.com/heathj/minibrowser/parser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [file]",
	Short: "Print the token stream of a document",
	Long: `Runs only the tokenizer and prints one token per line.

Examples:
  minibrowser tokenize index.html
  echo '<p class=a>hi</p>' | minibrowser tokenize`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in, name, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	b, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}

	tokenizer := parser.NewTokenizer(string(b))
	tokenizer.SetLogger(logrus.NewEntry(newLogger(cmd, cfg)).WithField("source", name))

	r := newRenderer(cfg.Output.Color)
	out := cmd.OutOrStdout()
	for t := range tokenizer.All() {
		if _, err := fmt.Fprintln(out, r.token(&t)); err != nil {
			return err
		}
	}
	return nil
}
