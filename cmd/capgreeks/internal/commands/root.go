// Package commands implements the capgreeks command tree.
package commands

import (
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meenmo/pathgreeks/config"
	"github.com/meenmo/pathgreeks/logging"
)

// state is shared by the subcommands after the root pre-run.
type state struct {
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
}

// NewRoot wires the capgreeks commands to the given streams.
func NewRoot(stdout, stderr io.Writer) *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:           "capgreeks",
		Short:         "Pathwise Monte Carlo Greeks for caplets and caps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			st.cfg, st.logger = cfg, logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "YAML configuration file (PATHGREEKS_* variables override it)")

	root.AddCommand(newPriceCmd(st), newCurveCmd(st), newCurrenciesCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
