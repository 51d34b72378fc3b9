package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cropsight/internal/agronomy"
	"cropsight/internal/config"
	"cropsight/internal/engine"
	"cropsight/internal/logging"
	"cropsight/internal/session"
	"cropsight/internal/tui"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configDir string
	debug     bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cropsight",
		Short: "Explainable crop suitability for operators, scientists and planners",
		Long: `cropsight recommends one of Rice, Mothbeans or Coffee from seven field
measurements, explains the recommendation, and presents it for a field
operator, a domain scientist or a regional planner.

Run without a command to open the interactive view.
`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.sync() },
		RunE:              a.runTUI,
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", ".", "directory holding .cropsight/settings.yaml")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newAnalyzeCmd(a),
		newReportCmd(a),
		newSurveyCmd(a),
	)
	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log, a.debug)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) sync() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// newController builds a session over ms with the configured persona.
func (a *app) newController(ms agronomy.MeasurementSet) *session.Controller {
	return session.New(engine.Engine{}, ms,
		session.WithLogger(a.logger),
		session.WithPersona(a.cfg.PersonaKind()))
}

func (a *app) runTUI(*cobra.Command, []string) error {
	a.logger.Info("starting interactive session", zap.Duration("latency", a.cfg.Latency))
	return tui.Run(a.newController(a.cfg.Defaults), tui.Options{
		Latency: a.cfg.Latency,
		Logger:  a.logger,
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cropsight: %v\n", err)
		os.Exit(1)
	}
}
