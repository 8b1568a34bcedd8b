package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/pinnbar/internal/analysis"
	"github.com/san-kum/pinnbar/internal/automation"
	"github.com/san-kum/pinnbar/internal/config"
	"github.com/san-kum/pinnbar/internal/experiment"
	"github.com/san-kum/pinnbar/internal/export"
	"github.com/san-kum/pinnbar/internal/metrics"
	"github.com/san-kum/pinnbar/internal/physics"
	"github.com/san-kum/pinnbar/internal/storage"
	"github.com/san-kum/pinnbar/internal/train"
	"github.com/san-kum/pinnbar/internal/viz"
)

var (
	dataDir  string
	logLevel string

	// Run configuration
	configFile    string
	preset        string
	optimizerName string
	loadName      string
	hidden        []int
	points        int
	sampling      string
	epochs        int
	logEvery      int
	tolerance     float64
	lr            float64
	maxIter       float64
	seed          int64
	weightBC      float64
	amplitude     float64
	frequency     float64
	q0            float64
	uL            float64

	// Train output
	runName     string
	resumeRun   string
	metricsAddr string

	// Inspection
	xs         []float64
	evalPoints int
	outFile    string

	// Live view
	theme string

	// Sweep
	ranges      []string
	sweepMetric string

	benchEpochs int

	// Batch runs
	ensembleRuns int
	workers      int
	cutoff       float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pinnbar",
		Short:         "physics-informed neural network for a 1-D elastic bar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pinnbar", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "train a PINN and save the run",
		Args:  cobra.NoArgs,
		RunE:  runTrain,
	}
	addRunFlags(trainCmd)
	trainCmd.Flags().StringVar(&runName, "name", "", "run name")
	trainCmd.Flags().StringVar(&resumeRun, "resume", "", "start from the weights of a saved run (id, prefix or latest)")
	trainCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while training")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot loss history and learned displacement",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&evalPoints, "points", 80, "evaluation points for the displacement plot")

	predictCmd := &cobra.Command{
		Use:   "predict [run_id]",
		Short: "evaluate a trained network",
		Args:  cobra.ExactArgs(1),
		RunE:  predictRun,
	}
	predictCmd.Flags().Float64SliceVar(&xs, "x", nil, "positions to evaluate (default: evenly spaced)")
	predictCmd.Flags().IntVar(&evalPoints, "points", 11, "number of evenly spaced positions when --x is not set")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export predicted and exact displacement to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVar(&evalPoints, "points", train.DefaultEvalPoints, "evaluation points")
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata, loss history and displacement to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().IntVar(&evalPoints, "points", train.DefaultEvalPoints, "evaluation points")
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "train with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeTerminal.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over training parameters",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&ranges, "range", nil, "parameter range name=v1,v2,... (repeatable; one of "+strings.Join(experiment.SweepParams(), ", ")+")")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "rel_l2", "metric to minimize")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time every optimizer on the same problem",
		Args:  cobra.NoArgs,
		RunE:  benchOptimizers,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchEpochs, "bench-epochs", 10, "epochs per optimizer")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the displacement error",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&evalPoints, "points", 257, "evaluation points")
	analyzeCmd.Flags().Float64Var(&cutoff, "cutoff", 2, "wavenumber above which error counts as high frequency")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export loss and displacement charts as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&evalPoints, "points", train.DefaultEvalPoints, "evaluation points")
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output prefix (default: run id)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario and save every step",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "train the same configuration from several seeds",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&ensembleRuns, "runs", 5, "number of seeds")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	rootCmd.AddCommand(trainCmd, listCmd, showCmd, plotCmd, predictCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		presetsCmd, liveCmd, sweepCmd, benchCmd, analyzeCmd, batchCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&optimizerName, "optimizer", config.DefaultOptimizer, "optimizer")
	f.StringVar(&loadName, "load", config.DefaultLoad, "distributed load")
	f.IntSliceVar(&hidden, "hidden", []int{40, 40}, "hidden layer widths")
	f.IntVar(&points, "points", config.DefaultPoints, "collocation points")
	f.StringVar(&sampling, "sampling", physics.SamplingLinspace, "collocation sampling (linspace, random)")
	f.IntVar(&epochs, "epochs", train.DefaultEpochs, "training epochs")
	f.IntVar(&logEvery, "log-every", train.DefaultLogEvery, "log every n epochs")
	f.Float64Var(&tolerance, "tolerance", 0, "stop once the loss falls below this value")
	f.Float64Var(&lr, "lr", 0, "learning rate (sgd, adam)")
	f.Float64Var(&maxIter, "max-iter", 0, "iterations per epoch (lbfgs)")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.Float64Var(&weightBC, "weight-bc", 1, "boundary loss weight")
	f.Float64Var(&amplitude, "amplitude", 1, "sinusoidal load amplitude")
	f.Float64Var(&frequency, "frequency", 1, "sinusoidal load frequency")
	f.Float64Var(&q0, "q0", 1, "uniform load intensity")
	f.Float64Var(&uL, "uL", 0, "prescribed displacement at x = L")
}

// buildConfig layers preset, config file and explicitly set flags, in that
// order of increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("optimizer") && optimizerName != cfg.Optimizer.Name {
		cfg.Optimizer.Name = optimizerName
		cfg.Optimizer.Params = nil
	}
	if flags.Changed("load") && loadName != cfg.Load.Type {
		cfg.Load.Type = loadName
		cfg.Load.Params = nil
	}
	if flags.Changed("hidden") {
		cfg.Network.Hidden = append([]int(nil), hidden...)
	}
	if flags.Changed("sampling") {
		cfg.Sampling.Strategy = sampling
	}
	if flags.Changed("log-every") {
		cfg.Training.LogEvery = logEvery
	}
	if flags.Changed("tolerance") {
		cfg.Training.Tolerance = tolerance
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("uL") {
		cfg.Bar.UL = uL
	}

	loadParams := map[string]*float64{"amplitude": &amplitude, "frequency": &frequency, "q0": &q0}
	for name, v := range loadParams {
		if !flags.Changed(name) {
			continue
		}
		if cfg.Load.Params == nil {
			cfg.Load.Params = make(map[string]float64)
		}
		cfg.Load.Params[name] = *v
	}

	numeric := []struct {
		flag, param string
		value       float64
	}{
		{"points", "points", float64(points)},
		{"epochs", "epochs", float64(epochs)},
		{"lr", "lr", lr},
		{"max-iter", "max_iter", maxIter},
		{"weight-bc", "weight_bc", weightBC},
	}
	for _, n := range numeric {
		if !flags.Changed(n.flag) {
			continue
		}
		if err := experiment.ApplyParam(cfg, n.param, n.value); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger honors --log-level when set, else the config's log_level.
func newLogger(cmd *cobra.Command, cfg *config.Config, w io.Writer) (*logrus.Logger, error) {
	name := logLevel
	if cfg != nil && cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		name = cfg.LogLevel
	}
	level, err := config.ParseLogLevel(name)
	if err != nil {
		return nil, err
	}
	return config.NewLogger(w, level), nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg, os.Stderr)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	if resumeRun != "" {
		id, err := st.Resolve(resumeRun)
		if err != nil {
			return err
		}
		net, err := st.LoadNetwork(id)
		if err != nil {
			return err
		}
		if err := exp.Restore(net); err != nil {
			return err
		}
		log.WithField("run", id).Info("resuming from saved weights")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if metricsAddr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		srv := metrics.NewServer(metricsAddr, exp.Telemetry().Registry(), log)
		done := make(chan error, 1)
		go func() { done <- srv.Run(srvCtx) }()
		defer func() {
			cancel()
			if err := <-done; err != nil {
				log.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	fmt.Printf("training %s on %s load (%d epochs, %s)...\n",
		formatShape(cfg.Network.Hidden), cfg.Load.Type, cfg.Training.Epochs, cfg.Optimizer.Name)

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, train.ErrCanceled) {
		fmt.Printf("training failed after %d epochs\n", len(result.History))
		return runErr
	}

	runID, err := st.Save(runName, cfg, result, exp.Model().Net)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("epochs: %d (%s)\n", result.Epochs, result.StopReason)
	fmt.Printf("loss: %.6e (pde %.6e, bc %.6e)\n", result.Final.Total, result.Final.PDE, result.Final.BC)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return runErr
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func formatShape(hidden []int) string {
	parts := []string{"1"}
	for _, h := range hidden {
		parts = append(parts, fmt.Sprint(h))
	}
	parts = append(parts, "1")
	return strings.Join(parts, "-")
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tLOAD\tNET\tOPT\tEPOCHS\tLOSS\tREL_L2")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%.3e\t%.3e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Load,
			formatShape(run.Hidden),
			run.Optimizer,
			run.Epochs,
			run.Final.Total,
			run.Metrics["rel_l2"],
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// restoreRun rebuilds the experiment a run was trained with and loads its
// weights.
func restoreRun(st *storage.Store, ref string) (*experiment.Experiment, *storage.RunMetadata, error) {
	id, err := st.Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := st.LoadConfig(id)
	if err != nil {
		return nil, nil, err
	}
	net, err := st.LoadNetwork(id)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return nil, nil, err
	}
	if err := exp.Restore(net); err != nil {
		return nil, nil, err
	}
	return exp, meta, nil
}

func evalGrid(exp *experiment.Experiment, n int) ([]float64, error) {
	return physics.Collocation(exp.Model().Bar.L, n, physics.SamplingLinspace, nil)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	exp, meta, err := restoreRun(st, args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(meta.ID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("load: %s, network: %s, optimizer: %s\n", meta.Load, formatShape(meta.Hidden), meta.Optimizer)
	fmt.Printf("epochs: %d\n\n", len(history))

	fmt.Println(viz.LossPlot(history, 80, 10))
	fmt.Println()
	fmt.Println(viz.LossTermsPlot(history, 80, 10))
	fmt.Println()

	grid, err := evalGrid(exp, evalPoints)
	if err != nil {
		return err
	}
	profile := storage.NewProfile(exp.Model(), grid)
	if graph := viz.ProfilePlot(profile.Predicted, profile.Exact, 80, 12); graph != "" {
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func predictRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	exp, _, err := restoreRun(st, args[0])
	if err != nil {
		return err
	}

	positions := xs
	if len(positions) == 0 {
		positions, err = evalGrid(exp, evalPoints)
		if err != nil {
			return err
		}
	}
	profile := storage.NewProfile(exp.Model(), positions)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "X\tU_PRED\tU_EXACT\tERROR")
	for i, x := range profile.X {
		fmt.Fprintf(w, "%.4f\t%.6e\t%.6e\t%.2e\n", x, profile.Predicted[i], profile.Exact[i], profile.Predicted[i]-profile.Exact[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	acc := metrics.Compare(profile.Predicted, profile.Exact)
	fmt.Printf("\nrel_l2: %.3e  max_abs: %.3e  rmse: %.3e\n", acc.RelL2, acc.MaxAbs, acc.RMSE)
	return nil
}

// output opens --output, or stdout when it is unset.
func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	exp, _, err := restoreRun(st, args[0])
	if err != nil {
		return err
	}
	grid, err := evalGrid(exp, evalPoints)
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.NewProfile(exp.Model(), grid).WriteCSV(w); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported %d points to %s\n", len(grid), outFile)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	exp, meta, err := restoreRun(st, args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(meta.ID)
	if err != nil {
		return err
	}
	grid, err := evalGrid(exp, evalPoints)
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, history, storage.NewProfile(exp.Model(), grid)); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tLOAD\tNET\tPOINTS\tOPT\tEPOCHS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\n",
			name,
			cfg.Load.Type,
			formatShape(cfg.Network.Hidden),
			cfg.Sampling.Points,
			cfg.Optimizer.Name,
			cfg.Training.Epochs,
		)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Log output would corrupt the alt screen.
	log := logrus.New()
	log.SetOutput(io.Discard)

	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %s %s", cfg.Load.Type, formatShape(cfg.Network.Hidden), cfg.Optimizer.Name)
	m := viz.NewModel(exp.Trainer(), cfg.GetTrainConfig(), title).WithTheme(theme)

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(ranges) == 0 {
		return fmt.Errorf("at least one --range is required")
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg, os.Stderr)
	if err != nil {
		return err
	}

	grid := make(map[string][]float64, len(ranges))
	for _, r := range ranges {
		name, vals, err := experiment.ParseRange(r)
		if err != nil {
			return err
		}
		grid[name] = vals
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, bestVal, trials, err := experiment.Sweep(ctx, cfg, experiment.NewRegistry(), grid, sweepMetric, log)

	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for _, trial := range trials {
		vals := make([]string, len(names))
		for i, name := range names {
			vals[i] = fmt.Sprintf("%g", trial.Params[name])
		}
		result := fmt.Sprintf("%.4e", trial.Value)
		if trial.Err != nil {
			result = "error: " + trial.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(vals, "\t"), result)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.4e\n", sweepMetric, bestVal)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func benchOptimizers(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	log := logrus.New()
	log.SetOutput(io.Discard)

	fmt.Printf("benchmarking %s on %s load, %d epochs each\n\n", formatShape(cfg.Network.Hidden), cfg.Load.Type, benchEpochs)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTIMIZER\tEPOCHS\tTIME\tPER EPOCH\tLOSS\tREL_L2")

	for _, name := range registry.Optimizers() {
		run := cfg.Clone()
		run.Optimizer = config.OptimizerConfig{Name: name}
		run.Training.Epochs = benchEpochs
		run.Training.Tolerance = 0

		exp, err := experiment.New(run, registry, log)
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil && res == nil {
			return err
		}

		perEpoch := time.Duration(0)
		if res.Epochs > 0 {
			perEpoch = elapsed / time.Duration(res.Epochs)
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%.3e\t%.3e\n",
			name, res.Epochs, elapsed.Round(time.Millisecond), perEpoch.Round(time.Microsecond),
			res.Final.Total, res.Accuracy.RelL2)
	}

	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	exp, meta, err := restoreRun(st, args[0])
	if err != nil {
		return err
	}
	grid, err := evalGrid(exp, evalPoints)
	if err != nil {
		return err
	}
	profile := storage.NewProfile(exp.Model(), grid)

	spectrum, err := analysis.ErrorSpectrum(profile.Predicted, profile.Exact, exp.Model().Bar.L)
	if err != nil {
		return err
	}

	fmt.Printf("error spectrum: %s\n", meta.ID)
	fmt.Printf("load: %s %v\n\n", meta.Load, exp.Config().Load.Params)

	modes := spectrum.Amplitude
	if len(modes) > 40 {
		modes = modes[:40]
	}
	fmt.Println(asciigraph.Plot(modes,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("error amplitude per mode"),
	))
	fmt.Println()

	k, amp := spectrum.Dominant()
	fmt.Printf("dominant error wavenumber: %.3g (amplitude %.3e)\n", k, amp)
	fmt.Printf("high-frequency share (k > %g): %.1f%%\n", cutoff, 100*spectrum.HighFrequencyShare(cutoff))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	exp, meta, err := restoreRun(st, args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(meta.ID)
	if err != nil {
		return err
	}
	grid, err := evalGrid(exp, evalPoints)
	if err != nil {
		return err
	}
	profile := storage.NewProfile(exp.Model(), grid)

	prefix := outFile
	if prefix == "" {
		prefix = meta.ID
	}
	charts := map[string]export.Chart{
		prefix + "_loss.svg":    export.LossChart(history),
		prefix + "_profile.svg": export.ProfileChart(profile.X, profile.Predicted, profile.Exact),
	}
	for path, chart := range charts {
		if err := writeChart(path, chart); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func writeChart(path string, chart export.Chart) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.WriteSVG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, nil, os.Stderr)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), log)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tOPT\tEPOCHS\tLOSS\tREL_L2")
	for _, r := range results {
		runID, err := st.Save(r.Name, r.Config, r.Result, r.Net)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3e\t%.3e\n",
			r.Name, runID, r.Config.Optimizer.Name, r.Result.Epochs, r.Result.Final.Total, r.Result.Accuracy.RelL2)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("training %d seeds from %d...\n", ensembleRuns, cfg.Seed)
	results, err := automation.NewEnsemble(cfg, ensembleRuns, cfg.Seed, workers).Run(ctx, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tEPOCHS\tLOSS\tREL_L2\tSTATUS")
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		if r.Result == nil {
			fmt.Fprintf(w, "%d\t-\t-\t-\t%s\n", r.Seed, status)
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%.3e\t%.3e\t%s\n",
			r.Seed, r.Result.Epochs, r.Result.Final.Total, r.Result.Accuracy.RelL2, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, metric := range []string{"rel_l2", "final_loss"} {
		s := automation.Summarize(results, metric)
		fmt.Printf("%s: mean %.3e, std %.3e, min %.3e, max %.3e (%d ok, %d failed)\n",
			metric, s.Mean, s.Std, s.Min, s.Max, s.Succeeded, s.Failed)
	}
	return nil
}
