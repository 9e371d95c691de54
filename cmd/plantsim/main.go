package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/plantsim/internal/config"
	"github.com/san-kum/plantsim/internal/golden"
	"github.com/san-kum/plantsim/internal/logging"
)

var (
	configFile string
	preset     string
	storeDir   string
	dataset    string
	wn         float64
	zeta       float64
	dt         float64
	workers    int
	logLevel   string
	logFormat  string
	logFile    string
	indent     bool
	rel        float64
	abs        float64
	remoteURL  string
	addr       string
	path       string
	stdio      bool
	output     string
	scenario   string
	width      int
	height     int
	svgWidth   int
	svgHeight  int
	refine     int
	substeps   int
	phase      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "plantsim",
		Short:         "second-order plant simulator and golden trajectory tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "plant preset (see presets)")
	pf.StringVar(&storeDir, "store", config.DefaultStoreDir, "golden dataset directory")
	pf.StringVar(&dataset, "dataset", config.DefaultDataset, "dataset name")
	pf.Float64Var(&wn, "wn", config.DefaultWn, "natural frequency (rad/s)")
	pf.Float64Var(&zeta, "zeta", config.DefaultZeta, "damping ratio")
	pf.Float64Var(&dt, "dt", config.DefaultSampleTime, "sample time (s)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&logFile, "log-file", "", "also log to this file")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "simulate the configured scenarios and store them as a golden dataset",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	generateCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "scenarios simulated in parallel")
	generateCmd.Flags().BoolVar(&indent, "indent", false, "write indented json")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "re-simulate a stored dataset and compare against it",
		Args:  cobra.NoArgs,
		RunE:  runVerify,
	}
	verifyCmd.Flags().Float64Var(&rel, "rel", golden.DefaultTolerance.Rel, "relative tolerance")
	verifyCmd.Flags().Float64Var(&abs, "abs", golden.DefaultTolerance.Abs, "absolute tolerance")
	verifyCmd.Flags().StringVar(&remoteURL, "remote", "", "verify a remote plant at this websocket url")
	verifyCmd.Flags().IntVar(&substeps, "continuous", 0, "verify against RK4 integration of the continuous plant with this many substeps per sample")

	showCmd := &cobra.Command{
		Use:   "show [trajectory...]",
		Short: "plot stored trajectories with their response metrics",
		RunE:  runShow,
	}
	showCmd.Flags().IntVar(&width, "width", 80, "plot width")
	showCmd.Flags().IntVar(&height, "height", 12, "plot height")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored datasets",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [trajectory]",
		Short: "export a stored trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the plant over JSON-RPC",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().StringVar(&path, "path", config.DefaultPath, "websocket path")
	serveCmd.Flags().BoolVar(&stdio, "stdio", false, "serve line-delimited requests on stdin/stdout")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the plant in real time",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&scenario, "scenario", "", "scenario providing the input profile (default first)")
	liveCmd.Flags().StringVar(&remoteURL, "remote", "", "drive a remote plant at this websocket url")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list plant presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s wn=%-6g zeta=%-5g dt=%-6g %s\n", name, p.Params.Wn, p.Params.Zeta, p.SampleTime, p.Description)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [trajectory]",
		Short: "export a stored trajectory, or the plant phase portrait, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")
	exportSVGCmd.Flags().BoolVar(&phase, "phase", false, "plot position against velocity instead of time")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [trajectory...]",
		Short: "estimate frequency and damping of stored responses",
		RunE:  runAnalyze,
	}

	fitCmd := &cobra.Command{
		Use:   "fit [trajectory]",
		Short: "identify the plant parameters that reproduce a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runFit,
	}
	fitCmd.Flags().IntVar(&refine, "refine", 4, "grid refinement rounds")

	rootCmd.AddCommand(generateCmd, verifyCmd, showCmd, listCmd, exportCSVCmd, exportSVGCmd, analyzeCmd, fitCmd, serveCmd, liveCmd, presetsCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: the config file (or the
// defaults), then the preset, then any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.Apply(cfg)
	}

	flags := cmd.Flags()
	if configFile == "" || flags.Changed("store") {
		cfg.Store.Dir = storeDir
	}
	if configFile == "" || flags.Changed("dataset") {
		cfg.Dataset = dataset
	}
	if flags.Changed("wn") {
		cfg.Plant.Wn = wn
	}
	if flags.Changed("zeta") {
		cfg.Plant.Zeta = zeta
	}
	if flags.Changed("dt") {
		cfg.SampleTime = dt
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("indent") {
		cfg.Store.Indent = indent
	}
	if flags.Changed("rel") {
		cfg.Tolerance.Rel = rel
	}
	if flags.Changed("abs") {
		cfg.Tolerance.Abs = abs
	}
	if flags.Changed("addr") {
		cfg.Serve.Addr = addr
	}
	if flags.Changed("path") {
		cfg.Serve.Path = path
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.Filename = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and opens the logger. Logs always go to
// stderr so stdout stays usable for data.
func setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	lg, err := openLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, lg, nil
}

func openLogger(cfg *config.Config) (*logging.Logger, error) {
	lg, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(lg.Logger)
	return lg, nil
}
