package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/plantsim/internal/analysis"
	"github.com/san-kum/plantsim/internal/config"
	"github.com/san-kum/plantsim/internal/export"
	"github.com/san-kum/plantsim/internal/golden"
	"github.com/san-kum/plantsim/internal/integrators"
	"github.com/san-kum/plantsim/internal/metrics"
	"github.com/san-kum/plantsim/internal/optim"
	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/remote"
	"github.com/san-kum/plantsim/internal/trajectory"
	"github.com/san-kum/plantsim/internal/viz"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.Close()

	scenarios, err := cfg.BuildScenarios(trajectory.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("simulating %d scenarios (wn=%g zeta=%g dt=%g)...\n", len(scenarios), cfg.Plant.Wn, cfg.Plant.Zeta, cfg.SampleTime)
	start := time.Now()
	ds, err := golden.Build(cmd.Context(), cfg.Plant, cfg.SampleTime, scenarios,
		trajectory.WithWorkers(cfg.Workers),
		trajectory.WithLogger(lg.Logger),
	)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := golden.NewStore(cfg.Store.Dir, cfg.Store.Indent)
	if err := st.Save(cfg.Dataset, ds); err != nil {
		return err
	}
	lg.Info("dataset written", "path", st.Path(cfg.Dataset), "trajectories", len(ds.Trajectories))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("dataset: %s\n", st.Path(cfg.Dataset))
	for _, name := range ds.Names() {
		t := ds.Trajectories[name]
		fmt.Printf("\n%s (%d samples)\n", name, t.Len())
		fmt.Print(viz.MetricsTable(metrics.Evaluate(t, metrics.StepResponse(target(t))...)))
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.Close()

	st := golden.NewStore(cfg.Store.Dir, cfg.Store.Indent)
	ds, err := st.Load(cfg.Dataset)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var reports []golden.Report
	switch {
	case substeps > 0:
		ss, ssErr := ds.Params.StateSpace()
		if ssErr != nil {
			return ssErr
		}
		ref, refErr := integrators.NewReference(ss, ds.SampleTime, substeps)
		if refErr != nil {
			return refErr
		}
		reports, err = golden.Verify(ctx, ds, ref, cfg.Tolerance)
	case remoteURL == "":
		reports, err = golden.VerifyLocal(ctx, ds, cfg.Tolerance)
	default:
		client, dialErr := remote.Dial(ctx, remoteURL)
		if dialErr != nil {
			return dialErr
		}
		defer client.Close()
		res, initErr := client.Init(ctx, ds.Params.Wn, ds.Params.Zeta, ds.SampleTime)
		if initErr != nil {
			return initErr
		}
		lg.Debug("remote plant initialized", "url", remoteURL, "order", res.Order, "reused", res.Reused)
		reports, err = golden.Verify(ctx, ds, client, cfg.Tolerance)
	}
	if err != nil {
		return err
	}

	fmt.Print(viz.ReportTable(reports))
	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d trajectories differ from %s", failed, len(reports), st.Path(cfg.Dataset))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.Close()

	ds, err := golden.NewStore(cfg.Store.Dir, cfg.Store.Indent).Load(cfg.Dataset)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = ds.Names()
	}
	opts := viz.PlotOptions{Width: width, Height: height, WithInput: true}
	for _, name := range names {
		t, ok := ds.Trajectories[name]
		if !ok {
			return fmt.Errorf("%w: %s", trajectory.ErrUnknownTrajectory, name)
		}
		fmt.Println(viz.Title.Render(name))
		fmt.Println(viz.Plot(name, t, opts))
		fmt.Println(viz.MetricsTable(metrics.Evaluate(t, metrics.StepResponse(target(t))...)))
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	entries, err := golden.NewStore(cfg.Store.Dir, false).List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no datasets found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tWN\tZETA\tDT\tTRAJECTORIES\tSAMPLES\tMODIFIED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%d\t%d\t%s\n",
			e.Name, e.Params.Wn, e.Params.Zeta, e.SampleTime, e.Trajectories, e.Samples,
			e.Modified.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := golden.NewStore(cfg.Store.Dir, false).Load(cfg.Dataset)
	if err != nil {
		return err
	}
	t, ok := ds.Trajectories[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", trajectory.ErrUnknownTrajectory, args[0])
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := golden.WriteCSV(w, t); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "exported %d samples to %s\n", t.Len(), output)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.Close()

	h := remote.NewHandle(lg.Logger)
	if stdio {
		lg.Info("serving plant on stdio")
		return remote.ServeStdio(cmd.Context(), h, os.Stdin, os.Stdout, lg.Logger)
	}

	srv := remote.NewServer(h,
		remote.WithServerLogger(lg.Logger),
		remote.WithIdleTimeout(cfg.Serve.IdleTimeout),
	)
	lg.Info("serving plant", "addr", cfg.Serve.Addr, "path", cfg.Serve.Path)
	return srv.ListenAndServe(cmd.Context(), cfg.Serve.Addr, cfg.Serve.Path)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the terminal belongs to the live view
	cfg.Log.Console = false
	lg, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer lg.Close()

	scenarios, err := cfg.BuildScenarios(trajectory.NewRegistry())
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios configured", plant.ErrInvalidParameter)
	}
	sc := scenarios[0]
	if scenario != "" {
		found := false
		for _, s := range scenarios {
			if s.Name == scenario {
				sc, found = s, true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", trajectory.ErrUnknownTrajectory, scenario)
		}
	}

	ctx := cmd.Context()
	var p trajectory.Plant
	title := fmt.Sprintf("%s  wn=%g zeta=%g dt=%g", sc.Name, cfg.Plant.Wn, cfg.Plant.Zeta, cfg.SampleTime)
	if remoteURL == "" {
		m, err := plant.NewSecondOrder(cfg.Plant.Wn, cfg.Plant.Zeta, cfg.SampleTime)
		if err != nil {
			return err
		}
		d, err := m.Discretize()
		if err != nil {
			return err
		}
		sim := plant.NewSimulator()
		if err := sim.Initialize(d); err != nil {
			return err
		}
		p = trajectory.LocalPlant(sim)
	} else {
		client, err := remote.Dial(ctx, remoteURL)
		if err != nil {
			return err
		}
		defer client.Close()
		if _, err := client.Init(ctx, cfg.Plant.Wn, cfg.Plant.Zeta, cfg.SampleTime); err != nil {
			return err
		}
		p = client
		title += "  " + remoteURL
	}

	lg.Info("live view started", "scenario", sc.Name, "remote", remoteURL)
	return viz.RunLive(viz.NewLiveModel(p, sc.Profile, cfg.SampleTime, title))
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

// target is the reference level response metrics are measured against: the
// last input value when the input was recorded.
func target(t *trajectory.Trajectory) float64 {
	if !t.HasInput() {
		return 0
	}
	return t.Input[len(t.Input)-1]
}

func runExportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := golden.NewStore(cfg.Store.Dir, false).Load(cfg.Dataset)
	if err != nil {
		return err
	}
	t, ok := ds.Trajectories[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", trajectory.ErrUnknownTrajectory, args[0])
	}

	svg := export.TrajectorySVG(t, svgWidth, svgHeight)
	if phase {
		p, err := portrait(cmd.Context(), ds, t)
		if err != nil {
			return err
		}
		svg = export.PortraitSVG(p, svgWidth, svgHeight)
	}
	if svg == "" {
		return fmt.Errorf("%s: not enough samples to plot", args[0])
	}

	if output == "" {
		_, err = io.WriteString(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(output, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", output)
	return nil
}

// portrait re-simulates t's recorded input through the dataset's plant to
// recover the state trajectory.
func portrait(ctx context.Context, ds *golden.Dataset, t *trajectory.Trajectory) (*analysis.Portrait, error) {
	m, err := ds.Model()
	if err != nil {
		return nil, err
	}
	d, err := m.Discretize()
	if err != nil {
		return nil, err
	}
	sim := plant.NewSimulator()
	if err := sim.Initialize(d); err != nil {
		return nil, err
	}
	var p trajectory.Profile = trajectory.Zero{}
	if t.HasInput() {
		p = trajectory.Sequence{Values: t.Input}
	}
	return analysis.PhasePortrait(ctx, sim, 0, 1, t.Time[t.Len()-1], ds.SampleTime, p)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := golden.NewStore(cfg.Store.Dir, false).Load(cfg.Dataset)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = ds.Names()
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRAJECTORY\tDOMINANT (Hz)\tZETA (est)\tWN (est)")
	for _, name := range names {
		t, ok := ds.Trajectories[name]
		if !ok {
			return fmt.Errorf("%w: %s", trajectory.ErrUnknownTrajectory, name)
		}
		fd := analysis.DominantFrequency(t.Output, ds.SampleTime)
		z := analysis.EstimateDamping(t.Output)
		wnEst := 2 * math.Pi * fd / math.Sqrt(1-z*z)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, num(fd), num(z), num(wnEst))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nstored plant: wn=%g zeta=%g (damped %.4g Hz)\n", ds.Params.Wn, ds.Params.Zeta,
		ds.Params.Wn*math.Sqrt(max(0, 1-ds.Params.Zeta*ds.Params.Zeta))/(2*math.Pi))
	return nil
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.Close()

	ds, err := golden.NewStore(cfg.Store.Dir, false).Load(cfg.Dataset)
	if err != nil {
		return err
	}
	t, ok := ds.Trajectories[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", trajectory.ErrUnknownTrajectory, args[0])
	}

	wnMax := max(4*ds.Params.Wn, 1/ds.SampleTime/10)
	g := optim.NewGridSearch(optim.Linspace(wnMax/20, wnMax, 20), optim.Linspace(0, 2, 21))
	g.Refine = refine
	start := time.Now()
	fit, err := g.Search(cmd.Context(), t, ds.SampleTime)
	if err != nil {
		return err
	}
	lg.Debug("fit complete", "evaluations", fit.Evaluations, "elapsed", time.Since(start))

	fmt.Printf("fitted:  wn=%.6g zeta=%.6g (rms %.3g over %d samples)\n", fit.Params.Wn, fit.Params.Zeta, fit.RMS, t.Len())
	fmt.Printf("stored:  wn=%g zeta=%g\n", ds.Params.Wn, ds.Params.Zeta)
	return nil
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}
