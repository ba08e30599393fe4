package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/granular/internal/analysis"
	"github.com/san-kum/granular/internal/audio"
	"github.com/san-kum/granular/internal/automation"
	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/events"
	"github.com/san-kum/granular/internal/experiment"
	"github.com/san-kum/granular/internal/gui"
	"github.com/san-kum/granular/internal/optim"
	"github.com/san-kum/granular/internal/sandbox"
	"github.com/san-kum/granular/internal/sim"
	"github.com/san-kum/granular/internal/storage"
	"github.com/san-kum/granular/internal/store"
	"github.com/san-kum/granular/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	verbose    bool

	integrator string
	broadPhase string
	duration   float64
	rate       int
	emitFrames int
	sampleRate int
	runName    string

	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	sweepMetric string

	outFile  string
	svgFile  string
	svgScale float64
	loadFile string
	sound    bool
	axes     []string
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d7c378"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f0f0f0"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "granular",
		Short:         "2D granular sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".granular", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "pour grains headless and save telemetry",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name")
	runCmd.Flags().IntVar(&sampleRate, "sample-every", 1, "record every nth frame")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "time every integrator and broad phase on the same pour",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addRunFlags(benchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the energy curve as svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "pour a scene and write the final world as json and svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScene,
	}
	addRunFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "scene.json", "scene json path")
	snapshotCmd.Flags().StringVar(&svgFile, "svg", "", "svg path")
	snapshotCmd.Flags().Float64Var(&svgScale, "scale", 1, "svg scale")

	renderCmd := &cobra.Command{
		Use:   "render [scene.json]",
		Short: "render a saved scene as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  renderScene,
	}
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "scene.svg", "svg path")
	renderCmd.Flags().Float64Var(&svgScale, "scale", 1, "svg scale")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run the same pour across a parameter range",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_penetration", "metric to minimise")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets, scenes and tunable parameters",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			r := experiment.NewRegistry()
			printList("presets", config.ListPresets())
			printList("scenes", r.ListScenes())
			printList("integrators", r.ListIntegrators())
			printList("broad phases", r.ListBroadPhases())
			printList("tunables", automation.ListTunables())
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui [scene]",
		Short: "terminal sandbox",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&loadFile, "load", "", "restore a saved scene")

	guiCmd := &cobra.Command{
		Use:   "gui [scene]",
		Short: "window sandbox",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	guiCmd.Flags().StringVar(&loadFile, "load", "", "restore a saved scene")
	guiCmd.Flags().BoolVar(&sound, "sound", false, "play the pour through the default audio device")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "settle time and oscillation of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	tuneCmd := &cobra.Command{
		Use:     "tune [scene]",
		Short:   "grid search tunables for the lowest metric",
		Example: "  granular tune ramp --axis friction=0.2:0.8:4 --axis restitution=0,0.2",
		Args:    cobra.MaximumNArgs(1),
		RunE:    tuneScene,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&axes, "axis", nil, "name=min:max:steps or name=v1,v2 (repeatable)")
	tuneCmd.Flags().StringVar(&sweepMetric, "metric", "max_penetration", "metric to minimise")

	rootCmd.AddCommand(runCmd, benchCmd, listCmd, plotCmd, exportCmd, snapshotCmd, renderCmd, scenarioCmd, sweepCmd, tuneCmd, analyzeCmd, presetsCmd, tuiCmd, guiCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (default from config)")
	cmd.Flags().StringVar(&broadPhase, "broadphase", "", "broad phase (default from config)")
	cmd.Flags().Float64Var(&duration, "time", 10, "simulated seconds")
	cmd.Flags().IntVar(&rate, "rate", 2, "grains emitted per frame")
	cmd.Flags().IntVar(&emitFrames, "emit-frames", 0, "stop emitting after this many frames (0 = never)")
}

// loadConfig resolves defaults, then the preset, then the config file, then
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Physics.Integrator = integrator
	}
	if flags.Changed("broadphase") {
		cfg.Physics.BroadPhase = broadPhase
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	return events.NewLogger(os.Stderr, verbose)
}

// fileLogger writes to the data directory so log lines do not tear the
// terminal UI.
func fileLogger() (*log.Logger, func(), error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "granular.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return events.NewLogger(f, verbose), func() { f.Close() }, nil
}

func sceneArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "empty"
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func printList(title string, names []string) {
	fmt.Println(headerStyle.Render(title))
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", name)), valueStyle.Render(fmt.Sprintf("%.6f", m[name])))
	}
}

func pour(cfg *config.Config, scene string, sample int, logger *log.Logger) (*experiment.Experiment, error) {
	exp := experiment.New(experiment.Config{
		Sim:          cfg,
		Scene:        scene,
		Duration:     duration,
		EmitPerFrame: rate,
		EmitFrames:   emitFrames,
		SampleEvery:  sample,
	})
	registry := experiment.NewRegistry()
	if err := exp.Setup(registry, registry.DefaultMetrics(), events.NewLogObserver(logger)); err != nil {
		return nil, err
	}
	return exp, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()
	scene := sceneArg(args)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := pour(cfg, scene, sampleRate, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "scene", scene, "time", duration, "rate", rate, "seed", cfg.Seed)
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run stopped early", "err", runErr)
	}

	name := runName
	if name == "" {
		name = scene
	}
	runID, err := st.Save(storage.RunMetadata{
		Name:       name,
		Seed:       cfg.Seed,
		Preset:     preset,
		Scene:      scene,
		Dt:         cfg.Dt(),
		Duration:   duration,
		Integrator: cfg.Physics.Integrator,
		BroadPhase: cfg.Physics.BroadPhase,
	}, result)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("run " + runID))
	fmt.Printf("  frames %d  emitted %d  culled %d  grains %d  in %v\n",
		result.Frames, result.Emitted, result.Culled, exp.Controller().Len(), result.Elapsed.Round(time.Millisecond))
	printMetrics(result.Metrics)
	return runErr
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scene := sceneArg(args)
	registry := experiment.NewRegistry()
	logger := log.New(io.Discard)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Println(headerStyle.Render(fmt.Sprintf("bench %s: %.1fs at %d grains/frame", scene, duration, rate)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tBROAD\tFRAMES\tGRAINS\tELAPSED\tFRAMES/S\tMAX PEN")
	for _, integ := range registry.ListIntegrators() {
		for _, bp := range registry.ListBroadPhases() {
			cfg := *base
			cfg.Physics.Integrator = integ
			cfg.Physics.BroadPhase = bp

			exp, err := pour(&cfg, scene, 1<<30, logger)
			if err != nil {
				return err
			}
			result, err := exp.Run(ctx)
			if err != nil && !errors.Is(err, sim.ErrUnstable) {
				return err
			}
			fps := float64(result.Frames) / result.Elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%.1f\t%.4f\n",
				integ, bp, result.Frames, exp.Controller().Len(),
				result.Elapsed.Round(time.Millisecond), fps, result.Metrics["max_penetration"])
		}
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tFRAMES\tEMITTED\tINTEG\tBROAD")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Frames,
			run.Emitted,
			run.Integrator,
			run.BroadPhase,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(headerStyle.Render("run " + meta.ID))
	fmt.Printf("scene: %s  samples: %d\n\n", meta.Scene, len(samples))

	times := make([]float64, len(samples))
	series := []struct {
		caption string
		get     func(sim.Sample) float64
	}{
		{"kinetic energy", func(s sim.Sample) float64 { return s.KineticEnergy }},
		{"grains", func(s sim.Sample) float64 { return float64(s.Grains) }},
		{"contacts", func(s sim.Sample) float64 { return float64(s.Contacts) }},
		{"max penetration", func(s sim.Sample) float64 { return s.MaxPenetration }},
	}
	var energy []float64
	for k, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.get(s)
			times[i] = s.Time
		}
		if k == 0 {
			energy = data
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		))
		fmt.Println()
	}

	if svgFile != "" {
		svg := store.SeriesToSVG(times, energy, 800, 300, "#d7c378")
		if err := os.WriteFile(svgFile, []byte(svg), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := pour(cfg, sceneArg(args), 1<<30, newLogger())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	if _, err := exp.Run(ctx); err != nil {
		return err
	}

	sc := store.Snapshot(exp.Controller())
	if err := store.ExportSceneFile(outFile, sc); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d grains, %d segments)\n", outFile, len(sc.Grains), len(sc.Segments))

	const bins = 90
	profile := analysis.HeightProfile(exp.Controller().Grains(), cfg.Screen.Width, cfg.Screen.Height, bins)
	if deg, ok := analysis.ReposeAngle(profile, cfg.Screen.Width/bins); ok {
		fmt.Printf("angle of repose %.1f°\n", deg)
	}
	if svgFile != "" {
		if err := os.WriteFile(svgFile, []byte(store.SceneToSVG(sc, svgScale)), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func renderScene(cmd *cobra.Command, args []string) error {
	sc, err := store.ImportSceneFile(args[0])
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, []byte(store.SceneToSVG(sc, svgScale)), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := scenario.Config(base)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	c, err := scenario.Setup(base, registry, registry.DefaultMetrics())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Println(headerStyle.Render("scenario " + scenario.Name))
	if scenario.Description != "" {
		fmt.Println(labelStyle.Render(scenario.Description))
	}
	results, runErr := automation.RunScenario(ctx, scenario, c)

	st := storage.New(dataDir)
	for _, r := range results {
		fmt.Printf("  %2d %-8s created %-6d grains %d\n", r.Index+1, r.Kind, r.Created, r.Grains)
		if r.Result == nil || r.SaveAs == "" {
			continue
		}
		runID, err := st.Save(storage.RunMetadata{
			Name:       r.SaveAs,
			Seed:       cfg.Seed,
			Preset:     scenario.Preset,
			Scene:      scenario.Scene,
			Dt:         cfg.Dt(),
			Duration:   float64(r.Result.Frames) * cfg.Dt(),
			Integrator: cfg.Physics.Integrator,
			BroadPhase: cfg.Physics.BroadPhase,
		}, r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("     saved %s\n", runID)
		printMetrics(r.Result.Metrics)
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sweep := &automation.ParameterSweep{
		Base:         base,
		Scene:        "ramp",
		ParamName:    args[0],
		ParamMin:     sweepMin,
		ParamMax:     sweepMax,
		NumSteps:     sweepSteps,
		Duration:     duration,
		EmitPerFrame: rate,
		EmitFrames:   emitFrames,
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("sweep %s over [%g, %g]", sweep.ParamName, sweepMin, sweepMax)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tGRAINS\t%s\n", strings.ToUpper(sweep.ParamName), strings.ToUpper(sweepMetric))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.6f\n", r.ParamValue, r.Grains, r.Metrics[sweepMetric])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if best, ok := automation.Best(results, sweepMetric); ok {
		fmt.Printf("\nlowest %s at %s = %g\n", sweepMetric, sweep.ParamName, best.ParamValue)
	}
	return nil
}

// session builds a sandbox session for the chosen scene, optionally
// restoring a saved world into it.
func session(cmd *cobra.Command, args []string, logger *log.Logger) (*sandbox.Session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(experiment.Config{Sim: cfg, Scene: sceneArg(args)})
	if err := exp.Setup(experiment.NewRegistry(), nil, events.NewLogObserver(logger)); err != nil {
		return nil, err
	}
	c := exp.Controller()

	if loadFile != "" {
		sc, err := store.ImportSceneFile(loadFile)
		if err != nil {
			return nil, err
		}
		n, err := store.Restore(c, sc)
		if err != nil {
			logger.Warn("scene partially restored", "grains", n, "err", err)
		} else {
			logger.Info("scene restored", "file", loadFile, "grains", n)
		}
	}
	return sandbox.NewSession(c, logger), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := fileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	if len(args) > 0 || loadFile != "" {
		s, err := session(cmd, args, logger)
		if err != nil {
			return err
		}
		return viz.Run(s)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return viz.RunInteractive(viz.NewInteractiveApp(experiment.NewRegistry(), cfg, logger))
}

func runGUI(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	s, err := session(cmd, args, logger)
	if err != nil {
		return err
	}
	if sound {
		son := audio.NewSonifier(s.Controller().Config().Seed)
		if err := son.Start(); err != nil {
			logger.Warn("sound disabled", "err", err)
		} else {
			defer son.Stop()
			s.Controller().AddObserver(son)
		}
	}
	return gui.Run(s, logger)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("not enough samples to analyze")
	}

	fmt.Println(headerStyle.Render("analysis " + meta.ID))
	if ts, ok := analysis.SettleTime(samples, 0.01); ok {
		fmt.Printf("  settled at %.2fs\n", ts)
	} else {
		fmt.Println("  still moving at the end of the run")
	}

	energy := make([]float64, len(samples))
	for i, s := range samples {
		energy[i] = s.KineticEnergy
	}
	step := samples[1].Time - samples[0].Time
	if f, ok := analysis.DominantFrequency(energy, step); ok {
		fmt.Printf("  dominant energy oscillation %.3f Hz\n", f)
	}

	ps := analysis.PowerSpectrum(energy)
	if len(ps) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (kinetic energy)"),
		))
	}
	return nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required")
	}
	names := make([]string, 0, len(axes))
	ranges := make([][]float64, 0, len(axes))
	for _, a := range axes {
		name, vals, err := optim.ParseAxis(a)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	scene := sceneArg(args)
	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		exp := experiment.New(experiment.Config{
			Sim:          optim.Apply(base, params),
			Scene:        scene,
			Duration:     duration,
			EmitPerFrame: rate,
			EmitFrames:   emitFrames,
			SampleEvery:  1 << 30,
		})
		if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
			return nil, err
		}
		return exp, nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Println(headerStyle.Render(fmt.Sprintf("tune %s: %d combinations", scene, g.Size())))
	params, best, err := g.Search(ctx, build, sweepMetric)
	if err != nil {
		return err
	}
	fmt.Printf("lowest %s = %.6f\n", sweepMetric, best)
	printMetrics(params)
	return nil
}
