package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/analysis"
	"github.com/san-kum/acoustid/internal/audiodevice"
	"github.com/san-kum/acoustid/internal/automation"
	"github.com/san-kum/acoustid/internal/capture"
	"github.com/san-kum/acoustid/internal/config"
	"github.com/san-kum/acoustid/internal/meshio"
	"github.com/san-kum/acoustid/internal/optim"
	"github.com/san-kum/acoustid/internal/scenario"
	"github.com/san-kum/acoustid/internal/scene3d"
	"github.com/san-kum/acoustid/internal/sceneexport"
	"github.com/san-kum/acoustid/internal/tui"
)

var (
	dataDir    string
	seed       int64
	frames     int
	doCapture  bool
	toneFreq   float64
	playFor    float64
	targetT60  float64
	tuneFrames int
	svgFrames  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "acoustid",
		Short: "geometric acoustics propagation and rendering lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".acoustid", "data directory")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "random seed for probe rays and reverb banks")

	runCmd := &cobra.Command{
		Use:   "run [preset|config.yaml]",
		Short: "run the propagation engine for a fixed number of frames",
		Args:  cobra.ExactArgs(1),
		RunE:  runPropagation,
	}
	runCmd.Flags().IntVar(&frames, "frames", 300, "number of simulation frames")
	runCmd.Flags().BoolVar(&doCapture, "capture", false, "save the run to the data directory")

	playCmd := &cobra.Command{
		Use:   "play [preset|config.yaml]",
		Short: "run engine + renderer against the default audio device",
		Args:  cobra.ExactArgs(1),
		RunE:  playLive,
	}
	playCmd.Flags().Float64Var(&toneFreq, "tone", 440, "test-tone frequency in Hz (0 for noise)")
	playCmd.Flags().Float64Var(&playFor, "time", 30, "seconds to play")

	liveCmd := &cobra.Command{
		Use:   "live [preset|config.yaml]",
		Short: "terminal dashboard with a live top-down scene view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := scenario.Load(args[0], seed)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.NewModel(inst)).Run()
			return err
		},
	}

	scene3dCmd := &cobra.Command{
		Use:   "scene3d [preset|config.yaml]",
		Short: "3D debug viewer of the scene and current paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := scenario.Load(args[0], seed)
			if err != nil {
				return err
			}
			scene3d.NewApp(inst).Run()
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset|config.yaml]",
		Short: "report propagation wall time across ray budgets",
		Args:  cobra.ExactArgs(1),
		RunE:  benchPreset,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "path-count and reverb stability report over a captured run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list captured runs",
		RunE:  listRuns,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a captured run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture.New(dataDir).ExportJSONStdout(args[0])
		},
	}

	automateCmd := &cobra.Command{
		Use:   "automate [scenario.yaml]",
		Short: "run a scripted multi-step regression scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  automate,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [preset|config.yaml]",
		Short: "grid-search material absorption and ray budget toward a target T60",
		Args:  cobra.ExactArgs(1),
		RunE:  tunePreset,
	}
	tuneCmd.Flags().Float64Var(&targetT60, "target-t60", 0.6, "target mid-band decay time in seconds")
	tuneCmd.Flags().IntVar(&tuneFrames, "frames", 30, "frames per candidate evaluation")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [preset|config.yaml] [out.svg]",
		Short: "render a top-down SVG of the scene and its discovered paths",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := scenario.Load(args[0], seed)
			if err != nil {
				return err
			}
			for f := 0; f < svgFrames; f++ {
				inst.Step()
			}
			svg := sceneexport.ToSVG(inst.Scene, inst.Sources, inst.Listener, inst.Buffer, 800, 800)
			return os.WriteFile(args[1], []byte(svg), 0644)
		},
	}
	exportSVGCmd.Flags().IntVar(&svgFrames, "frames", 60, "frames to run before exporting")

	meshInfoCmd := &cobra.Command{
		Use:   "mesh-info [file]",
		Short: "parse and print a binary mesh file's contents",
		Args:  cobra.ExactArgs(1),
		RunE:  meshInfo,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scene presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := scenario.List()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, playCmd, liveCmd, scene3dCmd, benchCmd, analyzeCmd,
		listCmd, exportJSONCmd, exportSVGCmd, automateCmd, tuneCmd, meshInfoCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func midBand() int {
	return acoustic.NewPartition(acoustic.DefaultSplits).BandIndex(1000)
}

func runPropagation(cmd *cobra.Command, args []string) error {
	inst, err := scenario.Load(args[0], seed)
	if err != nil {
		return err
	}

	fmt.Printf("running %s for %d frames...\n", inst.Config.Name, frames)
	start := time.Now()

	stability := analysis.NewPathCountStability()
	records := make([]capture.FrameRecord, 0, frames)
	mid := midBand()

	for f := 0; f < frames; f++ {
		inst.Step()
		stability.Observe(inst.Buffer.TotalPaths())

		rec := capture.FrameRecord{
			Frame:             f,
			PropagationMillis: float64(inst.Controller.LastFrameTime().Microseconds()) / 1000,
			ListenerRays:      int(inst.Controller.NumListenerRays),
			SourceRays:        int(inst.Controller.NumSourceRays),
		}
		for _, sb := range inst.Buffer.Sources {
			decay := sb.Reverb.DecayTime60(inst.Scene.SpeedOfSound)
			rec.Sources = append(rec.Sources, capture.SourceFrameRecord{
				SourceID:    sb.SourceID,
				PathCount:   len(sb.Paths),
				Volume:      sb.Reverb.Volume,
				SurfaceArea: sb.Reverb.SurfaceArea,
				DecayMid:    decay[mid],
			})
		}
		records = append(records, rec)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	last := records[len(records)-1]
	fmt.Printf("paths (final frame): %d\n", last.TotalPaths())
	fmt.Printf("path-count stability: %.3f\n", stability.Value())
	for _, src := range last.Sources {
		fmt.Printf("source %d: paths=%d volume=%.1f area=%.1f t60(1k)=%.2fs\n",
			src.SourceID, src.PathCount, src.Volume, src.SurfaceArea, src.DecayMid)
	}

	if doCapture {
		st := capture.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(inst.Config.Name, seed, inst.Config.Render.SampleRate,
			len(inst.Sources), records, map[string]float64{
				"path_stability": stability.Value(),
			})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func playLive(cmd *cobra.Command, args []string) error {
	inst, err := scenario.Load(args[0], seed)
	if err != nil {
		return err
	}

	sampleRate := inst.Config.Render.SampleRate
	partition := acoustic.NewPartition(acoustic.DefaultSplits)
	for _, src := range inst.Sources {
		if toneFreq > 0 {
			inst.Renderer.SetSourceInput(src.ID, audiodevice.NewToneInput(toneFreq, 0.25, sampleRate, partition))
		} else {
			inst.Renderer.SetSourceInput(src.ID, audiodevice.NewNoiseInput(0.25, seed+int64(src.ID)))
		}
	}

	channels := 2
	if inst.Config.Render.Speakers == "mono" {
		channels = 1
	}
	sink := audiodevice.NewSink(inst.Renderer)
	if err := sink.Start(channels, sampleRate, audiodevice.DefaultBufferSize); err != nil {
		return err
	}
	defer sink.Stop()

	fmt.Printf("playing %s (%.0fHz, %d channels); ctrl-c to stop\n", inst.Config.Name, sampleRate, channels)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	deadline := time.After(time.Duration(playFor * float64(time.Second)))
	tick := time.NewTicker(time.Second / 30)
	defer tick.Stop()

	for {
		select {
		case <-sig:
			return nil
		case <-deadline:
			return nil
		case <-tick.C:
			inst.Step()
		}
	}
}

func benchPreset(cmd *cobra.Command, args []string) error {
	inst, err := scenario.Load(args[0], seed)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "listener rays\tsource rays\tframe ms\tpaths")
	for _, rays := range []float64{50, 100, 200, 400, 800, 1600} {
		inst.Controller.NumListenerRays = rays
		inst.Controller.NumSourceRays = inst.Controller.SourceRatio * rays
		inst.Controller.MaxFrameTime = 0 // hold the budget fixed for the sweep

		const warmup, measured = 3, 10
		for i := 0; i < warmup; i++ {
			inst.Step()
		}
		total := time.Duration(0)
		for i := 0; i < measured; i++ {
			inst.Step()
			total += inst.Controller.LastFrameTime()
		}
		fmt.Fprintf(w, "%.0f\t%.0f\t%.3f\t%d\n", rays, inst.Controller.NumSourceRays,
			float64(total.Microseconds())/1000/measured, inst.Buffer.TotalPaths())
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := capture.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	fmt.Printf("run %s (%s, %d frames, %d sources)\n\n", meta.ID, meta.Scenario, meta.Frames, meta.NumSources)

	counts := make([]float64, len(records))
	stability := analysis.NewPathCountStability()
	drift := analysis.NewReverbDrift()
	for i, rec := range records {
		counts[i] = float64(rec.TotalPaths())
		stability.Observe(rec.TotalPaths())
		if len(rec.Sources) > 0 {
			var decay acoustic.Response
			decay[midBand()] = rec.Sources[0].DecayMid
			drift.Observe(decay)
		}
	}

	fmt.Println(asciigraph.Plot(counts, asciigraph.Height(8), asciigraph.Width(64), asciigraph.Caption("paths per frame")))
	fmt.Printf("\npath-count stability: %.3f\n", stability.Value())
	fmt.Printf("t60 drift (worst): %.1f%%\n", drift.Value()*100)

	last := records[len(records)-1]
	for _, src := range last.Sources {
		fmt.Printf("source %d: volume=%.1f area=%.1f t60(1k)=%.2fs\n",
			src.SourceID, src.Volume, src.SurfaceArea, src.DecayMid)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := capture.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no captured runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tscenario\tframes\tsources\twhen")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.ID, r.Scenario, r.Frames, r.NumSources, r.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func automate(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s: %s\n", sc.Name, sc.Description)

	results, err := automation.RunScenario(context.Background(), sc)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "step\tframes\tmean paths\tstability\tt60(1k)")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.3f\t%.2fs\n", r.Name, r.Frames, r.MeanPaths, r.Stability, r.DecayMid)
	}
	return w.Flush()
}

func tunePreset(cmd *cobra.Command, args []string) error {
	name := args[0]
	mid := midBand()

	evaluate := func(params map[string]float64) (float64, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			loaded, err := config.Load(name)
			if err != nil {
				return 0, err
			}
			cfg = loaded
		}
		for i := range cfg.Materials {
			cfg.Materials[i].Absorption = params["absorption"]
			cfg.Materials[i].Reflection = 1 - params["absorption"]
		}
		cfg.Engine.RayCount = int(params["rayCount"])

		inst, err := scenario.Build(cfg, seed)
		if err != nil {
			return 0, err
		}
		for f := 0; f < tuneFrames; f++ {
			inst.Step()
		}
		if len(inst.Buffer.Sources) == 0 {
			return 0, fmt.Errorf("no sources")
		}
		decay := inst.Buffer.Sources[0].Reverb.DecayTime60(inst.Scene.SpeedOfSound)
		diff := decay[mid] - targetT60
		if diff < 0 {
			diff = -diff
		}
		return diff, nil
	}

	search := optim.NewGridSearch(
		[]string{"absorption", "rayCount"},
		[][]float64{optim.Range(0.05, 0.6, 8), {256, 512, 1024}},
	)
	best, cost, err := search.Search(context.Background(), evaluate)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("tune: no candidate evaluated successfully")
	}
	fmt.Printf("best: absorption=%.3f rayCount=%.0f (t60 error %.3fs)\n",
		best["absorption"], best["rayCount"], cost)
	return nil
}

func meshInfo(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	mesh, err := meshio.Read(data)
	if err != nil {
		return err
	}
	fmt.Printf("vertices: %d\n", len(mesh.Vertices))
	fmt.Printf("triangles: %d\n", len(mesh.Triangles))
	fmt.Printf("materials: %d\n", len(mesh.Materials))
	fmt.Printf("bounds: center (%.2f, %.2f, %.2f) radius %.2f\n",
		mesh.Bounds.Center.X, mesh.Bounds.Center.Y, mesh.Bounds.Center.Z, mesh.Bounds.Radius)
	for i, m := range mesh.Materials {
		fmt.Printf("material %d (%s): reflection %.2f absorption %.2f transmission %.3f\n",
			i, m.Name,
			m.Reflection.AverageGain(0, acoustic.NumBands-1),
			m.Absorption.AverageGain(0, acoustic.NumBands-1),
			m.Transmission.AverageGain(0, acoustic.NumBands-1))
	}
	return nil
}
