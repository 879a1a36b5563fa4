package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"adcpipe/config"
	"adcpipe/core"
	"adcpipe/host/monitor"
	"adcpipe/sim"

	"tinygo.org/x/drivers"
)

var (
	presetName = flag.String("preset", config.PresetTimerScan, "Configuration preset")
	configPath = flag.String("config", "", "JSON configuration (overrides -preset)")
	traceMode  = flag.String("trace", "", "Override trace mode: off, text or frame")
	source     = flag.String("source", "sine", "Simulated input: sine, counting or constant")
	speed      = flag.Float64("speed", 1, "Time scale; 10 runs ten periods per wall-clock period")
	duration   = flag.Duration("duration", 10*time.Second, "How long to run (0 = until interrupted)")
	deferEnd   = flag.Bool("defer", false, "Deliver completions after the trigger, as a late interrupt")
	verbose    = flag.Bool("verbose", false, "Print pipeline debug messages")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *traceMode != "" {
		cfg.Trace = *traceMode
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	core.SetDebugWriter(func(s string) { fmt.Println(s) })
	core.SetDebugEnabled(*verbose)

	src, err := pickSource(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	board := sim.NewBoard(sim.ADCOptions{Source: src, DeferCompletion: *deferEnd})
	board.Clock.LowFrequencyDelay = 4
	board.Clock.HighAccuracyDelay = 2

	counter := board.Timer
	if cfg.TimeBase == config.TimeBaseRTC {
		counter = board.RTC
	}

	pcfg, err := cfg.PipelineConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	channels, _ := cfg.CoreChannels()
	set, err := core.NewChannelSet(channels...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var ring core.TraceRing
	reading := core.NewLatestReading(set, cfg.VDD())
	pcfg.Consumer = core.Consumers{&ring, reading}
	pcfg.OnFatal = func(err error) {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(2)
	}

	pl, err := core.NewPipeline(pcfg, board.Peripherals(counter))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rate := pl.Rate()
	fmt.Printf("Pipeline: %d channels, %s trigger on %s, period %v (actual %v, %v)\n",
		set.Count(), pl.Trigger(), cfg.TimeBase, rate.Period, rate.Actual(), rate.Frequency())
	core.DebugPrintln(fmt.Sprintf("prescaler=%d ticks=%d capacity=%d double=%v high_accuracy=%v",
		rate.Prescaler, rate.Ticks, cfg.BufferCapacity, cfg.DoubleBuffer, cfg.HighAccuracy))

	writer, err := traceWriter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	interval := time.Duration(float64(rate.Actual()) / *speed)
	if interval <= 0 {
		interval = time.Millisecond
	}
	done := make(chan struct{})
	go func() {
		sim.Drive(ctx, counter, board.ADC, interval)
		close(done)
	}()

	flush := time.NewTicker(50 * time.Millisecond)
	defer flush.Stop()
	report := time.NewTicker(time.Second)
	defer report.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-flush.C:
			if writer != nil {
				if _, err := ring.Flush(writer); err != nil {
					fmt.Fprintf(os.Stderr, "Trace error: %v\n", err)
				}
			}
		case <-report.C:
			printReading(reading, set)
		}
	}
	<-done
	if writer != nil {
		ring.Flush(writer)
	}

	fmt.Println("\n=== Simulation summary ===")
	fmt.Printf("Triggers:        %d\n", counter.Ticks())
	fmt.Printf("Bursts:          %d\n", board.ADC.Bursts())
	fmt.Printf("Dropped bursts:  %d\n", board.ADC.Dropped()+uint64(pl.Engine().Dropped()))
	fmt.Printf("Completions:     %d\n", pl.Engine().EventCount())
	fmt.Printf("Trace dropped:   %d\n", ring.Dropped())
	if cfg.HighAccuracy {
		fmt.Printf("HFCLK cycles:    %d/%d\n", pl.Clock().Requests(), pl.Clock().Releases())
		fmt.Printf("Unclocked:       %d\n", board.ADC.Unclocked())
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}
		return config.LoadConfig(data)
	}
	return config.Preset(*presetName)
}

func pickSource(name string) (sim.Source, error) {
	switch name {
	case "sine":
		return sim.Sine(16), nil
	case "counting":
		return sim.Counting(), nil
	case "constant":
		return sim.Constant(512), nil
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

// traceWriter returns nil when tracing is off. Frame mode decodes its own
// frames through the host monitor, so the output is what adcmon would print
// for a real board.
func traceWriter(cfg *config.Config) (core.TraceWriter, error) {
	switch cfg.Trace {
	case config.TraceText:
		return core.NewTextTrace(func(s string) { fmt.Println(s) }), nil
	case config.TraceFrame:
		m, err := monitor.New(nil, monitor.Options{Config: cfg})
		if err != nil {
			return nil, err
		}
		return core.NewFrameTrace(&monitorSink{m: m}), nil
	}
	return nil, nil
}

type monitorSink struct {
	m *monitor.Monitor
}

func (s *monitorSink) Write(p []byte) (int, error) {
	s.m.Feed(p, func(ev monitor.Event) { fmt.Println(s.m.Format(ev)) })
	return len(p), nil
}

func printReading(r *core.LatestReading, set *core.ChannelSet) {
	if err := r.Update(drivers.Voltage); err != nil {
		return
	}
	fmt.Printf("latest #%d:", r.Sequence())
	for ch := 0; ch < set.Count(); ch++ {
		fmt.Printf(" %v=%v", set.Channel(ch).Input, r.Potential(ch))
	}
	fmt.Println()
}
