//go:build nrf52 || nrf52840

package main

import (
	"device/arm"
	"machine"
	"time"

	"adcpipe/config"
	"adcpipe/core"
)

// preset selects the compiled-in configuration. Override at build time:
//
//	tinygo flash -target=pca10040 -ldflags="-X main.preset=timer_scan" ./targets/nrf52
var preset = config.PresetLowPower

var (
	ring    core.TraceRing
	reading *core.LatestReading
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200})
	core.SetDebugWriter(writeLine)
	core.SetDebugEnabled(true)

	cfg, err := config.Preset(preset)
	if err != nil {
		halt(err)
	}
	pcfg, err := cfg.PipelineConfig()
	if err != nil {
		halt(err)
	}

	channels, err := core.NewChannelSet(pcfg.Channels...)
	if err != nil {
		halt(err)
	}
	reading = core.NewLatestReading(channels, cfg.VDD())

	pcfg.Consumer = core.Consumers{&ring, reading}
	pcfg.Indicator = newLED(completionLEDPin)
	pcfg.TriggerIndicator = newLED(triggerLEDPin)
	pcfg.OnFatal = halt

	periph := core.Peripherals{
		Clock:    nrfClockDriver{},
		TimeBase: &rtc,
		Router:   &nrfRouterDriver{},
		ADC:      &saadc,
	}
	if cfg.TimeBase == config.TimeBaseTimer {
		periph.TimeBase = &timer
	}

	core.DebugPrintln("adcpipe: starting " + preset)
	pl, err := core.NewPipeline(pcfg, periph)
	if err != nil {
		halt(err)
	}
	core.DebugPrintln("adcpipe: " + pl.Trigger().String() + " trigger, period " + pl.Rate().Actual().String())

	var writer core.TraceWriter
	switch cfg.Trace {
	case config.TraceText:
		writer = core.NewTextTrace(writeLine)
	case config.TraceFrame:
		// Frames share the UART with text; stop text so the host
		// monitor only sees frames.
		core.SetDebugEnabled(false)
		writer = core.NewFrameTrace(machine.Serial)
	}

	for {
		if writer != nil {
			ring.Flush(writer)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func writeLine(s string) {
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte("\r\n"))
}

// halt reports err once and parks the CPU. Used for initialization errors
// and as the pipeline's fatal handler.
func halt(err error) {
	println("adcpipe: fatal:", err.Error())
	for {
		arm.Asm("wfi")
	}
}
