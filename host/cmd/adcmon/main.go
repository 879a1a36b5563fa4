package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"adcpipe/config"
	"adcpipe/host/monitor"
	"adcpipe/host/mqtt"
	"adcpipe/host/serial"
	"adcpipe/protocol"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", serial.DefaultBaud, "Baud rate of the trace UART")
	configPath = flag.String("config", "", "JSON configuration the board was built with")
	preset     = flag.String("preset", "", "Preset the board was built with (low_power, timer_scan, rtc_single)")
	quiet      = flag.Bool("quiet", false, "Only report gaps and the final summary")
	mqttServer = flag.String("mqtt", "", "Forward bursts to this MQTT broker (e.g. "+mqtt.DefaultServer+")")
	mqttTopic  = flag.String("mqtt-topic", mqtt.DefaultTopic, "MQTT topic for burst messages")
	mqttClient = flag.String("mqtt-client", mqtt.DefaultClientID, "MQTT client ID")
	mqttUser   = flag.String("mqtt-user", "", "MQTT username")
	mqttPass   = flag.String("mqtt-pass", "", "MQTT password")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	scfg := serial.DefaultConfig(*device)
	scfg.Baud = *baud
	fmt.Printf("Opening %s at %d baud (trace format v%s)...\n", *device, *baud, protocol.Version)
	port, err := serial.Open(scfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	if err := port.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: flush failed: %v\n", err)
	}

	m, err := monitor.New(port, monitor.Options{Config: cfg, Follow: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var pub *mqtt.Publisher
	if *mqttServer != "" {
		pub, err = mqtt.Connect(mqtt.Config{
			Server:   *mqttServer,
			ClientID: *mqttClient,
			Topic:    *mqttTopic,
			Username: *mqttUser,
			Password: *mqttPass,
		}, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer pub.Close()
		fmt.Printf("Publishing bursts to %s on %s\n", *mqttServer, *mqttTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = m.Run(ctx, func(ev monitor.Event) {
		if pub != nil {
			if err := pub.Publish(ev); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: publish #%d failed: %v\n", ev.Frame.Sequence, err)
			}
		}
		if *quiet && ev.Missed == 0 {
			return
		}
		fmt.Println(m.Format(ev))
	})
	printStats(m.Stats())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	switch {
	case *configPath != "" && *preset != "":
		return nil, fmt.Errorf("-config and -preset are mutually exclusive")
	case *configPath != "":
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}
		return config.LoadConfig(data)
	case *preset != "":
		return config.Preset(*preset)
	}
	return nil, nil
}

func printStats(st monitor.Stats) {
	fmt.Println("\n=== Trace summary ===")
	fmt.Printf("Frames:    %d\n", st.Frames)
	fmt.Printf("Gaps:      %d (%d completions missed)\n", st.Gaps, st.Missed)
	fmt.Printf("Truncated: %d\n", st.Truncated)
	fmt.Printf("Corrupt:   %d\n", st.Errors)
}
