// Command arpctl is the host loop: it wires a loaded config into a
// PatternEngine, starts the ~1ms poll goroutine, the keyboard hot-plug
// scanner, and runs either the terminal UI or the line REPL against the
// same engine instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-sequence-arp/cli"
	"go-sequence-arp/config"
	"go-sequence-arp/debug"
	"go-sequence-arp/engine"
	"go-sequence-arp/host"
	arpmidi "go-sequence-arp/midi"
	"go-sequence-arp/theme"
	"go-sequence-arp/tui"
)

func main() {
	uiFlag := flag.String("ui", "tui", "front-end to run: tui or cli")
	outFlag := flag.String("out", "", "substring of the MIDI output port name to send to")
	debugFlag := flag.Bool("debug", false, "write ~/.config/go-sequence-arp/debug.log")
	flag.Parse()

	if *debugFlag {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not enable debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	sink, portName := openSink(*outFlag, cfg)
	clock := arpmidi.NewRealClock()

	e := engine.NewPatternEngine(sink, clock)
	cfg.ApplyTo(e)

	deviceMgr := arpmidi.NewDeviceManager()
	manager := host.NewManager(e, deviceMgr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	fmt.Println("go-sequence-arp")
	if portName != "" {
		fmt.Printf("sending to output port: %s\n", portName)
	} else {
		fmt.Println("no output port matched -out; notes will not reach a synth")
	}
	fmt.Println("connect a MIDI keyboard any time, it will be detected automatically")
	fmt.Println()

	switch strings.ToLower(*uiFlag) {
	case "cli":
		cli.Run(manager, os.Stdin, os.Stdout)
	default:
		th := theme.New(theme.DefaultPalette())
		m := tui.NewModel(manager, th)
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := manager.SaveConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save config: %v\n", err)
	}
}

// openSink finds an output port matching substr (falling back to the
// config's saved port name), opens a PortSink against it, and returns a
// no-op sink if nothing matches — the core treats its sink as infallible,
// so running with no synth attached is a valid, silent mode.
func openSink(substr string, cfg *config.Config) (engine.Sink, string) {
	if substr == "" {
		substr = cfg.Output.PortName
	}
	if substr == "" {
		return noopSink{}, ""
	}

	needle := strings.ToLower(substr)
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			sink, err := arpmidi.NewPortSink(p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not open %s: %v\n", p.String(), err)
				return noopSink{}, ""
			}
			return sink, p.String()
		}
	}
	return noopSink{}, ""
}

type noopSink struct{}

func (noopSink) Send(status, data1, data2 byte, tMS uint64) {}
