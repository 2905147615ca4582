// Package cli implements the line-oriented command surface: help, show,
// bpm, div, len, idx/vel/gate/oct/prob, on/off, play/stop, quit — dispatched
// with the same verb-switch shape cmd/miditest uses for its subcommands.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go-sequence-arp/config"
	"go-sequence-arp/engine"
	"go-sequence-arp/host"
)

// patternNames labels the four pattern slots for display, purely a
// presentation convenience over the same four indices.
var patternNames = [engine.PatternCount]string{"A", "B", "C", "D"}

// patternName returns the slot letter for i, or "?" if i is out of range.
func patternName(i int) string {
	if i < 0 || i >= len(patternNames) {
		return "?"
	}
	return patternNames[i]
}

// Run reads commands from in, one per line, writing responses to out,
// until "quit" or EOF. Every mutation is dispatched through m.Do so the
// engine is never touched from this goroutine directly.
func Run(m *host.Manager, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "go-sequence-arp ready, type 'help' for commands")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if dispatch(m, line, out) {
			return
		}
	}
}

// dispatch runs one command line and returns true if the REPL should stop.
func dispatch(m *host.Manager, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	verb := fields[0]
	args := fields[1:]

	switch verb {
	case "help":
		printHelp(out)
	case "quit", "exit":
		return true
	case "show":
		cmdShow(m, args, out)
	case "bpm":
		cmdBPM(m, args, out)
	case "div":
		cmdPatternIntSetter(m, args, out, "div", func(p *engine.PatternConfig, v int) { p.Division = v })
	case "len":
		cmdPatternIntSetter(m, args, out, "len", func(p *engine.PatternConfig, v int) { p.Length = v })
	case "idx":
		cmdStepIntSetter(m, args, out, "idx", func(s *engine.Step, v int) { s.NoteIndex = v })
	case "vel":
		cmdStepIntSetter(m, args, out, "vel", func(s *engine.Step, v int) { s.Velocity = v })
	case "gate":
		cmdStepIntSetter(m, args, out, "gate", func(s *engine.Step, v int) { s.GatePercent = v })
	case "oct":
		cmdStepIntSetter(m, args, out, "oct", func(s *engine.Step, v int) { s.Octave = v })
	case "prob":
		cmdStepIntSetter(m, args, out, "prob", func(s *engine.Step, v int) { s.Probability = v })
	case "on":
		cmdStepEnable(m, args, out, true)
	case "off":
		cmdStepEnable(m, args, out, false)
	case "play":
		m.SetPaused(false)
	case "stop":
		m.SetPaused(true)
	case "save":
		cmdSave(m, out)
	case "load":
		cmdLoad(m, out)
	default:
		fmt.Fprintf(out, "unknown command %q, type 'help' for commands\n", verb)
	}
	return false
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, strings.Join([]string{
		"help                         show this message",
		"show [pat]                   show engine status, or one pattern's steps",
		"bpm <value>                  set global tempo",
		"div <pat> <division>         set pattern's steps-per-quarter-note",
		"len <pat> <length>           set pattern's active step count",
		"idx  <pat> <step> <value>    set a step's chord index (0=rest, 1..8)",
		"vel  <pat> <step> <value>    set a step's velocity",
		"gate <pat> <step> <value>    set a step's gate percent",
		"oct  <pat> <step> <value>    set a step's octave shift",
		"prob <pat> <step> <value>    set a step's probability percent",
		"on   <pat> <step>            enable a step",
		"off  <pat> <step>            disable a step",
		"play                         resume the host tick loop",
		"stop                         pause the host tick loop",
		"save                         persist the running engine/pattern state to disk",
		"load                         reload engine/pattern state from disk",
		"quit                         exit",
		"",
	}, "\n"))
}

func cmdShow(m *host.Manager, args []string, out io.Writer) {
	if len(args) == 0 {
		var cfg engine.EngineConfig
		var chord []uint8
		var statuses [engine.PatternCount]engine.Status
		m.Do(func(e *engine.PatternEngine) {
			cfg = e.EngineConfig()
			chord = e.Chord()
			for i := 0; i < engine.PatternCount; i++ {
				statuses[i] = e.PatternStatus(i)
			}
		})
		fmt.Fprintf(out, "bpm=%.1f overlap=%dms chord=%v\n", cfg.BPM, cfg.OverlapMS, chord)
		for i, s := range statuses {
			fmt.Fprintf(out, "  pattern %d: %s  [%s]\n", i, s, patternName(i))
		}
		return
	}

	pat, err := parsePatternIndex(args[0])
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}

	var cfg engine.PatternConfig
	var state engine.PatternState
	var status engine.Status
	m.Do(func(e *engine.PatternEngine) {
		cfg = *e.Pattern(pat)
		state = e.PatternState(pat)
		status = e.PatternStatus(pat)
	})

	fmt.Fprintf(out, "pattern %d: %s channel=%d division=%d length=%d step=%d  [%s]\n",
		pat, status, cfg.Channel, cfg.Division, cfg.Length, state.StepPos, patternName(pat))
	length := cfg.Length
	if length <= 0 || length > engine.MaxPatternSteps {
		length = engine.MaxPatternSteps
	}
	for i := 0; i < length; i++ {
		s := cfg.Steps[i]
		fmt.Fprintf(out, "  step %2d: enabled=%-5v idx=%d vel=%3d gate=%3d%% oct=%+d prob=%3d%%\n",
			i, s.Enabled, s.NoteIndex, s.Velocity, s.GatePercent, s.Octave, s.Probability)
	}
}

// cmdSave captures the running engine's settings and writes them to disk.
func cmdSave(m *host.Manager, out io.Writer) {
	var cfg config.Config
	m.Do(func(e *engine.PatternEngine) { cfg.CaptureFrom(e) })
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(out, "save failed: %v\n", err)
		return
	}
	fmt.Fprintln(out, "saved")
}

// cmdLoad reads the persisted config from disk and applies it to the
// running engine, overwriting its current settings.
func cmdLoad(m *host.Manager, out io.Writer) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "load failed: %v\n", err)
		return
	}
	m.Do(func(e *engine.PatternEngine) { cfg.ApplyTo(e) })
	fmt.Fprintln(out, "loaded")
}

func cmdBPM(m *host.Manager, args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: bpm <value>")
		return
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintln(out, "bpm: not a number")
		return
	}
	m.Do(func(e *engine.PatternEngine) {
		cfg := e.EngineConfig()
		cfg.BPM = v
		e.SetEngineConfig(cfg)
	})
}

func cmdPatternIntSetter(m *host.Manager, args []string, out io.Writer, name string, set func(*engine.PatternConfig, int)) {
	if len(args) != 2 {
		fmt.Fprintf(out, "usage: %s <pat> <value>\n", name)
		return
	}
	pat, err := parsePatternIndex(args[0])
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(out, "%s: value must be an integer\n", name)
		return
	}
	m.Do(func(e *engine.PatternEngine) { set(e.Pattern(pat), v) })
}

func cmdStepIntSetter(m *host.Manager, args []string, out io.Writer, name string, set func(*engine.Step, int)) {
	if len(args) != 3 {
		fmt.Fprintf(out, "usage: %s <pat> <step> <value>\n", name)
		return
	}
	pat, err := parsePatternIndex(args[0])
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	step, err := parseStepIndex(args[1])
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	v, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(out, "%s: value must be an integer\n", name)
		return
	}
	m.Do(func(e *engine.PatternEngine) { set(&e.Pattern(pat).Steps[step], v) })
}

func cmdStepEnable(m *host.Manager, args []string, out io.Writer, enable bool) {
	if len(args) != 2 {
		verb := "on"
		if !enable {
			verb = "off"
		}
		fmt.Fprintf(out, "usage: %s <pat> <step>\n", verb)
		return
	}
	pat, err := parsePatternIndex(args[0])
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	step, err := parseStepIndex(args[1])
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	m.Do(func(e *engine.PatternEngine) { e.Pattern(pat).Steps[step].Enabled = enable })
}

// parsePatternIndex parses an integer and clamps it into 0..PatternCount-1:
// "all integer parameters; out-of-range values are clamped, not rejected."
// Only a non-integer argument is an error.
func parsePatternIndex(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("pattern index must be an integer")
	}
	return clampInt(v, 0, engine.PatternCount-1), nil
}

// parseStepIndex parses and clamps an integer into 0..MaxPatternSteps-1.
func parseStepIndex(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("step index must be an integer")
	}
	return clampInt(v, 0, engine.MaxPatternSteps-1), nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
