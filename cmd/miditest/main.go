// Command miditest is a small diagnostic tool for probing MIDI ports and
// sending a test note, independent of the arpeggiator engine.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "note":
		sendTestNote(os.Args[2:])
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list              - List all MIDI ports")
	fmt.Println("  note <port> <n>   - Send a 200ms test note to the named output port")
	fmt.Println("  poll              - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! the MIDI driver is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func sendTestNote(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: miditest note <port name substring> <note 0-127>")
		return
	}
	portSubstr := strings.ToLower(args[0])
	note, err := strconv.Atoi(args[1])
	if err != nil || note < 0 || note > 127 {
		fmt.Println("note must be an integer 0-127")
		return
	}

	outs := midi.GetOutPorts()
	var outPort drivers.Out
	for _, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), portSubstr) {
			outPort = p
			break
		}
	}
	if outPort == nil {
		fmt.Printf("no output port matching %q\n", args[0])
		return
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("error opening port: %v\n", err)
		return
	}

	fmt.Printf("sending note %d to %s\n", note, outPort.String())
	send(midi.NoteOn(0, uint8(note), 100))
	time.Sleep(200 * time.Millisecond)
	send(midi.NoteOff(0, uint8(note)))
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)
			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
