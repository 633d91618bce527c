package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/scenario"
)

var playFlags struct {
	speed    string
	interval time.Duration
	auto     bool
	rows     int
	seed     int64
}

var playCmd = &cobra.Command{
	Use:   "play [scenario]",
	Short: "Animate a scenario step by step",
	Long: `play runs a walkthrough on the playback engine and renders each step as
it fires. On a terminal it drops into a transport prompt (play, pause,
next, back, goto, speed, reset, table, state, quit); with piped input it
reads the same commands line by line. --auto skips the prompt and plays
straight through.

--rows N plays a generated left join of N employees instead of a catalog
scenario, for exercising the transport at volume.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringVar(&playFlags.speed, "speed", "", "Playback speed (slow, normal, fast)")
	playCmd.Flags().DurationVar(&playFlags.interval, "interval", 0, "Base step interval, scaled by speed (e.g. 750ms)")
	playCmd.Flags().BoolVar(&playFlags.auto, "auto", false, "Play straight through without the prompt")
	playCmd.Flags().IntVar(&playFlags.rows, "rows", 0, "Play a generated walkthrough over N employees")
	playCmd.Flags().Int64Var(&playFlags.seed, "seed", 1, "Seed for --rows generation")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	var w *scenario.Walkthrough
	switch {
	case playFlags.rows > 0:
		w, err = scenario.Volume(playFlags.rows, playFlags.seed)
	case len(args) == 1:
		w, err = scenario.Build(args[0])
	default:
		return fmt.Errorf("name a scenario or pass --rows (run list for the catalog)")
	}
	if err != nil {
		return err
	}

	total := len(w.Steps)
	eng, err := playback.NewEngine(w.Steps,
		playback.WithBaseInterval(cfg.interval),
		playback.WithSpeed(cfg.speed),
		playback.WithOnStep(func(st playback.State, step playback.Step) {
			renderStep(os.Stdout, w.SQL, total, st, step)
		}),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Println(w.Title)
	renderStep(os.Stdout, w.SQL, total, eng.State(), eng.CurrentStep())

	if playFlags.auto {
		return playAuto(eng)
	}
	if stdinIsTerminal() {
		return playInteractive(eng, w)
	}
	return playScripted(eng, w)
}

// playAuto plays through to completion with no transport input.
func playAuto(eng *playback.Engine) error {
	if eng.StepCount() < 2 {
		return nil
	}
	eng.Play()
	waitForStop(eng)
	return nil
}

// playInteractive is the terminal transport: a line-edited prompt with
// history, feeding the shared command set.
func playInteractive(eng *playback.Engine, w *scenario.Walkthrough) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("\nTransport ready. Type help for commands.")
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("bye")
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := runTransportCommand(eng, w, input)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if quit {
			return nil
		}
	}
}

// playScripted reads transport commands from piped stdin, one per line.
func playScripted(eng *playback.Engine, w *scenario.Walkthrough) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		quit, err := runTransportCommand(eng, w, input)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// runTransportCommand executes one transport command against the engine,
// reporting whether the session should end.
func runTransportCommand(eng *playback.Engine, w *scenario.Walkthrough, input string) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "play", "p":
		eng.Play()
	case "pause":
		eng.Pause()
	case "next", "n":
		if st := eng.State(); st.StepIndex+1 < eng.StepCount() {
			return false, eng.GoToStep(st.StepIndex + 1)
		}
	case "back", "b":
		if st := eng.State(); st.StepIndex > 0 {
			return false, eng.GoToStep(st.StepIndex - 1)
		}
	case "goto":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: goto <step>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("goto: %w", err)
		}
		return false, eng.GoToStep(n)
	case "speed":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: speed slow|normal|fast")
		}
		s, err := playback.ParseSpeed(fields[1])
		if err != nil {
			return false, err
		}
		return false, eng.SetSpeed(s)
	case "reset":
		eng.Reset()
	case "wait":
		waitForStop(eng)
	case "table":
		renderTable(os.Stdout, w.Columns, w.Rows)
	case "state":
		st := eng.State()
		fmt.Printf("step %d/%d, %s, speed x%.1f\n", st.StepIndex+1, eng.StepCount(), st.Phase, st.SpeedMultiplier)
	case "help", "h":
		printTransportHelp()
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return false, nil
}

// waitForStop blocks until the engine stops playing, which during a scripted
// or auto run means it reached the final step.
func waitForStop(eng *playback.Engine) {
	for eng.State().Playing {
		time.Sleep(10 * time.Millisecond)
	}
}

func printTransportHelp() {
	fmt.Println(`play        start automatic stepping
pause       hold the current step
next, back  move one step manually
goto <n>    jump to step n (0-based)
speed <s>   slow, normal or fast; applies from the next tick
reset       back to the first step
wait        block until playback stops
table       print the full result table
state       print the transport state
quit        leave the walkthrough`)
}

func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
