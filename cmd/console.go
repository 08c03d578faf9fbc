package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slim-sim/slim-sim/eidos"
	"github.com/slim-sim/slim-sim/sim"
)

const (
	consolePrompt  = "slim> "
	historyFile    = ".slim_sim_history"
	consoleHelpMsg = `Commands:
  step [n]                        run n generations (default 1)
  run                             run to the end of the recipe
  gen                             show the current generation
  subpops                         list subpopulations
  stats                           show the last generation's statistics
  output                          show the output accumulated so far
  str <target>                    describe a target
  properties <target>             list a target's properties
  methods <target>                list a target's methods
  get <target> <property>         read a property
  set <target> <property> <value> write a read-write property
  quit                            leave the console
Targets: p1 (subpopulation), m1 (mutation type), p1:i3 (individual),
p1:g6 (genome), mut12 (segregating mutation by id).`
)

// consoleCmd steps through one simulation interactively
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Step through a simulation and inspect its objects interactively",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := loadRecipe(cmd)
		if err != nil {
			logrus.Fatalf("Unable to load recipe: %v", err)
		}
		s, err := sim.NewSimulation(cfg)
		if err != nil {
			logrus.Fatalf("Unable to build simulation: %v", err)
		}
		runConsole(newConsole(s, os.Stdout))
	},
}

// console executes line commands against one simulation.
type console struct {
	s   *sim.Simulation
	out io.Writer
}

func newConsole(s *sim.Simulation, out io.Writer) *console {
	return &console{s: s, out: out}
}

var errQuit = errors.New("quit")

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func runConsole(c *console) {
	initDisplay()
	pterm.Info.Println("slim-sim console; type help for commands, quit or <ctrl>D to leave")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(consolePrompt)
		if err != nil {
			// io.EOF or liner.ErrPromptAborted
			fmt.Fprintln(c.out)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		err = c.exec(line)
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			pterm.Error.Println(err.Error())
		}
	}
}

// exec runs one command line.
func (c *console) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(c.out, consoleHelpMsg)
		return nil
	case "step":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return fmt.Errorf("step: %q is not a positive count", args[0])
			}
			n = v
		}
		return c.step(n)
	case "run":
		return c.step(-1)
	case "gen":
		fmt.Fprintf(c.out, "generation %d\n", c.s.Generation())
		return nil
	case "subpops":
		for _, sp := range c.s.Population().Subpopulations() {
			fmt.Fprintf(c.out, "p%d %d\n", sp.ID, sp.ParentSize())
		}
		return nil
	case "stats":
		gs, ok := c.s.Metrics().Last()
		if !ok {
			fmt.Fprintln(c.out, "no generation has run yet")
			return nil
		}
		fmt.Fprintf(c.out, "gen %d: individuals=%d segregating=%d substitutions=%d mean_w=%.4f diversity=%.4f\n",
			gs.Generation, gs.Individuals, gs.Segregating, gs.Substitutions, gs.MeanFitness, gs.Diversity)
		return nil
	case "output":
		_, err := c.out.Write(c.s.Output().Bytes())
		return err
	case "str", "properties", "methods":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <target>", cmd)
		}
		target, err := c.resolve(args[0])
		if err != nil {
			return err
		}
		method := map[string]string{"str": "str", "properties": "property", "methods": "method"}[cmd]
		ctx := &eidos.ExecContext{Output: c.out, Host: c.s}
		_, err = eidos.ExecuteMethod(target, eidos.GlobalStringID(method), nil, ctx)
		return err
	case "get":
		if len(args) != 2 {
			return errors.New("usage: get <target> <property>")
		}
		target, err := c.resolve(args[0])
		if err != nil {
			return err
		}
		v, err := eidos.GetValueForMember(target, eidos.GlobalStringID(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, eidos.ToString(v))
		return nil
	case "set":
		if len(args) != 3 {
			return errors.New("usage: set <target> <property> <value>")
		}
		target, err := c.resolve(args[0])
		if err != nil {
			return err
		}
		return eidos.SetValueForMember(target, eidos.GlobalStringID(args[1]), parseLiteral(args[2]))
	}
	return fmt.Errorf("unknown command %q; type help", cmd)
}

// step runs n generations, or to the end when n < 0.
func (c *console) step(n int) error {
	for i := 0; n < 0 || i < n; i++ {
		more, err := c.s.RunOneGeneration()
		if err != nil {
			return err
		}
		if !more {
			fmt.Fprintf(c.out, "simulation finished at generation %d\n", c.s.Generation()-1)
			return nil
		}
	}
	fmt.Fprintf(c.out, "generation %d\n", c.s.Generation())
	return nil
}

// resolve maps a target name to an element of the simulation.
func (c *console) resolve(name string) (eidos.ObjectElement, error) {
	pop := c.s.Population()
	switch {
	case strings.HasPrefix(name, "mut"):
		id, err := strconv.ParseInt(name[3:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad mutation id in %q", name)
		}
		for _, m := range pop.MutationRegistry() {
			if m.ID == id {
				return m, nil
			}
		}
		return nil, fmt.Errorf("no segregating mutation %d", id)
	case strings.HasPrefix(name, "m"):
		id, err := strconv.ParseInt(name[1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad mutation type in %q", name)
		}
		if mt := c.s.MutationType(id); mt != nil {
			return mt, nil
		}
		return nil, fmt.Errorf("mutation type m%d not defined", id)
	case strings.HasPrefix(name, "p"):
		spName, member, hasMember := strings.Cut(name, ":")
		id, err := strconv.ParseInt(spName[1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad subpopulation in %q", name)
		}
		sp := pop.Subpopulation(id)
		if sp == nil {
			return nil, fmt.Errorf("subpopulation p%d not defined", id)
		}
		if !hasMember {
			return sp, nil
		}
		if len(member) < 2 {
			return nil, fmt.Errorf("bad member in %q", name)
		}
		idx, err := strconv.Atoi(member[1:])
		if err != nil {
			return nil, fmt.Errorf("bad index in %q", name)
		}
		switch member[0] {
		case 'i':
			if idx < 0 || idx >= len(sp.Individuals()) {
				return nil, fmt.Errorf("p%d has no individual %d", id, idx)
			}
			return sp.Individuals()[idx], nil
		case 'g':
			if idx < 0 || idx >= len(sp.Genomes()) {
				return nil, fmt.Errorf("p%d has no genome %d", id, idx)
			}
			return sp.Genomes()[idx], nil
		}
		return nil, fmt.Errorf("bad member in %q", name)
	}
	return nil, fmt.Errorf("unknown target %q", name)
}

// parseLiteral reads an integer, a float, T/F, or else a string.
func parseLiteral(s string) eidos.Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return eidos.NewIntSingleton(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return eidos.NewFloatSingleton(f)
	}
	switch s {
	case "T":
		return eidos.NewLogical(true)
	case "F":
		return eidos.NewLogical(false)
	}
	return eidos.NewString(strings.Trim(s, `"`))
}
