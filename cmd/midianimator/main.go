// Package main is the entry point for the midianimator CLI
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesa08/midianimator-go/pkg/api"
	"github.com/jamesa08/midianimator-go/pkg/appstate"
	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/graph/nodes"
	"github.com/jamesa08/midianimator-go/pkg/midi"
	"github.com/jamesa08/midianimator-go/pkg/transport"
	"github.com/jamesa08/midianimator-go/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	serverPort int
	realtime   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midianimator",
	Short: "Drive procedural 3D animation from MIDI",
	Long: `midianimator parses Standard MIDI Files, executes node graphs that
assign notes to scene objects, and synthesizes per-object keyframe
sequences sent to a connected 3D host.

Examples:
  midianimator parse pattern.mid
  midianimator serve --port 8080
  midianimator tui
  midianimator execute scene.mkproj`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var parseCmd = &cobra.Command{
	Use:   "parse <file.mid>",
	Short: "Parse a MIDI file and print its track and duration summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Transport listener and the HTTP API",
	RunE:  runServe,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	RunE:  runTUI,
}

var executeCmd = &cobra.Command{
	Use:   "execute <project.mkproj>",
	Short: "Load a project and run its node graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecute,
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "HTTP API port")
	executeCmd.Flags().BoolVar(&realtime, "realtime", false, "skip non-realtime nodes during execution")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(executeCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	parser := midi.NewParser()
	file, err := parser.Parse(data)
	if err != nil {
		return err
	}

	fmt.Println(nodes.MIDIFileStatistics(file.Tracks))
	for _, name := range file.TrackNames() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	store := appstate.NewStore()
	t := transport.NewServer()
	if err := t.Start(); err != nil {
		return fmt.Errorf("midianimator: start transport: %w", err)
	}

	fmt.Printf("Transport listening on 127.0.0.1:%d\n", transport.Port)
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.NewServer(store, t).Start(serverPort)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runExecute(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	store := appstate.NewStore()
	t := transport.NewServer()

	snap, err := store.LoadProject(f)
	if err != nil {
		return err
	}

	instance, err := graph.DecodeInstance(snap.RFInstance)
	if err != nil {
		return err
	}

	executor := graph.NewExecutor(nodes.DefaultRegistry(store, t))
	result, err := executor.ExecuteGraph(instance, realtime)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
