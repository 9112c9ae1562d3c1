// Package main is the entry point for the ym2151tone CLI
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/james-see/ym2151tone/pkg/api"
	"github.com/james-see/ym2151tone/pkg/config"
	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/debug"
	"github.com/james-see/ym2151tone/pkg/pitch"
	"github.com/james-see/ym2151tone/pkg/playback"
	"github.com/james-see/ym2151tone/pkg/store"
	"github.com/james-see/ym2151tone/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile   string
	configFile   string
	debugEnabled bool
	debugFile    string
	pipePath     string
	cents        int
	serverPort   int
	playTimeout  time.Duration
	cfg          *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ym2151tone",
	Short: "Edit and convert YM2151 FM tones",
	Long: `ym2151tone edits a single YM2151 voice as a parameter grid and converts it
between register hex strings, JSON register logs and tone template files.

Examples:
  ym2151tone edit
  ym2151tone convert tone.hex -o tone.json
  ym2151tone hex2json tone.hex
  ym2151tone json2hex tone.json -o tone.hex
  ym2151tone pitch 60
  ym2151tone kc 3E
  ym2151tone play tones/piano.json
  ym2151tone serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: setup,
}

var editCmd = &cobra.Command{
	Use:     "edit",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive grid editor",
	RunE:    runEdit,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long: `Automatically detects the input format and converts to the output format based on
file extension (.hex/.reg/.txt, .json, .tone.json, .mid).`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var hex2jsonCmd = &cobra.Command{
	Use:   "hex2json <input.hex>",
	Short: "Convert a register hex string to a JSON log",
	Args:  cobra.ExactArgs(1),
	RunE:  runHexToJSON,
}

var json2hexCmd = &cobra.Command{
	Use:   "json2hex <input.json>",
	Short: "Convert a JSON log to a register hex string",
	Args:  cobra.ExactArgs(1),
	RunE:  runJSONToHex,
}

var pitchCmd = &cobra.Command{
	Use:   "pitch <note>",
	Short: "Show the key code for a MIDI note",
	Args:  cobra.ExactArgs(1),
	RunE:  runPitch,
}

var kcCmd = &cobra.Command{
	Use:   "kc <hex>",
	Short: "Show the nearest MIDI note for a key code",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyCode,
}

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Send a tone to the playback server",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default config file",
	Args:  cobra.NoArgs,
	RunE:  runInitConfig,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ~/.config/ym2151tone/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "Write a debug log")
	rootCmd.PersistentFlags().StringVar(&debugFile, "debug-file", "", "Debug log path (default ~/.config/ym2151tone/debug.log)")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	// hex2json command
	hex2jsonCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .json file path")

	// json2hex command
	json2hexCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .hex file path")

	// pitch command
	pitchCmd.Flags().IntVar(&cents, "cents", 0, "Fine tune in cents")

	// play command
	playCmd.Flags().StringVar(&pipePath, "pipe", "", "Playback pipe (default from config)")
	playCmd.Flags().DurationVar(&playTimeout, "timeout", 5*time.Second, "Give up if the server does not read in time")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(hex2jsonCmd)
	rootCmd.AddCommand(json2hexCmd)
	rootCmd.AddCommand(pitchCmd)
	rootCmd.AddCommand(kcCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if debugEnabled {
		if err := debug.Enable(debugFile); err != nil {
			return fmt.Errorf("failed to enable debug log: %w", err)
		}
	}

	var err error
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runEdit(cmd *cobra.Command, args []string) error {
	return tui.Run(cfg)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := converter.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runHexToJSON(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".json")

	log, err := converter.ParseHexFile(input)
	if err != nil {
		return err
	}
	if err := converter.WriteJSONFile(log, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s (%d events)\n", input, output, len(log))
	return nil
}

func runJSONToHex(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".hex")

	log, err := converter.ParseJSONFile(input)
	if err != nil {
		return err
	}
	if err := converter.WriteHexFile(log, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s (%d events)\n", input, output, len(log))
	return nil
}

func runPitch(cmd *cobra.Command, args []string) error {
	note, err := strconv.Atoi(args[0])
	if err != nil || note < 0 || note > 127 {
		return fmt.Errorf("note must be 0-127, got %q", args[0])
	}

	kc, kf := pitch.MIDIToKCKFCents(uint8(note), cents)
	fmt.Printf("%d (%s): KC=0x%02X KF=0x%02X\n", note, pitch.NoteName(uint8(note)), kc, kf)
	if !pitch.IsExact(uint8(note)) {
		fmt.Printf("note is outside %d-%d and will not decode back exactly\n", pitch.MinExactNote, pitch.MaxExactNote)
	}
	return nil
}

func runKeyCode(cmd *cobra.Command, args []string) error {
	raw := strings.TrimPrefix(strings.ToLower(args[0]), "0x")
	kc, err := strconv.ParseUint(raw, 16, 8)
	if err != nil {
		return fmt.Errorf("key code must be one hex byte, got %q", args[0])
	}

	note := pitch.KCToMIDINote(uint8(kc))
	fmt.Printf("KC=0x%02X: %d (%s)\n", kc, note, pitch.NoteName(note))
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	g, err := store.New(filepath.Dir(args[0])).Load(args[0])
	if err != nil {
		return err
	}

	path := cfg.PlaybackPipe
	if pipePath != "" {
		path = pipePath
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), playTimeout)
	defer cancel()

	player := playback.NewPlayer(playback.NewPipeSender(path))
	if err := player.PlaySync(ctx, g); err != nil {
		return fmt.Errorf("failed to play %s: %w", args[0], err)
	}
	fmt.Printf("Sent %s to %s\n", args[0], path)
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", serverPort)
	return api.StartServer(serverPort)
}
