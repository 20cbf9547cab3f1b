// rx3tool inspects RX3 containers and exports their models as glTF.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rx3kit/internal/config"
	"github.com/Faultbox/rx3kit/internal/logger"
	"github.com/Faultbox/rx3kit/pkg/rx3"
	"github.com/Faultbox/rx3kit/pkg/rx3model"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "export", "x":
		cmdExport(args)
	case "dump":
		cmdDump(args)
	case "repack":
		cmdRepack(args)
	case "games":
		cmdGames(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`rx3tool - RX3 container utility

Usage:
  rx3tool <command> [options]

Commands:
  info [-tree] <file.rx3>            Show container and model summary
  list <file.rx3>                    List chunks
  export [options] <file-or-dir>...  Export models as glTF
  dump [-depth n] <file.rx3>         Dump the decoded model
  repack <in.rx3> <out.rx3>          Rewrite a container with fresh offsets
  games                              List game ids with a layout policy
  config [-save]                     Print the effective config, or save it

Export options:
  -o dir          Output directory
  -format fmt     glb or gltf
  -game id        Game layout, e.g. fifa16pc
  -skeleton path  External skeleton container
  -r              Walk directories recursively
  -merge          Merge all inputs into one model
  -j n            Files exported in parallel

Global options:
  -config path    Config file
  -debug          Debug logging
  -log path       Also log to a rotating file

Examples:
  rx3tool info head_1234_0.rx3
  rx3tool export -o out -game fifa16pc -skeleton skeleton_ref.rx3 head_1234_0.rx3
  rx3tool export -r -j 8 -o out stadiums/`)
}

// setup parses args on fs, loads the config and starts logging.
func setup(fs *flag.FlagSet, args []string) *config.Config {
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(err)
	}
	return cfg
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	tree := fs.Bool("tree", false, "Print the object hierarchy")
	cfg := setup(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rx3tool info [-tree] <file.rx3>")
		os.Exit(1)
	}

	c, err := rx3.LoadFile(fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	endian := "little"
	if c.BigEndian {
		endian = "big"
	}
	fmt.Printf("Container: %s\n", fs.Arg(0))
	fmt.Printf("Endian:    %s\n", endian)
	fmt.Printf("Chunks:    %d\n", len(c.Chunks))
	fmt.Printf("Size:      %d bytes\n", c.TotalSize())
	fmt.Printf("Kind:      %s\n", rx3model.Classify(c))

	m, err := rx3model.Decode(c, fs.Arg(0), cfg.DecodeOptions(logger.Named("rx3model")))
	if err != nil {
		fatal(err)
	}
	s := m.Stats()
	fmt.Println()
	fmt.Printf("Objects:   %d (%d with meshes)\n", s.Objects, s.Meshes)
	fmt.Printf("Vertices:  %d\n", s.Vertices)
	fmt.Printf("Triangles: %d\n", s.Triangles)
	fmt.Printf("Materials: %d\n", s.Materials)
	fmt.Printf("Textures:  %d\n", s.Textures)
	fmt.Printf("Bones:     %d\n", s.Bones)

	if *tree && len(m.Objects) > 0 {
		fmt.Println()
		writeTree(os.Stdout, m)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	setup(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rx3tool list <file.rx3>")
		os.Exit(1)
	}

	c, err := rx3.LoadFile(fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	writeChunks(os.Stdout, c)

	names, err := rx3.ContainerNames(c)
	if err != nil {
		logger.Warn("name table unreadable", zap.Error(err))
		return
	}
	printNames("Meshes", names.Meshes)
	printNames("Textures", names.Textures)
	printNames("Locations", names.Locations)
	printNames("Bones", names.Bones)
}

func printNames(title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for i, n := range names {
		fmt.Printf("  %3d %s\n", i, n)
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	depth := fs.Int("depth", 3, "Maximum nesting depth (0 = unlimited)")
	cfg := setup(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rx3tool dump [-depth n] <file.rx3>")
		os.Exit(1)
	}

	m, err := rx3model.DecodeFile(fs.Arg(0), cfg.DecodeOptions(logger.Named("rx3model")))
	if err != nil {
		fatal(err)
	}

	dumper := spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                *depth,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	dumper.Fdump(os.Stdout, m)
}

func cmdRepack(args []string) {
	fs := flag.NewFlagSet("repack", flag.ExitOnError)
	setup(fs, args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: rx3tool repack <in.rx3> <out.rx3>")
		os.Exit(1)
	}

	c, err := rx3.LoadFile(fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	if err := c.SaveFile(fs.Arg(1)); err != nil {
		fatal(err)
	}
	fmt.Printf("Repacked: %s (%d chunks, %d bytes)\n", fs.Arg(1), len(c.Chunks), c.TotalSize())
}

func cmdGames(args []string) {
	fs := flag.NewFlagSet("games", flag.ExitOnError)
	cfg := setup(fs, args)
	writeGames(os.Stdout, cfg.Policies())
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Write the effective config to the user config directory")
	cfg := setup(fs, args)

	if *save {
		if err := cfg.Save(); err != nil {
			fatal(err)
		}
		fmt.Printf("Saved: %s\n", config.DefaultPath())
		return
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		fatal(err)
	}
	enc.Close()
}
