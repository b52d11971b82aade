package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/quidome/png-carver-go/pkg/carve"
	"github.com/quidome/png-carver-go/pkg/plans"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var errNoInput = errors.New("no input file given")

type options struct {
	verbose bool
	dryRun  bool
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "png-carver",
		Short:   "A CLI tool to carve embedded PNG images out of binary files",
		Long:    "PNG Carver scans arbitrary binary files (Affinity documents, app bundles, memory dumps) for embedded PNG signatures and extracts each candidate image to its own file.",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("PNG Carver CLI")
			cmd.Printf("Version: %s\n", version)
			if opts.verbose {
				cmd.Println("Verbose mode: enabled")
			}
			if opts.dryRun {
				cmd.Println("Dry run mode: enabled")
			}
			cmd.Println("")
			cmd.Println("Use --help to see available commands and options")
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "perform a dry run without making changes")

	rootCmd.AddCommand(newExtractCmd(opts))
	rootCmd.AddCommand(newRenameCmd(opts))

	return rootCmd
}

func newExtractCmd(opts *options) *cobra.Command {
	var outDir string
	var prompt bool

	extractCmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract embedded PNG images from a binary file",
		Long:  "Scan a binary file for PNG signatures and write every candidate image to the output directory, one file per match, named by the byte offset it was found at.\n\nThe input file is normally a required argument. With --prompt the filename is read from standard input instead; an empty response aborts.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, err := inputFile(cmd, args, prompt)
			if err != nil {
				return err
			}

			carveOpts := carve.DefaultOptions()
			carveOpts.OutputDir = outDir
			if opts.verbose {
				carveOpts.Logger = newLogger(cmd)
			}

			cmd.Printf("Scanning %s\n", filename)

			report, err := carve.Extract(filename, carveOpts)
			if err != nil {
				return err
			}

			cmd.Printf("File size: %s B (%s)\n", humanize.Comma(report.FileSize), humanize.IBytes(uint64(report.FileSize)))

			for i, m := range report.Matches {
				cmd.Printf("Found PNG signature #%d at offset %d\n", i+1, m.Offset)
				cmd.Printf("Wrote %s (%d bytes)\n", m.Path, m.Size)
			}

			if len(report.Matches) == 0 {
				cmd.Println("No PNG signatures found")
				return nil
			}

			cmd.Printf("Done: %d image(s) extracted to %s\n", len(report.Matches), outDir)
			return nil
		},
	}

	extractCmd.Flags().StringVar(&outDir, "out", carve.DefaultOptions().OutputDir, "directory extracted images are written to")
	extractCmd.Flags().BoolVar(&prompt, "prompt", false, "read the input filename from standard input when no argument is given")

	return extractCmd
}

// inputFile resolves the input path from the positional argument or, with
// --prompt, from standard input. An absent argument without --prompt is a
// usage error.
func inputFile(cmd *cobra.Command, args []string, prompt bool) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !prompt {
		return "", fmt.Errorf("%w: pass a file argument or use --prompt", errNoInput)
	}

	cmd.Print("Enter a filename to scan or press ENTER to abort: ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Scan()
	filename := strings.TrimSpace(scanner.Text())
	if filename == "" {
		return "", errNoInput
	}
	return filename, nil
}

func newRenameCmd(opts *options) *cobra.Command {
	renameCmd := &cobra.Command{
		Use:   "rename [directory]",
		Short: "Rename Markdown planning files by creation time",
		Long:  "Rename every .md file in a directory to <YYYY-MM-DD_HH:MM>-<name>.md, stripping any leading PLAN prefix. The timestamp is the file's best-effort creation time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			cmd.Printf("Processing files in %s...\n", dir)

			ops, err := plans.Plan(os.DirFS(dir), ".", plans.Options{})
			if err != nil {
				return err
			}

			for _, op := range ops {
				switch op.Action {
				case plans.ActionRename:
					cmd.Printf("Renaming: %s -> %s\n", op.Name, op.NewName)
				case plans.ActionSkip:
					cmd.Printf("Skipping: %s (already correct)\n", op.Name)
				}
			}

			if opts.dryRun {
				cmd.Println("Dry run: no files renamed")
				return nil
			}

			results, err := plans.Apply(dir, ops)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if !r.Success {
					failed++
					cmd.PrintErrf("failed: %s: %v\n", r.Operation.Name, r.Error)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d rename(s) failed", failed)
			}

			cmd.Println("Done.")
			return nil
		},
	}

	return renameCmd
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().Level(zerolog.DebugLevel)
}
