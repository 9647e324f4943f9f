// Command dedupebench drives the rabin dedup engine over a single input
// file and reports how well it compressed, the way a small standalone
// driver program around cmd/restic's own command tree would: one root
// command, cobra flags, go.uber.org/automaxprocs set before anything else
// runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dedupe-engine/rabin"
	"github.com/dedupe-engine/rabin/internal/debug"
	"github.com/dedupe-engine/rabin/internal/errors"
)

func init() {
	// don't import go.uber.org/automaxprocs to disable the log output
	_, _ = maxprocs.Set()
}

var opts struct {
	blkSz  int
	fixed  bool
	delta  string
	decode bool
}

var cmdRoot = &cobra.Command{
	Use:   "dedupebench [flags] file",
	Short: "Compress or decompress a file through the rabin dedup engine",

	SilenceErrors: true,
	SilenceUsage:  true,

	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	flags := cmdRoot.Flags()
	flags.IntVar(&opts.blkSz, "blksz", 3, "block-size level, 1-5")
	flags.BoolVar(&opts.fixed, "fixed", false, "use fixed-size blocks instead of content-defined chunking")
	flags.StringVar(&opts.delta, "delta", "normal", "similarity detection: off, normal, extra")
	flags.BoolVar(&opts.decode, "decode", false, "treat file as a dedupe stream and decode it instead of compressing")
}

func deltaMode(s string) (rabin.DeltaMode, error) {
	switch s {
	case "off":
		return rabin.DeltaOff, nil
	case "normal":
		return rabin.DeltaNormal, nil
	case "extra":
		return rabin.DeltaExtra, nil
	default:
		return rabin.DeltaOff, errors.Errorf("unknown --delta value %q", s)
	}
}

func run(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	chunkSize := uint64(len(buf))
	if chunkSize < 4096 {
		chunkSize = 4096
	}

	delta, err := deltaMode(opts.delta)
	if err != nil {
		return err
	}

	ctx, err := rabin.CreateContext(chunkSize, rabin.Params{
		BlkSz: opts.blkSz,
		Fixed: opts.fixed,
		Delta: delta,
	})
	if err != nil {
		return errors.Wrap(err, "creating dedupe context")
	}

	if opts.decode {
		out, err := ctx.Decompress(buf)
		if err != nil {
			return errors.Wrap(err, "decompressing")
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	out, ok, err := ctx.Compress(buf)
	if err != nil {
		return errors.Wrap(err, "compressing")
	}
	if !ok {
		debug.Log("dedupebench: %s did not clear break-even, nothing to report", path)
		fmt.Fprintf(os.Stderr, "%s: deduplication did not break even, input left untouched\n", path)
		return nil
	}

	fmt.Fprintf(os.Stderr, "%s: %d -> %d bytes (%.1f%%)\n", path, len(buf), len(out), 100*float64(len(out))/float64(len(buf)))
	_, err = os.Stdout.Write(out)
	return err
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
