package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aidenlab/straw"
	"github.com/aidenlab/straw/hic"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	matrixType string
	workers    int
	progress   bool
	attributes bool
	cfg        config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "straw",
		Short: "Extract contact records from .hic files",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = loadConfig(configPath); err != nil {
				return err
			}
			if !cmd.Flags().Changed("matrix-type") {
				matrixType = cfg.MatrixType
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Workers
			}
			if verbose || cfg.Verbose {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with default settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	dumpCmd := &cobra.Command{
		Use:   "dump <NONE|VC|VC_SQRT|KR> <FILE> <CHR1>[:X1:X2] <CHR2>[:Y1:Y2] <BP|FRAG> <BINSIZE>",
		Short: "Print the contacts of a region as x, y, count lines",
		Args:  cobra.ExactArgs(6),
		RunE:  runDump,
	}
	dumpCmd.Flags().StringVarP(&matrixType, "matrix-type", "m", "observed", "observed, oe or expected")
	dumpCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent block decoders (0: one per CPU)")
	dumpCmd.Flags().BoolVar(&progress, "progress", false, "Show a progress bar while writing records")

	headerCmd := &cobra.Command{
		Use:   "header <FILE>",
		Short: "Print genome, chromosomes and resolutions",
		Args:  cobra.ExactArgs(1),
		RunE:  runHeader,
	}
	headerCmd.Flags().BoolVar(&attributes, "attributes", false, "Also print the attribute dictionary")

	footerCmd := &cobra.Command{
		Use:   "footer <FILE>",
		Short: "Print matrices, normalizations and expected value vectors",
		Args:  cobra.ExactArgs(1),
		RunE:  runFooter,
	}

	rootCmd.AddCommand(dumpCmd, headerCmd, footerCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	binSize, err := strconv.ParseInt(args[5], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid bin size %q", args[5])
	}
	h, err := straw.OpenURI(args[1], hic.Options{Workers: workers})
	if err != nil {
		return err
	}
	defer h.Close()

	positions, err := h.Query(hic.Request{
		Chr1Loc:    args[2],
		Chr2Loc:    args[3],
		Unit:       args[4],
		Resolution: int32(binSize),
		Norm:       args[0],
		MatrixType: matrixType,
	})
	if err != nil {
		return err
	}
	log.Debugf("%d records", len(positions))

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	var out io.Writer = w
	if progress {
		bar := progressbar.Default(int64(len(positions)), "writing")
		defer bar.Finish()
		for _, p := range positions {
			writePosition(out, p, cfg.Separator)
			bar.Add(1)
		}
		return nil
	}
	for _, p := range positions {
		writePosition(out, p, cfg.Separator)
	}
	return nil
}

func writePosition(w io.Writer, p hic.Position, sep string) {
	fmt.Fprintf(w, "%d%s%d%s%s\n", p.X, sep, p.Y, sep, strconv.FormatFloat(p.Value, 'g', -1, 64))
}

func runHeader(cmd *cobra.Command, args []string) error {
	h, err := straw.ReadHeader(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Version:\t%d\n", h.Version)
	fmt.Printf("Genome:\t%s\n", h.Genome)
	fmt.Printf("Master index:\t%s\n", humanize.Comma(h.MasterIndexPos))
	fmt.Printf("Chromosomes:\t%d\n", len(h.Chr))
	for i, c := range h.Chr {
		fmt.Printf("\t%d\t%s\t%s\n", i, c.Name, humanize.Comma(c.Length))
	}
	fmt.Printf("BP resolutions:\t%s\n", joinInt32(h.BpRes))
	fmt.Printf("FRAG resolutions:\t%s\n", joinInt32(h.FragRes))
	if attributes {
		keys := make([]string, 0, len(h.Attr))
		for k := range h.Attr {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("Attribute %s:\t%s\n", k, h.Attr[k])
		}
	}
	return nil
}

func runFooter(cmd *cobra.Command, args []string) error {
	h, err := straw.OpenURI(args[0], hic.Options{})
	if err != nil {
		return err
	}
	defer h.Close()
	f, err := h.Footer()
	if err != nil {
		return err
	}
	entries, err := h.Entrys()
	if err != nil {
		return err
	}
	writeFooter(os.Stdout, f, entries)
	return nil
}

func writeFooter(w io.Writer, f *hic.Footer, entries []string) {
	fmt.Fprint(w, f.String())
	fmt.Fprintf(w, "Normalizations:\t%s\n", strings.Join(f.NormTypeStrings(), ", "))
	fmt.Fprintf(w, "Matrices:\t%d\n", len(entries))
	for _, k := range entries {
		e := f.Entry[k]
		fmt.Fprintf(w, "\t%s\t%d\t%s\n", k, e.Position, humanize.Bytes(uint64(e.Size)))
	}
	keys := make([]string, 0, len(f.ExpectedValueMap))
	for k := range f.ExpectedValueMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "Expected value vectors:\t%d\n", len(keys))
	for _, k := range keys {
		e := f.ExpectedValueMap[k]
		fmt.Fprintf(w, "\t%s\t%s\t%s\t%d values\t%d chromosome factors\n",
			e.NormType(), e.Unit(), humanize.Comma(int64(e.BinSize())), e.Length(), len(e.NormFactors()))
	}
	fmt.Fprintf(w, "Normalization vectors:\t%d\n", len(f.NormVector))
}

func joinInt32(v []int32) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = humanize.Comma(int64(x))
	}
	return strings.Join(s, " ")
}
