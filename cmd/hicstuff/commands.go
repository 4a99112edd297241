package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/internal/console"
	"github.com/nmendiboure/hicstuff/pkg/digest"
	"github.com/nmendiboure/hicstuff/pkg/fasta"
	"github.com/nmendiboure/hicstuff/pkg/filter"
	"github.com/nmendiboure/hicstuff/pkg/iteralign"
	"github.com/nmendiboure/hicstuff/pkg/matrix"
	"github.com/nmendiboure/hicstuff/pkg/pairs"
	"github.com/nmendiboure/hicstuff/pkg/render"
)

const (
	defaultScaffoldThreshold = 1000000
	defaultReorderThreshold  = 100000
)

func runDigest(a *app, args []string) error {
	fs := a.newFlagSet("digest", "--enzyme ENZ [--size INT] [--outdir DIR] [--graph FILE] <fasta>")

	var (
		enzyme, outDir, graph string
		minSize               int
	)

	fs.StringVar(&enzyme, "enzyme", "", "restriction enzyme(s), comma separated, or a chunk size in bp")
	fs.StringVar(&enzyme, "e", "", "shorthand for --enzyme")
	fs.IntVar(&minSize, "size", 0, "minimum fragment size, smaller fragments are merged into the next one")
	fs.IntVar(&minSize, "s", 0, "shorthand for --size")
	fs.StringVar(&outDir, "outdir", ".", "directory where fragments_list.txt and info_contigs.txt are written")
	fs.StringVar(&outDir, "o", ".", "shorthand for --outdir")
	fs.StringVar(&graph, "graph", "", "write the processing graph with step timings to this DOT file")

	err := parse(fs, args, "<fasta>")
	if err != nil {
		return err
	}

	if enzyme == "" {
		return errors.Wrap(errUsage, "digest: --enzyme is required")
	}

	cutter, err := digest.NewCutter(enzyme)
	if err != nil {
		return errors.Wrap(errUsage, err.Error())
	}

	opts, msr := a.pipelineOptions(graph)

	contigs, err := digest.WriteFragInfo(a.ctx, fs.Arg(0), cutter, outDir, digest.Options{
		MinSize:         minSize,
		Threads:         a.cfg.Threads,
		PipelineOptions: opts,
	})
	if err != nil {
		return err
	}

	frags := 0
	for _, c := range contigs {
		frags += len(c.Fragments)
	}

	a.logMeasure(msr)
	a.logger.Info("genome digested", "cutter", cutter.String(), "contigs", len(contigs), "fragments", frags, "outdir", outDir)

	return nil
}

func runIteralign(a *app, args []string) error {
	fs := a.newFlagSet("iteralign", "--fasta FILE --out_sam FILE [--threads INT] [--tempdir DIR] [--minimap2] [--min_len INT] <reads.fq>")

	cfg := iteralign.Config{Logger: a.logger}

	var useMinimap2 bool

	fs.StringVar(&cfg.Genome, "fasta", "", "genome on which to map the reads")
	fs.StringVar(&cfg.Genome, "f", "", "shorthand for --fasta")
	fs.IntVar(&cfg.Threads, "threads", a.cfg.Threads, "number of alignment threads")
	fs.IntVar(&cfg.Threads, "t", a.cfg.Threads, "shorthand for --threads")
	fs.StringVar(&cfg.TempDir, "tempdir", a.cfg.TempDir, "directory for temporary files")
	fs.StringVar(&cfg.TempDir, "T", a.cfg.TempDir, "shorthand for --tempdir")
	fs.BoolVar(&useMinimap2, "minimap2", false, "use minimap2 instead of bowtie2")
	fs.BoolVar(&useMinimap2, "m", false, "shorthand for --minimap2")
	fs.IntVar(&cfg.MinLen, "min_len", iteralign.DefaultMinLen, "length of the first alignment round")
	fs.IntVar(&cfg.MinLen, "l", iteralign.DefaultMinLen, "shorthand for --min_len")
	fs.StringVar(&cfg.OutSAM, "out_sam", "", "SAM file receiving the alignments")
	fs.StringVar(&cfg.OutSAM, "o", "", "shorthand for --out_sam")
	fs.IntVar(&cfg.Step, "step", a.cfg.Iteralign.Step, "read extension between rounds")
	fs.IntVar(&cfg.MinQuality, "min_quality", a.cfg.Iteralign.MinQuality, "minimum MAPQ of a kept alignment")

	err := parse(fs, args, "<reads.fq>")
	if err != nil {
		return err
	}

	if cfg.Genome == "" || cfg.OutSAM == "" {
		return errors.Wrap(errUsage, "iteralign: --fasta and --out_sam are required")
	}

	cfg.Reads = fs.Arg(0)

	alignerName := a.cfg.Iteralign.Aligner
	if useMinimap2 {
		alignerName = "minimap2"
	}

	aligner, err := iteralign.NewAligner(alignerName)
	if err != nil {
		return errors.Wrap(errUsage, err.Error())
	}

	opts, msr := a.pipelineOptions("")
	cfg.PipelineOptions = opts

	res, err := iteralign.Align(a.ctx, cfg, aligner)
	if err != nil {
		return err
	}

	a.logMeasure(msr)
	a.logger.Info("reads aligned", "reads", res.Total, "aligned", res.Aligned, "unaligned", res.Unaligned,
		"rounds", len(res.Rounds), "output", cfg.OutSAM)

	return nil
}

func runFilter(a *app, args []string) error {
	fs := a.newFlagSet("filter", "[--interactive | --thresholds INT-INT] [--plot_summary] [--graph FILE] <input> <output>")

	var (
		interactive, plotSummary bool
		thresholds, graph        string
	)

	fs.BoolVar(&interactive, "interactive", false, "show the event distribution and ask for thresholds")
	fs.BoolVar(&interactive, "i", false, "shorthand for --interactive")
	fs.StringVar(&thresholds, "thresholds", "", "uncut and loop thresholds, as UNCUT-LOOP")
	fs.StringVar(&thresholds, "t", "", "shorthand for --thresholds")
	fs.BoolVar(&plotSummary, "plot_summary", false, "show the composition of the library")
	fs.BoolVar(&plotSummary, "p", false, "shorthand for --plot_summary")
	fs.StringVar(&graph, "graph", "", "write the processing graph with step timings to this DOT file")

	err := parse(fs, args, "<input>", "<output>")
	if err != nil {
		return err
	}

	if interactive && thresholds != "" {
		return errors.Wrap(errUsage, "filter: --interactive and --thresholds are mutually exclusive")
	}

	input, output := fs.Arg(0), fs.Arg(1)

	thr, err := a.thresholds(input, thresholds, interactive)
	if err != nil {
		return err
	}

	a.console.Thresholds(thr)

	in, err := os.Open(input)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", input)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", output)
	}
	defer out.Close()

	opts, msr := a.pipelineOptions(graph)

	summary, err := filter.Filter(a.ctx, in, out, thr, opts...)
	if err != nil {
		return err
	}

	err = out.Close()
	if err != nil {
		return errors.Wrapf(err, "unable to close %s", output)
	}

	a.logMeasure(msr)
	a.console.Summary(summary)

	if plotSummary {
		a.console.Composition(summary)
	}

	return nil
}

func (a *app) thresholds(input, manual string, interactive bool) (pairs.Thresholds, error) {
	if manual != "" {
		thr, err := filter.ParseThresholds(manual)
		if err != nil {
			return thr, errors.Wrap(errUsage, err.Error())
		}

		return thr, nil
	}

	if interactive {
		if f, ok := a.stdin.(*os.File); ok && !console.IsTerminal(f) {
			return pairs.Thresholds{}, errors.Wrap(errUsage, "filter: --interactive needs a terminal on stdin")
		}
	}

	in, err := os.Open(input)
	if err != nil {
		return pairs.Thresholds{}, errors.Wrapf(err, "unable to open %s", input)
	}
	defer in.Close()

	h, err := filter.ReadHistogram(in, a.cfg.Filter.MaxSites, a.cfg.Filter.SampleSize)
	if err != nil {
		return pairs.Thresholds{}, err
	}

	if interactive {
		return filter.PromptThresholds(a.stdin, a.stderr, h, a.console)
	}

	thr, err := filter.EstimateThresholds(h)
	if err != nil {
		return thr, err
	}

	a.logger.Info("thresholds estimated", "uncut", thr.Uncut, "loop", thr.Loop, "pairs", h.Pairs)

	return thr, nil
}

func runView(a *app, args []string) error {
	fs := a.newFlagSet("view", "[--binning N|Nkb] [--normalize] [--max P] [--output IMG] <contact_map>")

	var (
		binning, output, colormap string
		normalize, noColorbar     bool
		saturation                float64
		scale                     int
	)

	fs.StringVar(&binning, "binning", "1", "binning factor, or a bin size in bp, kb or Mb")
	fs.StringVar(&binning, "b", "1", "shorthand for --binning")
	fs.BoolVar(&normalize, "normalize", false, "apply SCN normalisation before drawing")
	fs.BoolVar(&normalize, "n", false, "shorthand for --normalize")
	fs.Float64Var(&saturation, "max", a.cfg.View.SaturationPercentile, "percentile of the values at which colours saturate")
	fs.Float64Var(&saturation, "m", a.cfg.View.SaturationPercentile, "shorthand for --max")
	fs.StringVar(&output, "output", "", "PNG file to write (default: a temporary file)")
	fs.StringVar(&output, "o", "", "shorthand for --output")
	fs.StringVar(&colormap, "colormap", a.cfg.View.Colormap, "colormap name")
	fs.IntVar(&scale, "scale", a.cfg.View.DPIScale, "pixels per matrix cell")
	fs.BoolVar(&noColorbar, "no_colorbar", false, "do not draw the colour bar")

	err := parse(fs, args, "<contact_map>")
	if err != nil {
		return err
	}

	bins, err := matrix.ParseBinning(binning)
	if err != nil {
		return errors.Wrap(errUsage, err.Error())
	}

	if saturation <= 0 || saturation > 100 {
		return errors.Wrapf(errUsage, "view: --max must be a percentile in (0, 100], got %g", saturation)
	}

	sparse, err := matrix.LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	if normalize {
		sparse, err = sparse.Normalize(matrix.NormSCN)
		if err != nil {
			return err
		}
	}

	sparse, err = bins.Apply(sparse)
	if err != nil {
		return err
	}

	dense, err := sparse.Dense(true)
	if err != nil {
		return err
	}

	written, err := render.SavePNG(output, dense, render.Options{
		Saturation: saturation,
		Colormap:   colormap,
		Scale:      scale,
		Colorbar:   !noColorbar,
	})
	if err != nil {
		return err
	}

	a.logger.Info("contact map drawn", "size", dense.N, "output", written)

	if output == "" {
		fmt.Fprintln(a.stdout, written)
	}

	return nil
}

func runScaffolds(a *app, args []string) error {
	fs := a.newFlagSet("scaffolds", "[--threshold INT] <fasta>")

	threshold := fs.Int("threshold", defaultScaffoldThreshold, "scaffolds up to this size are ignored")

	err := parse(fs, args, "<fasta>")
	if err != nil {
		return err
	}

	in, err := os.Open(fs.Arg(0))
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", fs.Arg(0))
	}
	defer in.Close()

	lengths, err := fasta.ScaffoldLengths(in, *threshold)
	if err != nil {
		return err
	}

	return writeLengths(a.stdout, lengths)
}

func writeLengths(w io.Writer, lengths []int) error {
	for i, l := range lengths {
		_, err := fmt.Fprintf(w, "%d\t%d\n", i, l)
		if err != nil {
			return errors.Wrap(err, "unable to write scaffold lengths")
		}
	}

	return nil
}

func runReorder(a *app, args []string) error {
	fs := a.newFlagSet("reorder", "[--threshold INT] <fasta> <output>")

	threshold := fs.Int("threshold", defaultReorderThreshold, "scaffolds up to this size are dropped")

	err := parse(fs, args, "<fasta>", "<output>")
	if err != nil {
		return err
	}

	in, err := os.Open(fs.Arg(0))
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", fs.Arg(0))
	}
	defer in.Close()

	out, err := os.Create(fs.Arg(1))
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", fs.Arg(1))
	}
	defer out.Close()

	n, err := fasta.Reorder(in, out, *threshold)
	if err != nil {
		return err
	}

	a.logger.Info("genome reordered", "kept", n, "output", fs.Arg(1))

	return errors.Wrapf(out.Close(), "unable to close %s", fs.Arg(1))
}
