package digest

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/fasta"
	"github.com/nmendiboure/hicstuff/pkg/pipeline"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

const (
	FragmentsFile = "fragments_list.txt"
	ContigsFile   = "info_contigs.txt"

	fragmentsHeader = "id\tchrom\tstart_pos\tend_pos\tsize\tgc_content"
	contigsHeader   = "contig\tlength\tn_frags\tcumul_length"
)

// Options tunes a digestion.
type Options struct {
	MinSize int
	// Threads is the number of contigs digested at once.
	Threads int
	// PipelineOptions are handed to the underlying pipeline.
	PipelineOptions []model.PipelineOption
}

type indexed[T any] struct {
	idx   int
	value T
}

// Digest cuts every record of r. Contigs are returned in input order with CumulFrags set.
func Digest(ctx context.Context, r io.Reader, cutter Cutter, opts Options) ([]Contig, error) {
	pipe, err := pipeline.New(ctx, opts.PipelineOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create digest pipeline")
	}

	records, err := pipeline.AddRootStep(pipe, "read", func(ctx context.Context, rootChan chan<- indexed[*fasta.Record]) error {
		reader := fasta.NewReader(r)

		for idx := 0; ; idx++ {
			rec, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}

			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err() //nolint:wrapcheck // wrapped by the pipeline
			case rootChan <- indexed[*fasta.Record]{idx: idx, value: rec}:
			}
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to add read step")
	}

	digested, err := pipeline.AddStepOneToOne(pipe, "digest", records, func(_ context.Context, in indexed[*fasta.Record]) (indexed[Contig], error) {
		return indexed[Contig]{idx: in.idx, value: DigestRecord(in.value, cutter, opts.MinSize)}, nil
	}, pipeline.StepConcurrency(opts.Threads))
	if err != nil {
		return nil, errors.Wrap(err, "unable to add digest step")
	}

	var contigs []Contig

	// concurrent digestion may reorder contigs, the sink puts them back in place
	err = pipeline.AddSink(pipe, "collect", digested, func(_ context.Context, in indexed[Contig]) error {
		for len(contigs) <= in.idx {
			contigs = append(contigs, Contig{})
		}

		contigs[in.idx] = in.value

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to add collect sink")
	}

	err = pipe.Run()
	if err != nil {
		return nil, errors.Wrap(err, "unable to digest genome")
	}

	cumul := 0
	for i := range contigs {
		contigs[i].CumulFrags = cumul
		cumul += len(contigs[i].Fragments)
	}

	return contigs, nil
}

// WriteFragments writes the fragments_list.txt table.
func WriteFragments(w io.Writer, contigs []Contig) error {
	bw := bufio.NewWriter(w)

	_, err := bw.WriteString(fragmentsHeader + "\n")
	if err != nil {
		return errors.Wrap(err, "unable to write fragments header")
	}

	for _, c := range contigs {
		for _, f := range c.Fragments {
			_, err := bw.WriteString(f.String() + "\n")
			if err != nil {
				return errors.Wrapf(err, "unable to write fragment %d of %s", f.ID, c.Name)
			}
		}
	}

	return errors.Wrap(bw.Flush(), "unable to flush fragments")
}

// WriteContigs writes the info_contigs.txt table.
func WriteContigs(w io.Writer, contigs []Contig) error {
	bw := bufio.NewWriter(w)

	_, err := bw.WriteString(contigsHeader + "\n")
	if err != nil {
		return errors.Wrap(err, "unable to write contigs header")
	}

	for _, c := range contigs {
		_, err := bw.WriteString(c.String() + "\n")
		if err != nil {
			return errors.Wrapf(err, "unable to write contig %s", c.Name)
		}
	}

	return errors.Wrap(bw.Flush(), "unable to flush contigs")
}

// WriteFragInfo digests the FASTA file at path and writes both tables into outDir.
func WriteFragInfo(ctx context.Context, path string, cutter Cutter, outDir string, opts Options) ([]Contig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open genome %s", path)
	}
	defer file.Close()

	contigs, err := Digest(ctx, file, cutter, opts)
	if err != nil {
		return nil, err
	}

	if outDir == "" {
		outDir = "."
	}

	err = os.MkdirAll(outDir, 0o755)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %s", outDir)
	}

	err = writeFile(filepath.Join(outDir, FragmentsFile), contigs, WriteFragments)
	if err != nil {
		return nil, err
	}

	err = writeFile(filepath.Join(outDir, ContigsFile), contigs, WriteContigs)
	if err != nil {
		return nil, err
	}

	return contigs, nil
}

func writeFile(path string, contigs []Contig, write func(io.Writer, []Contig) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	err = write(file, contigs)
	if err != nil {
		file.Close()

		return errors.Wrapf(err, "unable to write %s", path)
	}

	return errors.Wrapf(file.Close(), "unable to close %s", path)
}
