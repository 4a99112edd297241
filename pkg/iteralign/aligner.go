package iteralign

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownAligner = errors.New("unknown aligner, expected bowtie2 or minimap2")

// Aligner indexes a genome once, then maps FASTQ files against that index into SAM files.
type Aligner interface {
	Name() string
	Index(ctx context.Context, genome, dir string) (string, error)
	Align(ctx context.Context, index, reads, sam string, threads int) error
}

// NewAligner returns the aligner called name.
func NewAligner(name string) (Aligner, error) {
	switch strings.ToLower(name) {
	case "", "bowtie2":
		return &Bowtie2{}, nil
	case "minimap2":
		return &Minimap2{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownAligner, "got %q", name)
	}
}

// Bowtie2 runs bowtie2-build and bowtie2 in local mode.
type Bowtie2 struct {
	// Bin is the directory holding the binaries, empty to search PATH.
	Bin string
}

func (b *Bowtie2) Name() string {
	return "bowtie2"
}

func (b *Bowtie2) Index(ctx context.Context, genome, dir string) (string, error) {
	index := filepath.Join(dir, "index")

	err := run(ctx, binary(b.Bin, "bowtie2-build"), "--quiet", "-f", genome, index)
	if err != nil {
		return "", errors.Wrap(err, "unable to build bowtie2 index")
	}

	return index, nil
}

func (b *Bowtie2) Align(ctx context.Context, index, reads, sam string, threads int) error {
	err := run(ctx, binary(b.Bin, "bowtie2"),
		"-x", index,
		"-U", reads,
		"-S", sam,
		"-p", strconv.Itoa(max(threads, 1)),
		"--very-sensitive-local",
	)

	return errors.Wrap(err, "unable to align with bowtie2")
}

// Minimap2 runs minimap2 with the short read preset.
type Minimap2 struct {
	Bin string
}

func (m *Minimap2) Name() string {
	return "minimap2"
}

func (m *Minimap2) Index(ctx context.Context, genome, dir string) (string, error) {
	index := filepath.Join(dir, "index.mmi")

	err := run(ctx, binary(m.Bin, "minimap2"), "-d", index, genome)
	if err != nil {
		return "", errors.Wrap(err, "unable to build minimap2 index")
	}

	return index, nil
}

func (m *Minimap2) Align(ctx context.Context, index, reads, sam string, threads int) error {
	err := run(ctx, binary(m.Bin, "minimap2"),
		"-2",
		"-t", strconv.Itoa(max(threads, 1)),
		"-ax", "sr",
		"-o", sam,
		index, reads,
	)

	return errors.Wrap(err, "unable to align with minimap2")
}

func binary(dir, name string) string {
	if dir == "" {
		return name
	}

	return filepath.Join(dir, name)
}

func run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = msg[len(msg)-512:]
		}

		if msg != "" {
			return errors.Wrapf(err, "%s: %s", name, msg)
		}

		return errors.Wrap(err, name)
	}

	return nil
}
