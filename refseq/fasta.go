package refseq

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// baseCode maps an ASCII FASTA byte to the 0-3/4 enum this package's
// Reference uses internally (A=0, C=1, G=2, T=3, anything else=4). It
// stores one enum value per byte to keep seed-coordinate arithmetic
// (qbeg/rbeg in base units) simple.
var baseCode [256]byte

func init() {
	for i := range baseCode {
		baseCode[i] = 4
	}
	baseCode['A'], baseCode['a'] = 0, 0
	baseCode['C'], baseCode['c'] = 1, 1
	baseCode['G'], baseCode['g'] = 2, 2
	baseCode['T'], baseCode['t'] = 3, 3
}

// EncodeASCII translates raw FASTA/FASTQ bases into the 0-3/4 enum coding
// used throughout this module.
func EncodeASCII(dst, src []byte) {
	for i, b := range src {
		dst[i] = baseCode[b]
	}
}

// LoadFasta reads a (optionally gzip-compressed) FASTA file through
// grailbio/base/file, so local paths and remote schemes registered with
// that package (e.g. s3://) work uniformly, and returns an InMemory
// Reference with one Contig per FASTA record in file order.
func LoadFasta(ctx context.Context, path string) (*InMemory, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx) // nolint: errcheck

	var reader io.Reader = f.Reader(ctx)
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, err
		}
		defer gz.Close() // nolint: errcheck
		reader = gz
	}

	var (
		contigs []Contig
		forward []byte
		cur     Contig
		have    bool
	)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<28)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if have {
				cur.Len = uint64(len(forward)) - cur.Offset
				contigs = append(contigs, cur)
			}
			name := strings.SplitN(string(line[1:]), " ", 2)[0]
			cur = Contig{Name: name, Offset: uint64(len(forward))}
			have = true
			continue
		}
		if !have {
			continue
		}
		start := len(forward)
		forward = append(forward, make([]byte, len(line))...)
		EncodeASCII(forward[start:], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if have {
		cur.Len = uint64(len(forward)) - cur.Offset
		contigs = append(contigs, cur)
	}
	return NewInMemory(contigs, forward)
}
