// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// bwamem aligns short reads against a reference FASTA using a seed-chain-
// extend pipeline, emitting unsorted SAM text to stdout or -out.
//
// Usage: bwamem [OPTIONS] ref.fasta reads1.fastq [reads2.fastq]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/Androniki/bwa/biosimd"
	"github.com/Androniki/bwa/encoding/fastq"
	"github.com/Androniki/bwa/fmindex"
	"github.com/Androniki/bwa/ksw"
	"github.com/Androniki/bwa/mem"
	"github.com/Androniki/bwa/mem/pestat"
	"github.com/Androniki/bwa/refseq"
)

var (
	outPath        = flag.String("out", "-", "Output SAM path; '-' writes to stdout")
	minSeedLen     = flag.Int("min-seed-len", 0, "Minimum seed length; 0 keeps the built-in default")
	bandWidth      = flag.Int("band-width", 0, "Banded alignment band width; 0 keeps the built-in default")
	nThreads       = flag.Int("threads", 0, "Alignment parallelism; 0 keeps the built-in default")
	chunkSize      = flag.Int("chunk-size", 0, "Sets Options.ChunkSize; 0 keeps the built-in default. All input reads are aligned as one batch whatever this value")
	hardClip       = flag.Bool("hard-clip", false, "Hard-clip the unaligned read ends of every emitted alignment instead of soft-clipping")
	pairedFlag     = flag.Bool("paired", false, "Treat reads1.fastq/reads2.fastq as a mate pair and estimate insert size between passes")
	verboseFlag    = flag.Int("verbose", mem.VerboseError, "Verbosity level: 1=error, 2=warn, 3=info, 4=debug")
	downsampleRate = flag.Float64("downsample-rate", 0, "If > 0, randomly keep only this fraction of read pairs before aligning (paired mode only)")
	dumpUnmapped   = flag.String("dump-unmapped", "", "If set, write reads with no primary alignment to this FASTQ path")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] ref.fasta reads1.fastq [reads2.fastq]\n", os.Args[0])
	flag.PrintDefaults()
}

func buildOptions() mem.Options {
	opt := mem.DefaultOptions()
	if *minSeedLen > 0 {
		opt.MinSeedLen = *minSeedLen
	}
	if *bandWidth > 0 {
		opt.BandWidth = *bandWidth
	}
	if *nThreads > 0 {
		opt.NThreads = *nThreads
	}
	if *chunkSize > 0 {
		opt.ChunkSize = *chunkSize
	}
	if *hardClip {
		opt.Flag |= mem.FlagHardClip
	}
	if *pairedFlag {
		opt.Flag |= mem.FlagPE
	}
	return opt
}

// loadReads scans one or two FASTQ files into a flat, round-robin-ordered
// slice: singletons in file order, or interleaved mate pairs (2i, 2i+1) when
// a second path is given. It also returns the original FASTQ records keyed
// by trimmed read name, so dumpUnmappedReads can recover the ASCII
// sequence/quality for reads that don't end up with a primary alignment.
func loadReads(ctx context.Context, path1, path2 string) ([]mem.Read, map[string]fastq.Read, error) {
	f1, err := file.Open(ctx, path1)
	if err != nil {
		return nil, nil, err
	}
	defer f1.Close(ctx) // nolint: errcheck

	original := make(map[string]fastq.Read)

	if path2 == "" {
		var reads []mem.Read
		sc := fastq.NewScanner(f1.Reader(ctx), fastq.All)
		var r fastq.Read
		for sc.Scan(&r) {
			mr := toRead(r)
			original[mr.Name] = r
			reads = append(reads, mr)
		}
		if err := sc.Err(); err != nil {
			return nil, nil, err
		}
		return reads, original, nil
	}

	f2, err := file.Open(ctx, path2)
	if err != nil {
		return nil, nil, err
	}
	defer f2.Close(ctx) // nolint: errcheck

	var reads []mem.Read
	sc := fastq.NewPairScanner(f1.Reader(ctx), f2.Reader(ctx), fastq.All)
	var r1, r2 fastq.Read
	for sc.Scan(&r1, &r2) {
		mr1, mr2 := toRead(r1), toRead(r2)
		original[mr1.Name] = r1
		original[mr2.Name] = r2
		reads = append(reads, mr1, mr2)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return reads, original, nil
}

// downsampleInput runs fastq.Downsample over a paired FASTQ input at rate,
// writing the sampled pairs to new files in the system temporary directory
// and returning their paths for loadReads to read instead of the originals.
func downsampleInput(ctx context.Context, rate float64, path1, path2 string) (string, string, error) {
	out1, err := os.CreateTemp("", "bwamem-downsample-r1-*.fastq")
	if err != nil {
		return "", "", err
	}
	out2, err := os.CreateTemp("", "bwamem-downsample-r2-*.fastq")
	if err != nil {
		return "", "", err
	}
	if err := fastq.Downsample(ctx, rate, path1, path2, out1, out2); err != nil {
		return "", "", err
	}
	if err := out1.Close(); err != nil {
		return "", "", err
	}
	if err := out2.Close(); err != nil {
		return "", "", err
	}
	return out1.Name(), out2.Name(), nil
}

// dumpUnmappedReads writes every result with no primary alignment to path in
// FASTQ form, recovering each read's original ASCII record from original.
func dumpUnmappedReads(path string, results []mem.Result, original map[string]fastq.Read) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck
	w := fastq.NewWriter(f)
	for _, r := range results {
		if r.Region != nil {
			continue
		}
		name := strings.SplitN(r.SAMLine, "\t", 2)[0]
		rec, ok := original[name]
		if !ok {
			continue
		}
		if err := w.Write(&rec); err != nil {
			return err
		}
	}
	return f.Close()
}

func toRead(r fastq.Read) mem.Read {
	name := strings.TrimPrefix(r.ID, "@")
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	if mem.Verbosity() >= mem.VerboseDebug && biosimd.IsNonACGTNPresent([]byte(r.Seq)) {
		log.Debug.Printf("bwamem: read %s contains characters outside ACGTN", name)
	}
	seq := make([]byte, len(r.Seq))
	refseq.EncodeASCII(seq, []byte(r.Seq))
	qual := make([]byte, len(r.Qual))
	for i := range r.Qual {
		q := r.Qual[i]
		if q >= 33 {
			q -= 33
		} else {
			q = 0
		}
		qual[i] = q
	}
	return mem.Read{Name: name, Seq: seq, Qual: qual}
}

func writeSAMHeader(w io.Writer, ref *refseq.InMemory) error {
	if _, err := fmt.Fprintln(w, "@HD\tVN:1.6\tSO:unsorted"); err != nil {
		return err
	}
	for _, c := range ref.Contigs() {
		if _, err := fmt.Fprintf(w, "@SQ\tSN:%s\tLN:%d\n", c.Name, c.Len); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "@PG\tID:bwamem\tPN:bwamem\tCL:%s\n", strings.Join(os.Args, " "))
	return err
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	mem.SetVerbosity(*verboseFlag)

	if flag.NArg() < 2 || flag.NArg() > 3 {
		usage()
		log.Fatalf("expected ref.fasta and one or two read files, got %d positional arguments", flag.NArg())
	}
	refPath := flag.Arg(0)
	reads1Path := flag.Arg(1)
	reads2Path := ""
	if flag.NArg() == 3 {
		reads2Path = flag.Arg(2)
	}

	ctx := vcontext.Background()
	ref, err := refseq.LoadFasta(ctx, refPath)
	if err != nil {
		log.Fatalf("load reference %s: %v", refPath, err)
	}

	if *downsampleRate > 0 {
		if reads2Path == "" {
			log.Fatalf("-downsample-rate requires two read files (paired mode)")
		}
		var err error
		reads1Path, reads2Path, err = downsampleInput(ctx, *downsampleRate, reads1Path, reads2Path)
		if err != nil {
			log.Fatalf("downsample reads: %v", err)
		}
		log.Debug.Printf("bwamem: downsampled input to rate %.3f", *downsampleRate)
	}

	reads, original, err := loadReads(ctx, reads1Path, reads2Path)
	if err != nil {
		log.Fatalf("load reads: %v", err)
	}
	log.Debug.Printf("bwamem: loaded %d reads, reference length %d", len(reads), ref.PacLen())

	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())
	opt := buildOptions()

	var stats mem.PEStats
	if opt.Flag&mem.FlagPE != 0 {
		stats = pestat.NewSimple()
	}

	results, err := mem.AlignBatch(reads, idx, ref, ksw.BandedAligner{}, &opt, stats)
	if err != nil {
		log.Fatalf("align: %v", err)
	}

	if *dumpUnmapped != "" {
		if err := dumpUnmappedReads(*dumpUnmapped, results, original); err != nil {
			log.Fatalf("dump unmapped reads: %v", err)
		}
	}

	var out io.Writer = os.Stdout
	if *outPath != "-" {
		f, err := file.Create(ctx, *outPath)
		if err != nil {
			log.Fatalf("create %s: %v", *outPath, err)
		}
		defer f.Close(ctx) // nolint: errcheck
		out = f.Writer(ctx)
	}
	bw := bufio.NewWriter(out)
	if err := writeSAMHeader(bw, ref); err != nil {
		log.Fatalf("write header: %v", err)
	}
	for _, r := range results {
		if _, err := fmt.Fprintln(bw, r.SAMLine); err != nil {
			log.Fatalf("write record: %v", err)
		}
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("flush output: %v", err)
	}
	log.Debug.Printf("bwamem: aligned %d reads", len(results))
}
