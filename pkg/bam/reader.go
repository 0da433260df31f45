package bam

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/samber/lo"
	"github.com/scttfrdmn/tandem-genotypes-go/pkg/alignment"
	"github.com/sirupsen/logrus"
)

// ReadOptions configures how alignments are loaded
type ReadOptions struct {
	Sample     string // Sample for records without a read-group SM (default: file base name)
	MinMapQ    int    // Skip records below this mapping quality (255 is treated as unknown)
	KeepDups   bool   // Keep records flagged as duplicates
	Logger     logrus.FieldLogger
	ReportEach int // Log progress every N records (0 = 100000)
}

// ReadStats counts records seen while loading one input
type ReadStats struct {
	Total    int
	Used     int
	Unmapped int
	Filtered int // Secondary, QC-fail, duplicate or low MAPQ
	Invalid  int

	// Samples named by the input, whether or not any of their records
	// survived filtering: read-group SM values, then Fallback when it applies
	Samples []string
	// Fallback is the sample given to records without a read-group SM. It is
	// empty when every record resolved through a read group.
	Fallback string
}

// Add accumulates another input's counts and samples
func (s *ReadStats) Add(o ReadStats) {
	s.Total += o.Total
	s.Used += o.Used
	s.Unmapped += o.Unmapped
	s.Filtered += o.Filtered
	s.Invalid += o.Invalid
	s.Samples = lo.Uniq(append(s.Samples, o.Samples...))
}

type recordReader interface {
	Read() (*sam.Record, error)
	Header() *sam.Header
}

// ReadAlignments decodes SAM or BAM from r into alignment records.
// BAM is detected by its gzip magic. name is used for logging and as the
// default sample. A malformed record is skipped; it does not stop the input.
// The returned stats list every sample the input names, including samples
// whose records were all filtered out.
func ReadAlignments(r io.Reader, name string, opts ReadOptions) ([]alignment.Record, ReadStats, error) {
	var stats ReadStats

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	every := opts.ReportEach
	if every <= 0 {
		every = 100000
	}

	br := bufio.NewReaderSize(r, 1<<20)
	reader, closer, err := openRecordReader(br)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to open alignments %s: %w", name, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	fallback := opts.Sample
	if fallback == "" {
		fallback = SampleFromPath(name)
	}
	samples := readGroupSamples(reader.Header())
	usedFallback := false

	var records []alignment.Record
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, fmt.Errorf("failed to read record %d of %s: %w", stats.Total+1, name, err)
		}

		stats.Total++
		if stats.Total%every == 0 {
			log.WithField("input", name).Debugf("processed %d records", stats.Total)
		}

		sample := recordSample(record, samples, fallback)
		if sample == fallback {
			usedFallback = true
		}

		if record.Flags&sam.Unmapped != 0 || record.Ref == nil {
			stats.Unmapped++
			continue
		}
		if !keep(record, opts) {
			stats.Filtered++
			continue
		}

		read, err := ConvertRecord(record, sample)
		if err != nil {
			stats.Invalid++
			log.WithFields(logrus.Fields{
				"input": name,
				"read":  record.Name,
			}).Warnf("skipping record: %v", err)
			continue
		}

		stats.Used++
		records = append(records, read)
	}

	stats.Samples = headerSamples(reader.Header())
	if usedFallback || len(stats.Samples) == 0 {
		stats.Fallback = fallback
		stats.Samples = lo.Uniq(append(stats.Samples, fallback))
	}

	log.WithFields(logrus.Fields{
		"input":    name,
		"samples":  stats.Samples,
		"total":    stats.Total,
		"used":     stats.Used,
		"unmapped": stats.Unmapped,
		"filtered": stats.Filtered,
		"invalid":  stats.Invalid,
	}).Info("loaded alignments")

	return records, stats, nil
}

func openRecordReader(br *bufio.Reader) (recordReader, io.Closer, error) {
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		bamReader, err := bam.NewReader(br, 1)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create BAM reader: %w", err)
		}
		return bamReader, bamReader, nil
	}

	samReader, err := sam.NewReader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create SAM reader: %w", err)
	}
	return samReader, nil, nil
}

func keep(record *sam.Record, opts ReadOptions) bool {
	if record.Flags&(sam.Secondary|sam.QCFail) != 0 {
		return false
	}
	if !opts.KeepDups && record.Flags&sam.Duplicate != 0 {
		return false
	}
	if record.MapQ != 255 && int(record.MapQ) < opts.MinMapQ {
		return false
	}
	return true
}

// SampleFromPath derives a sample name from an input path
func SampleFromPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	base := filepath.Base(strings.TrimSuffix(path, "/"))
	for _, ext := range []string{".zst", ".gz", ".bam", ".sam", ".cram"} {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return "sample"
	}
	return base
}
