package locus

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Catalog is the ordered set of loci loaded for a run.
// It is never modified after Load returns.
type Catalog struct {
	loci    []Locus
	Skipped []LineError // Malformed lines that were ignored
	Dropped int         // Valid loci removed by the unit-length filter
}

// LineError describes a catalog line that could not be parsed
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// LoadOptions filters loci at load time
type LoadOptions struct {
	MinUnit int // Minimum repeat-unit length (0 = no limit)
	MaxUnit int // Maximum repeat-unit length (0 = no limit)
}

// NewCatalog builds a catalog from already-constructed loci
func NewCatalog(loci []Locus) (*Catalog, error) {
	for i, l := range loci {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("locus %d (%s): %w", i, l.ID(), err)
		}
	}
	if len(loci) == 0 {
		return nil, ErrEmptyCatalog
	}
	out := make([]Locus, len(loci))
	copy(out, loci)
	return &Catalog{loci: out}, nil
}

// Load reads a catalog of "ref start end unit [label]" lines.
// Blank lines and lines starting with '#' are ignored; malformed lines are
// recorded in Skipped. A catalog with no valid loci returns ErrEmptyCatalog.
func Load(r io.Reader, opts LoadOptions) (*Catalog, error) {
	c := &Catalog{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		l, err := parseLine(line)
		if err != nil {
			c.Skipped = append(c.Skipped, LineError{Line: lineNum, Text: line, Err: err})
			continue
		}

		if opts.MinUnit > 0 && len(l.Unit) < opts.MinUnit {
			c.Dropped++
			continue
		}
		if opts.MaxUnit > 0 && len(l.Unit) > opts.MaxUnit {
			c.Dropped++
			continue
		}

		c.loci = append(c.loci, l)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if len(c.loci) == 0 {
		return c, ErrEmptyCatalog
	}

	return c, nil
}

func parseLine(line string) (Locus, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Locus{}, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}

	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return Locus{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return Locus{}, fmt.Errorf("invalid end: %w", err)
	}

	l := Locus{
		RefName: fields[0],
		Start:   start,
		End:     end,
		Unit:    strings.ToUpper(fields[3]),
	}
	if len(fields) > 4 {
		l.Label = fields[4]
	}

	if err := l.Validate(); err != nil {
		return Locus{}, err
	}
	return l, nil
}

// Len returns the number of loci
func (c *Catalog) Len() int {
	return len(c.loci)
}

// At returns the i-th locus in catalog order
func (c *Catalog) At(i int) Locus {
	return c.loci[i]
}

// Loci returns a copy of the loci in catalog order
func (c *Catalog) Loci() []Locus {
	out := make([]Locus, len(c.loci))
	copy(out, c.loci)
	return out
}

// References returns the distinct reference names in first-seen order
func (c *Catalog) References() []string {
	return lo.Uniq(lo.Map(c.loci, func(l Locus, _ int) string {
		return l.RefName
	}))
}

// InRegion returns the catalog indices of loci overlapping the region
func (c *Catalog) InRegion(region Region) []int {
	var idx []int
	for i, l := range c.loci {
		if region.Contains(l) {
			idx = append(idx, i)
		}
	}
	return idx
}
