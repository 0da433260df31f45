package genotype

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Config holds the estimation and clustering policy for a run
type Config struct {
	// Length estimation
	MinFlank    int // Reads with less reference flank than this on either side are ignored (default: 0)
	MarginFlank int // Reads with less flank than this are marginal (default: 5)
	Near        int // Widen each locus by this many bases on both sides (default: 0)

	// Clustering
	HomozygousSpread  float64 // max-min at or below this is a single allele (default: 2)
	MinClusterSupport int     // Reads required in each cluster of a heterozygous call (default: 2)
	MinSeparation     float64 // Minimum gap/spread ratio to accept a split (default: 2)
	OutlierDistance   float64 // Extreme values further than this from their neighbour are noise (default: 10)
	OutlierMADs       float64 // ...unless within this many median absolute deviations (default: 3)

	// Resources
	Workers int // Parallel workers (default: DefaultWorkers())

	Logger logrus.FieldLogger
}

// NewConfig creates a Config with the documented defaults
func NewConfig() *Config {
	return &Config{
		MinFlank:          0,
		MarginFlank:       5,
		Near:              0,
		HomozygousSpread:  2,
		MinClusterSupport: 2,
		MinSeparation:     2,
		OutlierDistance:   10,
		OutlierMADs:       3,
		Workers:           DefaultWorkers(),
		Logger:            logrus.StandardLogger(),
	}
}

// Validate checks configuration values
func (c *Config) Validate() error {
	if c.MinFlank < 0 {
		return fmt.Errorf("min flank must be >= 0")
	}
	if c.MarginFlank < 0 {
		return fmt.Errorf("margin flank must be >= 0")
	}
	if c.Near < 0 {
		return fmt.Errorf("near must be >= 0")
	}
	if c.HomozygousSpread < 0 {
		return fmt.Errorf("homozygous spread must be >= 0")
	}
	if c.MinClusterSupport < 1 {
		return fmt.Errorf("min cluster support must be >= 1")
	}
	if c.MinSeparation < 0 {
		return fmt.Errorf("min separation must be >= 0")
	}
	if c.OutlierDistance < 0 || c.OutlierMADs < 0 {
		return fmt.Errorf("outlier thresholds must be >= 0")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if c.Workers > 64 && c.Logger != nil {
		c.Logger.Warn("workers > 64 may cause diminishing returns")
	}
	return nil
}

// ShowConfig prints the effective configuration
func (c *Config) ShowConfig(w io.Writer) {
	fmt.Fprintf(w, "Configuration:\n")
	fmt.Fprintf(w, "  Workers: %d\n", c.Workers)
	fmt.Fprintf(w, "  Min flank: %d bp\n", c.MinFlank)
	fmt.Fprintf(w, "  Marginal flank: %d bp\n", c.MarginFlank)
	fmt.Fprintf(w, "  Near: %d bp\n", c.Near)
	fmt.Fprintf(w, "  Homozygous spread: %.1f bp\n", c.HomozygousSpread)
	fmt.Fprintf(w, "  Min cluster support: %d reads\n", c.MinClusterSupport)
	fmt.Fprintf(w, "  Min separation: %.2f\n", c.MinSeparation)
	fmt.Fprintf(w, "  Outliers: > max(%.1f bp, %.1f MAD) from neighbour\n", c.OutlierDistance, c.OutlierMADs)
	fmt.Fprintf(w, "\n")
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
