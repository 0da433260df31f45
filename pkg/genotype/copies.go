package genotype

// Copies converts a call's allele lengths to repeat-unit copy numbers.
// It is a reporting step only; calls themselves are never rounded to the unit.
// It returns false for calls without data.
func Copies(c Call) ([2]float64, bool) {
	if !c.HasData() || len(c.Locus.Unit) == 0 {
		return [2]float64{}, false
	}
	unit := float64(len(c.Locus.Unit))
	lengths := c.Lengths()
	return [2]float64{lengths[0] / unit, lengths[1] / unit}, true
}
