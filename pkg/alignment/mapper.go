package alignment

// Side selects which read offset a reference boundary maps to when several
// read offsets share it (insertions sitting exactly on the boundary).
type Side int

const (
	// LeftSide maps to the read offset before any insertions at the boundary.
	// Use it for the start of an interval.
	LeftSide Side = iota
	// RightSide maps to the read offset after any insertions at the boundary.
	// Use it for the end of an interval.
	RightSide
)

// RefToRead maps a reference boundary offset to a read offset.
//
// pos is a boundary between reference bases pos-1 and pos. A boundary inside
// a deletion maps to the read offset where the deletion sits. It returns false
// when pos lies outside [RefStart, RefEnd].
func RefToRead(r *Record, pos int, side Side) (int, bool) {
	if len(r.Blocks) == 0 || pos < r.RefStart || pos > r.RefEnd() {
		return 0, false
	}

	ref, read := r.RefStart, r.ReadStart
	out, found := 0, false

	for _, b := range r.Blocks {
		if ref == pos {
			if side == LeftSide {
				return read, true
			}
			out, found = read, true
		}
		if ref > pos {
			break
		}

		switch b.Kind {
		case Match:
			if pos > ref && pos < ref+b.Length {
				return read + (pos - ref), true
			}
			ref += b.Length
			read += b.Length
		case Deletion:
			if pos > ref && pos < ref+b.Length {
				return read, true
			}
			ref += b.Length
		case Insertion:
			read += b.Length
		}
	}

	if ref == pos {
		return read, true
	}
	return out, found
}

// ReadToRef maps a read offset back to a reference offset.
// Read offsets inside an insertion map to the reference offset the insertion
// precedes. It returns false when readPos lies outside [ReadStart, ReadEnd].
func ReadToRef(r *Record, readPos int) (int, bool) {
	if len(r.Blocks) == 0 || readPos < r.ReadStart || readPos > r.ReadEnd() {
		return 0, false
	}

	ref, read := r.RefStart, r.ReadStart
	for _, b := range r.Blocks {
		switch b.Kind {
		case Match:
			if readPos >= read && readPos < read+b.Length {
				return ref + (readPos - read), true
			}
			ref += b.Length
			read += b.Length
		case Insertion:
			if readPos >= read && readPos < read+b.Length {
				return ref, true
			}
			read += b.Length
		case Deletion:
			ref += b.Length
		}
	}

	return ref, true
}

// Covers reports whether the alignment spans [start, end) on its reference
func Covers(r *Record, start, end int) bool {
	return start >= r.RefStart && end <= r.RefEnd()
}

// Overlaps reports whether the alignment intersects [start, end) on ref
func Overlaps(r *Record, ref string, start, end int) bool {
	return r.RefName == ref && r.RefStart < end && r.RefEnd() > start
}
