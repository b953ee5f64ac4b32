package psp

// sliceColumns returns a new triple keeping only the given positional
// column indices, projecting the same mask into D and C.
func sliceColumns(t *MatrixTriple, positions []int) (*MatrixTriple, error) {
	newD := NewMatrix(t.D.NRows(), len(positions))
	for i, row := range t.D.Values {
		for newJ, pos := range positions {
			newD.Values[i][newJ] = row[pos]
		}
	}
	out := &MatrixTriple{D: newD, R: t.R, C: t.C.Select(positions)}
	if err := out.CheckAlignment("sliceColumns"); err != nil {
		return nil, err
	}
	return out, nil
}

// sliceRows returns a new triple keeping only the given positional row
// indices, projecting the same mask into D and R.
func sliceRows(t *MatrixTriple, positions []int) (*MatrixTriple, error) {
	newD := NewMatrix(len(positions), t.D.NCols())
	for newI, pos := range positions {
		copy(newD.Values[newI], t.D.Values[pos])
	}
	out := &MatrixTriple{D: newD, R: t.R.Select(positions), C: t.C}
	if err := out.CheckAlignment("sliceRows"); err != nil {
		return nil, err
	}
	return out, nil
}

// sliceOffsets projects a positional column mask onto an offset vector,
// keeping it consistent with C and D slicing.
func sliceOffsets(o OffsetVector, positions []int) OffsetVector {
	out := make(OffsetVector, len(positions))
	for newJ, pos := range positions {
		out[newJ] = o[pos]
	}
	return out
}
