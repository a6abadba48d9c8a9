package match

// Levenshtein returns the number of single-rune insertions, deletions and
// substitutions that turn a into b. Identifiers are compared by rune, so a
// non-ASCII letter counts as one edit.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	// row[i] is the distance between ra[:i] and the prefix of rb seen so far.
	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j, r := range rb {
		diag := row[0]
		row[0] = j + 1

		for i := 1; i <= len(ra); i++ {
			sub := diag
			if ra[i-1] != r {
				sub++
			}

			diag = row[i]
			row[i] = min(row[i]+1, row[i-1]+1, sub)
		}
	}

	return row[len(ra)]
}

// Score rates how alike two identifiers are once normalized, from 0 for
// nothing in common to 1 for the same name spelled differently.
func Score(a, b string) float64 {
	na, nb := []rune(NormalizeIdent(a)), []rune(NormalizeIdent(b))

	longest := max(len(na), len(nb))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(string(na), string(nb)))/float64(longest)
}
