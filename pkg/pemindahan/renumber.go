package pemindahan

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
)

// SortForNumbering orders archives by classification code, creation period,
// original nomor berkas and id. The position in the result (1 based) is the
// nomor berkas of the inactive archive.
func SortForNumbering(archives []arsipmodel.ActiveArchive) {
	slices.SortStableFunc(archives, compareForNumbering)
}

func compareForNumbering(a, b arsipmodel.ActiveArchive) int {
	if c := CompareClassificationCodes(a.ClassificationCode, b.ClassificationCode); c != 0 {
		return c
	}

	if c := compareSegment(strings.TrimSpace(a.CreationPeriod), strings.TrimSpace(b.CreationPeriod)); c != 0 {
		return c
	}

	if c := compareNomor(a.NomorBerkas, b.NomorBerkas); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

// CompareClassificationCodes compares dotted codes segment by segment, so
// "000.5.2" sorts before "000.5.10". A code that is a prefix of another
// sorts first.
func CompareClassificationCodes(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}

	return cmp.Compare(len(as), len(bs))
}

// compareSegment compares the leading numbers of a and b numerically, then
// the remainders lexically. Segments with a leading number sort before
// segments without one.
func compareSegment(a, b string) int {
	an, arest, aok := leadingNumber(a)
	bn, brest, bok := leadingNumber(b)

	switch {
	case aok && bok:
		if c := cmp.Compare(an, bn); c != 0 {
			return c
		}
		return strings.Compare(arest, brest)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func leadingNumber(s string) (int, string, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == 0 {
		return 0, s, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}

	return n, s[end:], true
}

// compareNomor compares numerically when both parse, otherwise lexically.
func compareNomor(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)

	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return cmp.Compare(an, bn)
	}

	return strings.Compare(a, b)
}
