package attendance

import (
	"sort"
	"strconv"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/roster"
)

// All is the class and name filter value that matches everything.
const All = "Semua"

// NormalizeClass canonicalizes a raw class label; placeholders and blanks are absent.
func NormalizeClass(raw string) null.String {
	return core.NormalizeOptional(raw)
}

// CollectClasses returns the distinct class labels of students, ordered, with All first.
func CollectClasses(students []roster.Student) []string {
	seen := make(map[string]struct{}, len(students))
	labels := make([]string, 0, len(students))
	for _, s := range students {
		if !s.Class.Valid {
			continue
		}
		class := NormalizeClass(s.Class.String)
		if !class.Valid || class.String == All {
			continue
		}
		if _, ok := seen[class.String]; ok {
			continue
		}
		seen[class.String] = struct{}{}
		labels = append(labels, class.String)
	}
	SortClasses(labels)
	return append([]string{All}, labels...)
}

// SortClasses orders labels: All, then numeric labels ascending, then the rest lexicographically.
func SortClasses(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return LessClass(labels[i], labels[j])
	})
}

func LessClass(a, b string) bool {
	if a == All || b == All {
		return a == All && b != All
	}
	na, aNum := classNumber(a)
	nb, bNum := classNumber(b)
	switch {
	case aNum && bNum:
		if na != nb {
			return na < nb
		}
		return a < b // "07" vs "7"
	case aNum != bNum:
		return aNum
	}
	return a < b
}

func classNumber(label string) (uint64, bool) {
	n, err := strconv.ParseUint(label, 10, 64)
	return n, err == nil
}
