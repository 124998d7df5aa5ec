package figure

import "sort"

// Variant is one of the cosmetic presets of the dashboard.
type Variant struct {
	Name         string
	Title        string
	Header       string
	Height       int
	SubtitleX    string
	SubtitleY    float64
	ShowRepoLink bool
}

const (
	VariantClassic = "classic"
	VariantHeader  = "header"
	VariantCompact = "compact"

	longTitle = "U.S. & Russian EVAs, according to NASA (1965-2013)"
)

var variants = map[string]Variant{
	VariantClassic: {
		Name:         VariantClassic,
		Title:        longTitle,
		Height:       700,
		SubtitleX:    "1970-01-01",
		SubtitleY:    560,
		ShowRepoLink: true,
	},
	VariantHeader: {
		Name:         VariantHeader,
		Header:       longTitle,
		Height:       650,
		SubtitleX:    "1972-01-01",
		SubtitleY:    590,
		ShowRepoLink: true,
	},
	VariantCompact: {
		Name:      VariantCompact,
		Title:     "U.S. & Russian EVAs (1965-2013)",
		Height:    560,
		SubtitleX: "1970-01-01",
		SubtitleY: 560,
	},
}

func LookupVariant(name string) (Variant, bool) {
	v, ok := variants[name]
	return v, ok
}

func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
