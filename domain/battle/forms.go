package battle

import "strings"

// DefaultFormChangeSpecies share one HUD name across several forms that the
// lineup screen tells apart
var DefaultFormChangeSpecies = []string{
	"Rotom",
	"Tauros",
	"Urshifu",
	"Ogerpon",
	"Indeedee",
	"Basculegion",
	"Oinkologne",
	"Maushold",
	"Dudunsparce",
	"Lycanroc",
	"Oricorio",
	"Palafin",
	"Squawkabilly",
	"Tatsugiri",
	"Toxtricity",
	"Meowstic",
	"Landorus",
	"Thundurus",
	"Tornadus",
	"Enamorus",
	"Calyrex",
	"Necrozma",
	"ロトム",
	"ケンタロス",
}

// LabelName strips a template label suffix: "Rotom-Wash_2" becomes "Rotom-Wash"
func LabelName(label string) string {
	if i := strings.Index(label, "_"); i >= 0 {
		return label[:i]
	}
	return label
}

// FormResolver maps an ambiguous base species name to the full form found in
// one side's lineup
type FormResolver struct {
	resolved map[string]string
}

// NewFormResolver builds a resolver for one lineup side. A base name resolves
// only when exactly one lineup entry contains it.
func NewFormResolver(species []string, lineup []string) FormResolver {
	resolved := make(map[string]string)
	for _, base := range species {
		var matches []string
		for _, name := range lineup {
			if strings.Contains(name, base) {
				matches = append(matches, name)
			}
		}
		if len(matches) == 1 {
			resolved[base] = matches[0]
		}
	}
	return FormResolver{resolved: resolved}
}

// Resolve returns the disambiguated name or the input unchanged
func (f FormResolver) Resolve(name string) string {
	if full, ok := f.resolved[name]; ok {
		return full
	}
	return name
}
