package nmea

import (
	"fmt"
	"sort"
	"strings"
)

// Capabilities is the set of sentence types a Parser accepts.
type Capabilities uint64

// Enable returns the set holding exactly types.
func Enable(types ...SentenceType) Capabilities {
	var c Capabilities
	for _, t := range types {
		c = c.With(t)
	}
	return c
}

func (c Capabilities) With(t SentenceType) Capabilities {
	if t == TypeUnknown || t >= typeCount {
		return c
	}
	return c | 1<<t
}

func (c Capabilities) Without(t SentenceType) Capabilities {
	return c &^ (1 << t)
}

func (c Capabilities) Has(t SentenceType) bool {
	return t != TypeUnknown && t < typeCount && c&(1<<t) != 0
}

// Contains reports whether every type of o is in c.
func (c Capabilities) Contains(o Capabilities) bool {
	return c&o == o
}

func (c Capabilities) Empty() bool { return c == 0 }

// Types lists the enabled types in code order.
func (c Capabilities) Types() []SentenceType {
	var out []SentenceType
	for t := TypeAAM; t < typeCount; t++ {
		if c.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c Capabilities) String() string {
	types := c.Types()
	codes := make([]string, len(types))
	for i, t := range types {
		codes[i] = t.String()
	}
	return strings.Join(codes, ",")
}

// Category bundles.
var (
	CapGNSS        = Enable(TypeALM, TypeGBS, TypeGGA, TypeGLL, TypeGNS, TypeGSA, TypeGST, TypeGSV, TypeRMC, TypeVTG, TypeZDA)
	CapWaypoint    = Enable(TypeAAM, TypeAPA, TypeAPB, TypeBOD, TypeBWC, TypeBWW, TypeWNC, TypeZFO, TypeZTG)
	CapDepth       = Enable(TypeDBK, TypeDBS, TypeDPT)
	CapHeading     = Enable(TypeHDT, TypeVHW)
	CapWeather     = Enable(TypeMDA, TypeMTW, TypeMWV)
	CapRadar       = Enable(TypeTTM)
	CapText        = Enable(TypeTXT)
	CapProprietary = Enable(TypeRMZ)
	// CapNavigation is what the position aggregator folds.
	CapNavigation = Enable(TypeGGA, TypeGLL, TypeGNS, TypeGSA, TypeGSV, TypeHDT, TypeRMC, TypeRMZ, TypeTXT, TypeVTG, TypeZDA)

	CapAll = CapGNSS | CapWaypoint | CapDepth | CapHeading | CapWeather | CapRadar | CapText | CapProprietary
)

var categories = map[string]Capabilities{
	"gnss":        CapGNSS,
	"waypoint":    CapWaypoint,
	"depth":       CapDepth,
	"heading":     CapHeading,
	"weather":     CapWeather,
	"radar":       CapRadar,
	"text":        CapText,
	"proprietary": CapProprietary,
	"navigation":  CapNavigation,
	"all":         CapAll,
}

// CategoryNames lists the bundle names ParseCapabilities accepts.
func CategoryNames() []string {
	out := make([]string, 0, len(categories))
	for name := range categories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseCapabilities builds a set from sentence codes ("GGA") and category
// names ("gnss"), case-insensitively. An empty list means CapAll.
func ParseCapabilities(names []string) (Capabilities, error) {
	if len(names) == 0 {
		return CapAll, nil
	}
	var c Capabilities
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if cat, ok := categories[strings.ToLower(name)]; ok {
			c |= cat
			continue
		}
		t := TypeFromCode(strings.ToUpper(name))
		if t == TypeUnknown {
			return 0, fmt.Errorf("unknown sentence type or category %q", raw)
		}
		c = c.With(t)
	}
	return c, nil
}
