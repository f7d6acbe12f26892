package protocol

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known Darwin filter codes. Each code is the ASCII-derived tag the
// daemon registers under (e.g. "dga " -> 0x64676164); "no" maps to the
// FilterCodeNone sentinel.
var filterCodes = map[string]int64{
	"connection": 0x636E7370,
	"dga":        0x64676164,
	"hostlookup": 0x66726570,
	"injection":  0x696E6A65,
	"no":         FilterCodeNone,
	"reputation": 0x72657075,
	"session":    0x73657373,
	"useragent":  0x75736572,
	"logs":       0x4C4F4753,
	"anomaly":    0x414D4C59,
	"tanomaly":   0x544D4C59,
	"end":        0x454E4453,
	"sofa":       0x72676476,
}

// FilterCodeByName resolves a symbolic filter name, case-insensitively,
// to its wire code.
func FilterCodeByName(name string) (int64, error) {
	code, ok := filterCodes[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q (accepted: %s)", ErrUnknownFilter, name, strings.Join(FilterNames(), ", "))
	}
	return code, nil
}

// FilterNames returns the accepted filter names, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(filterCodes))
	for name := range filterCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
