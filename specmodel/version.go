package specmodel

import "fmt"

// Version is one of the three spec versions this system understands,
// totally ordered by semantic version.
type Version uint8

const (
	V1_2 Version = iota
	V2_0
	V3_0_0
)

// versionNames keeps the canonical wire-form string for each Version.
var versionNames = map[Version]string{
	V1_2:   "1.2",
	V2_0:   "2.0",
	V3_0_0: "3.0.0",
}

func (v Version) String() string {
	if s, ok := versionNames[v]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", uint8(v))
}

// ParseVersion maps a wire-form version string to a Version. The returned
// bool is false for anything outside {1.2, 2.0, 3.0.0}.
func ParseVersion(s string) (Version, bool) {
	switch s {
	case "1.2":
		return V1_2, true
	case "2.0":
		return V2_0, true
	case "3.0.0":
		return V3_0_0, true
	default:
		return 0, false
	}
}

// Compare returns <0, 0, >0 as v is before, equal to, or after other.
func (v Version) Compare(other Version) int {
	return int(v) - int(other)
}

// Before reports whether v is strictly earlier than other.
func (v Version) Before(other Version) bool { return v.Compare(other) < 0 }
