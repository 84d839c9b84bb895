//go:build linux
// +build linux

package firewalld

import (
	"strconv"
	"strings"
)

// APIVersion is the generation of the firewalld D-Bus API. Zone settings
// and the permanent config object need APIv2.
type APIVersion int

const (
	APIUnknown APIVersion = iota
	APIv1
	APIv2
)

// parseVersion maps a daemon version such as "1.3.2" to its API
// generation. Only the major number matters: 0.x is v1.
func parseVersion(version string) APIVersion {
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	n, err := strconv.Atoi(major)
	switch {
	case err != nil || n < 0:
		return APIUnknown
	case n == 0:
		return APIv1
	default:
		return APIv2
	}
}

var apiVersionNames = map[APIVersion]string{
	APIv1: "v1 (firewalld 0.x)",
	APIv2: "v2 (firewalld 1.x+)",
}

func (v APIVersion) String() string {
	if name, ok := apiVersionNames[v]; ok {
		return name
	}
	return "unknown"
}
