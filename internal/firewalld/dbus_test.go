//go:build linux
// +build linux

package firewalld

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
)

func TestDaemonErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		denied      bool
		invalidZone bool
	}{
		{name: "bus access denied", err: &dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"}, denied: true},
		{name: "firewalld not authorized", err: &dbus.Error{Name: "org.fedoraproject.FirewallD1.NotAuthorized"}, denied: true},
		{name: "polkit message", err: errors.New("permission denied by polkit"), denied: true},
		{name: "invalid zone name", err: &dbus.Error{Name: "org.fedoraproject.FirewallD1.Exception.INVALID_ZONE"}, invalidZone: true},
		{name: "invalid zone message", err: errors.New("dbus getZoneSettings2: INVALID_ZONE: work"), invalidZone: true},
		{name: "unrelated", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPermissionDenied(tt.err); got != tt.denied {
				t.Fatalf("isPermissionDenied(%v) = %v, want %v", tt.err, got, tt.denied)
			}
			if got := isInvalidZone(tt.err); got != tt.invalidZone {
				t.Fatalf("isInvalidZone(%v) = %v, want %v", tt.err, got, tt.invalidZone)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	if err := mapError(nil); err != nil {
		t.Fatalf("mapError(nil) = %v, want nil", err)
	}
	if err := mapError(&dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("mapError(access denied) = %v, want ErrPermissionDenied", err)
	}
	if err := mapError(errors.New("INVALID_ZONE: work")); !errors.Is(err, ErrInvalidZone) {
		t.Fatalf("mapError(invalid zone) = %v, want ErrInvalidZone", err)
	}
	other := errors.New("bus closed")
	if err := mapError(other); err != other {
		t.Fatalf("mapError(other) = %v, want it unchanged", err)
	}
}

func TestAPIVersion(t *testing.T) {
	versions := map[string]APIVersion{
		"0.3.0":   APIv1,
		"0.9.9":   APIv1,
		"0":       APIv1,
		"1.0.0":   APIv2,
		" 1.3.2 ": APIv2,
		"2.1":     APIv2,
		"":        APIUnknown,
		"v1.0":    APIUnknown,
		"-1.0":    APIUnknown,
	}
	for version, want := range versions {
		if got := parseVersion(version); got != want {
			t.Errorf("parseVersion(%q) = %v, want %v", version, got, want)
		}
	}

	names := map[APIVersion]string{
		APIv1:          "v1 (firewalld 0.x)",
		APIv2:          "v2 (firewalld 1.x+)",
		APIUnknown:     "unknown",
		APIVersion(42): "unknown",
	}
	for v, want := range names {
		if got := v.String(); got != want {
			t.Errorf("APIVersion(%d).String() = %q, want %q", int(v), got, want)
		}
	}
}

func TestParseZoneSettings(t *testing.T) {
	settings := map[string]dbus.Variant{
		"services":             dbus.MakeVariant([]string{"ssh", "http"}),
		"ports":                dbus.MakeVariant([][]string{{"22", "tcp"}, {"53", "udp"}}),
		"protocols":            dbus.MakeVariant([]string{"icmp"}),
		"masquerade":           dbus.MakeVariant(true),
		"rules_str":            dbus.MakeVariant([]interface{}{`rule family="ipv4" source address="10.0.0.0/8" accept`}),
		"interfaces":           dbus.MakeVariant([]string{"eth0"}),
		"sources":              dbus.MakeVariant([]string{"10.0.0.0/24"}),
		"target":               dbus.MakeVariant("DROP"),
		"icmp_blocks":          dbus.MakeVariant([]string{"echo-request"}),
		"icmp_block_inversion": dbus.MakeVariant("yes"),
		"short":                dbus.MakeVariant("Public"),
	}

	want := &Zone{
		Name:       "public",
		Target:     "DROP",
		Services:   []string{"ssh", "http"},
		Ports:      []Port{{Port: "22", Protocol: "tcp"}, {Port: "53", Protocol: "udp"}},
		Protocols:  []string{"icmp"},
		Masquerade: true,
		Interfaces: []string{"eth0"},
		Sources:    []string{"10.0.0.0/24"},
		IcmpBlocks: []string{"echo-request"},
		RichRules:  []string{`rule family="ipv4" source address="10.0.0.0/8" accept`},
		Short:      "Public",
	}
	// icmp_block_inversion has the wrong type and is skipped.
	if diff := cmp.Diff(want, parseZoneSettings("public", settings)); diff != "" {
		t.Fatalf("parseZoneSettings() mismatch (-want +got):\n%s", diff)
	}
}

func TestVariantToPorts(t *testing.T) {
	tests := []struct {
		name    string
		input   dbus.Variant
		want    []Port
		wantErr bool
	}{
		{
			name:  "tuples",
			input: dbus.MakeVariant([][]string{{"80", "tcp"}}),
			want:  []Port{{Port: "80", Protocol: "tcp"}},
		},
		{
			name:  "descriptors",
			input: dbus.MakeVariant([]string{"53/udp", "60000-61000/udp"}),
			want:  []Port{{Port: "53", Protocol: "udp"}, {Port: "60000-61000", Protocol: "udp"}},
		},
		{
			name:  "mixed interfaces",
			input: dbus.MakeVariant([]interface{}{[]interface{}{"22", "tcp"}, []string{"443", "tcp"}, "8080/tcp"}),
			want:  []Port{{Port: "22", Protocol: "tcp"}, {Port: "443", Protocol: "tcp"}, {Port: "8080", Protocol: "tcp"}},
		},
		{
			name:    "short tuple",
			input:   dbus.MakeVariant([][]string{{"80"}}),
			wantErr: true,
		},
		{
			name:    "map",
			input:   dbus.MakeVariant(map[string]string{"p": "80/tcp"}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := variantToPorts(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("variantToPorts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); !tt.wantErr && diff != "" {
				t.Fatalf("variantToPorts() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeActiveZones(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want map[string][]string
	}{
		{
			name: "firewalld 0.x",
			in:   map[string][]string{"public": {"eth0", "eth0"}},
			want: map[string][]string{"public": {"eth0"}},
		},
		{
			name: "firewalld 1.x",
			in: map[string]map[string][]string{
				"public":   {"sources": {"10.0.0.0/24"}, "interfaces": {"eth0"}},
				"internal": {"interfaces": {"eth1"}},
			},
			want: map[string][]string{"public": {"eth0", "10.0.0.0/24"}, "internal": {"eth1"}},
		},
		{
			name: "variant values",
			in:   map[string]dbus.Variant{"public": dbus.MakeVariant([]interface{}{"eth0", 7, "eth0"})},
			want: map[string][]string{"public": {"eth0"}},
		},
		{
			name: "wrapped",
			in:   dbus.MakeVariant(map[string]interface{}{"work": map[string]interface{}{"interfaces": []string{"wlan0"}}}),
			want: map[string][]string{"work": {"wlan0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeActiveZones(tt.in)
			if err != nil {
				t.Fatalf("normalizeActiveZones() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("normalizeActiveZones() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := normalizeActiveZones(42); err == nil {
		t.Fatalf("normalizeActiveZones(42) error = nil, want error")
	}
}

func TestZoneHeader(t *testing.T) {
	tests := map[string]*Zone{
		"block":                    {Name: "block"},
		"public (active)":          {Name: "public", Active: true},
		"public (default)":         {Name: "public", Default: true},
		"public (default, active)": {Name: "public", Default: true, Active: true},
	}
	for want, z := range tests {
		header := zoneHeader(z)
		if header != want {
			t.Fatalf("zoneHeader(%+v) = %q, want %q", z, header, want)
		}
		name, active, isDefault := ParseZoneHeader(header)
		if name != z.Name || active != z.Active || isDefault != z.Default {
			t.Fatalf("ParseZoneHeader(%q) = %q %v %v", header, name, active, isDefault)
		}
	}
}

func TestZoneSettingsInfoParsesBack(t *testing.T) {
	z := &Zone{
		Name:       "public",
		Services:   []string{"ssh", "http"},
		Ports:      []Port{{Port: "22", Protocol: "tcp"}, {Port: "53", Protocol: "udp"}},
		Interfaces: []string{"eth0"},
		Masquerade: true,
	}

	info := zoneSettingsInfo(z)
	want := map[string]string{
		"target":               "default",
		"icmp-block-inversion": "no",
		"interfaces":           "eth0",
		"sources":              "",
		"services":             "ssh http",
		"ports":                "22/tcp 53/udp",
		"protocols":            "",
		"masquerade":           "yes",
		"icmp-blocks":          "",
		"rich rules":           "",
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Fatalf("zoneSettingsInfo() mismatch (-want +got):\n%s", diff)
	}

	parsed, ok := ZoneInfo{"public": info}.Zone("public")
	if !ok {
		t.Fatalf("Zone() ok = false")
	}
	if diff := cmp.Diff(z.Ports, parsed.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
	if !parsed.Masquerade || parsed.Target != "default" || parsed.RichRules != nil {
		t.Fatalf("parsed zone = %+v", parsed)
	}
}

func TestCallContextBoundsEachCall(t *testing.T) {
	c := &Client{ctx: context.Background(), timeout: 50 * time.Millisecond}

	first, cancel := c.callContext()
	deadline, ok := first.Deadline()
	cancel()
	if !ok || time.Until(deadline) > 50*time.Millisecond {
		t.Fatalf("first call deadline = %v, %v, want within 50ms", deadline, ok)
	}

	time.Sleep(100 * time.Millisecond)
	later, cancel := c.callContext()
	defer cancel()
	if err := later.Err(); err != nil {
		t.Fatalf("call after idle err = %v, want fresh deadline", err)
	}

	parent, stop := context.WithCancel(context.Background())
	c = &Client{ctx: parent}
	unbounded, cancel := c.callContext()
	defer cancel()
	if _, ok := unbounded.Deadline(); ok {
		t.Fatalf("zero timeout call has a deadline")
	}
	stop()
	if !errors.Is(unbounded.Err(), context.Canceled) {
		t.Fatalf("call context err = %v, want parent cancellation", unbounded.Err())
	}

	bare, cancel := (&Client{}).callContext()
	defer cancel()
	if bare.Err() != nil {
		t.Fatalf("nil parent context err = %v", bare.Err())
	}
}

func TestZoneSettingsInfoKeepsRichRulesApart(t *testing.T) {
	rules := []string{`rule family="ipv4" accept`, `rule service name="http" reject`}
	info := zoneSettingsInfo(&Zone{Name: "work", RichRules: rules})

	z, ok := ZoneInfo{"work": info}.Zone("work")
	if !ok {
		t.Fatalf("Zone() ok = false")
	}
	if diff := cmp.Diff(rules, z.RichRules); diff != "" {
		t.Fatalf("RichRules mismatch (-want +got):\n%s", diff)
	}
}
