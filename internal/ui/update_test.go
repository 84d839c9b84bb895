package ui

import (
	"errors"
	"strings"
	"testing"

	"fwprobe/internal/firewalld"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeQuerier struct {
	zones       []string
	defaultZone string
	info        map[string]firewalld.ZoneInfo
	zonesErr    error
	infoCalls   []string
}

func (f *fakeQuerier) Zones(permanent bool) ([]string, error) {
	return f.zones, f.zonesErr
}

func (f *fakeQuerier) Services(permanent bool) ([]string, error) {
	return nil, nil
}

func (f *fakeQuerier) InfoZone(zone string, permanent bool) (firewalld.ZoneInfo, error) {
	f.infoCalls = append(f.infoCalls, zone)
	info, ok := f.info[zone]
	if !ok {
		return nil, errors.New("INVALID_ZONE")
	}
	return info, nil
}

func (f *fakeQuerier) DefaultZone(permanent bool) (string, error) {
	return f.defaultZone, nil
}

func (f *fakeQuerier) Ports(zone string, permanent bool) ([]string, error) {
	return nil, nil
}

func newFake() *fakeQuerier {
	return &fakeQuerier{
		zones:       []string{"dmz", "public", "work"},
		defaultZone: "public",
		info: map[string]firewalld.ZoneInfo{
			"dmz":    {"dmz": {"target": "default", "services": "ssh"}},
			"public": {"public (default, active)": {"target": "default", "services": "ssh dhcpv6-client", "ports": "22/tcp"}},
			"work":   {"work": {"target": "ACCEPT"}},
		},
	}
}

// drive feeds the message produced by cmd back into the model.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command, got nil")
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(newFake(), Options{Permanent: true})
	if !m.loading {
		t.Fatalf("loading = false, want true")
	}
	if !m.permanent {
		t.Fatalf("permanent = false, want true")
	}
	if m.currentZone() != "" {
		t.Fatalf("currentZone() = %q, want empty", m.currentZone())
	}
}

func TestZonesSelectDefaultAndLoadInfo(t *testing.T) {
	q := newFake()
	m := NewModel(q, Options{})

	m = drive(t, m, fetchZonesCmd(q, false))
	if m.currentZone() != "public" {
		t.Fatalf("currentZone() = %q, want public", m.currentZone())
	}
	if !m.loading || m.pendingZone != "public" {
		t.Fatalf("loading = %v, pendingZone = %q, want info fetch for public", m.loading, m.pendingZone)
	}

	m = drive(t, m, fetchZoneInfoCmd(q, "public", false))
	if m.loading || m.err != nil {
		t.Fatalf("loading = %v, err = %v", m.loading, m.err)
	}
	z := m.currentZoneData()
	if z == nil || !z.Default || len(z.Services) != 2 {
		t.Fatalf("currentZoneData() = %#v", z)
	}
	if view := m.View(); !strings.Contains(view, "dhcpv6-client") {
		t.Fatalf("View() does not show zone services:\n%s", view)
	}
}

func TestInitialZoneOption(t *testing.T) {
	q := newFake()
	m := NewModel(q, Options{Zone: "work"})
	m = drive(t, m, fetchZonesCmd(q, false))
	if m.currentZone() != "work" {
		t.Fatalf("currentZone() = %q, want work", m.currentZone())
	}
}

func TestNavigationFetchesInfo(t *testing.T) {
	q := newFake()
	m := NewModel(q, Options{})
	m = drive(t, m, fetchZonesCmd(q, false))
	m = drive(t, m, fetchZoneInfoCmd(q, "public", false))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = next.(Model)
	if m.currentZone() != "work" {
		t.Fatalf("currentZone() = %q, want work", m.currentZone())
	}
	m = drive(t, m, cmd)
	if m.infoZone != "work" {
		t.Fatalf("infoZone = %q, want work", m.infoZone)
	}

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if cmd != nil || next.(Model).currentZone() != "work" {
		t.Fatalf("moving past the last zone should be a no-op")
	}
}

func TestStaleZoneInfoIgnored(t *testing.T) {
	q := newFake()
	m := NewModel(q, Options{})
	m = drive(t, m, fetchZonesCmd(q, false))

	next, _ := m.Update(zoneInfoMsg{zone: "dmz", info: q.info["dmz"]})
	m = next.(Model)
	if m.info != nil {
		t.Fatalf("info = %#v, want stale message dropped", m.info)
	}
	if !m.loading {
		t.Fatalf("loading = false, want still loading public")
	}
}

func TestTogglePermanentRefetches(t *testing.T) {
	q := newFake()
	m := NewModel(q, Options{})
	m = drive(t, m, fetchZonesCmd(q, false))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("P")})
	m = next.(Model)
	if !m.permanent || !m.loading {
		t.Fatalf("permanent = %v, loading = %v, want both true", m.permanent, m.loading)
	}
	msg := cmd()
	zm, ok := msg.(zonesMsg)
	if !ok || !zm.permanent {
		t.Fatalf("toggle cmd returned %#v, want permanent zonesMsg", msg)
	}

	// a runtime answer arriving late must not override the permanent view
	next, _ = m.Update(zonesMsg{zones: []string{"other"}, permanent: false})
	if next.(Model).zones[0] == "other" {
		t.Fatalf("runtime zones applied in permanent mode")
	}
}

func TestZoneErrors(t *testing.T) {
	q := newFake()
	q.zonesErr = errors.New("exit status 252")
	m := NewModel(q, Options{})
	m = drive(t, m, fetchZonesCmd(q, false))
	if m.err == nil || m.loading {
		t.Fatalf("err = %v, loading = %v, want error and not loading", m.err, m.loading)
	}
	if view := m.View(); !strings.Contains(view, "exit status 252") {
		t.Fatalf("View() does not show error:\n%s", view)
	}

	q.zonesErr = nil
	q.zones = []string{}
	m = drive(t, m, fetchZonesCmd(q, false))
	if m.err == nil {
		t.Fatalf("err = nil, want no zones error")
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(newFake(), Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("q returned nil cmd, want tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q cmd did not quit")
	}
}

func TestMainSize(t *testing.T) {
	w, h := mainSize(120, 40)
	if w != 120-sidebarWidth-8 || h != 34 {
		t.Fatalf("mainSize(120, 40) = %d, %d", w, h)
	}
	w, h = mainSize(10, 2)
	if w != 40 || h != 5 {
		t.Fatalf("mainSize(10, 2) = %d, %d, want minimums", w, h)
	}
}

func TestRefreshKeepsSelection(t *testing.T) {
	q := newFake()
	m := NewModel(q, Options{Zone: "work"})
	m = drive(t, m, fetchZonesCmd(q, false))

	// a zone appears before the selected one
	q.zones = []string{"block", "dmz", "public", "work"}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = drive(t, next.(Model), cmd)
	if m.currentZone() != "work" {
		t.Fatalf("currentZone() after refresh = %q, want work", m.currentZone())
	}
}
