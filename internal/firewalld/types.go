package firewalld

import "errors"

// DefaultZoneName is the zone queried when the caller does not name one.
const DefaultZoneName = "public"

// Port is one opened port or port range with its protocol.
type Port struct {
	Port     string
	Protocol string
}

// String formats p the way firewall-cmd prints it, e.g. "22/tcp".
func (p Port) String() string {
	return p.Port + "/" + p.Protocol
}

// Zone is the typed view of one zone's settings.
type Zone struct {
	Name        string
	Active      bool
	Default     bool
	Target      string
	Services    []string
	Ports       []Port
	Protocols   []string
	Masquerade  bool
	Interfaces  []string
	Sources     []string
	IcmpBlocks  []string
	IcmpInvert  bool
	RichRules   []string
	Short       string
	Description string
}

// ZoneInfo maps a zone header, as printed by firewall-cmd, to the zone's
// key/value settings.
type ZoneInfo map[string]map[string]string

// Runner executes a shell command on the target host and returns its
// captured standard output. A non-zero exit must be reported as an error.
type Runner interface {
	CheckOutput(command string) (string, error)
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(command string) (string, error)

func (f RunnerFunc) CheckOutput(command string) (string, error) {
	return f(command)
}

// Querier is the read-only firewalld surface shared by the firewall-cmd
// module and the D-Bus client.
type Querier interface {
	Zones(permanent bool) ([]string, error)
	Services(permanent bool) ([]string, error)
	InfoZone(zone string, permanent bool) (ZoneInfo, error)
	DefaultZone(permanent bool) (string, error)
	Ports(zone string, permanent bool) ([]string, error)
}

var (
	ErrNotRunning       = errors.New("firewalld service is not running")
	ErrPermissionDenied = errors.New("permission denied (try sudo)")
	ErrUnsupportedAPI   = errors.New("firewalld version not supported")
	ErrInvalidZone      = errors.New("zone does not exist")
	ErrInvalidPort      = errors.New("invalid port descriptor")
)
