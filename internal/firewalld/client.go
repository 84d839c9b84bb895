//go:build linux
// +build linux

package firewalld

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	dbusInterface  = "org.fedoraproject.FirewallD1"
	dbusPath       = "/org/fedoraproject/FirewallD1"
	dbusConfigPath = "/org/fedoraproject/FirewallD1/config"
)

var _ Querier = (*Client)(nil)

// Client answers the same queries as Firewalld by talking to the daemon on
// the system bus instead of running firewall-cmd. It only reads: no polkit
// authorization is requested.
type Client struct {
	conn       *dbus.Conn
	obj        dbus.BusObject
	version    string
	apiVersion APIVersion

	ctx     context.Context
	timeout time.Duration
}

// NewClient connects to firewalld on the system bus. Every D-Bus call runs
// under ctx and, when timeout is positive, is bounded by it on its own.
func NewClient(ctx context.Context, timeout time.Duration) (*Client, error) {
	slog.Debug("connecting to system bus")
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	c := &Client{
		conn:    conn,
		obj:     conn.Object(dbusInterface, dbusPath),
		ctx:     ctx,
		timeout: timeout,
	}
	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// handshake makes sure firewalld owns its bus name and learns which API
// generation it speaks.
func (c *Client) handshake() error {
	var hasOwner bool
	if err := c.callObject(c.conn.BusObject(), "org.freedesktop.DBus.NameHasOwner", &hasOwner, dbusInterface); err != nil {
		return fmt.Errorf("check firewalld owner: %w", err)
	}
	if !hasOwner {
		return ErrNotRunning
	}

	if state, err := c.property("state"); err != nil {
		if !isPermissionDenied(err) {
			return fmt.Errorf("read firewalld state: %w", err)
		}
		slog.Warn("state read denied", "error", err)
	} else if state != "RUNNING" {
		slog.Warn("firewalld not fully running", "state", state)
	}

	version, err := c.property("version")
	if err != nil {
		slog.Warn("version detection failed, assuming v2 API", "error", err)
		c.apiVersion = APIv2
		return nil
	}
	c.version = version
	c.apiVersion = parseVersion(version)
	if c.apiVersion == APIUnknown {
		slog.Warn("unknown firewalld version, assuming v2 API", "version", version)
		c.apiVersion = APIv2
	}
	slog.Info("firewalld detected", "version", version, "api", c.apiVersion)
	return nil
}

func (c *Client) property(name string) (string, error) {
	var v dbus.Variant
	if err := c.call("org.freedesktop.DBus.Properties.Get", &v, dbusInterface, name); err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("property %s: unexpected value %v (%T)", name, v.Value(), v.Value())
	}
	return s, nil
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Version is the daemon version string, empty when it could not be read.
func (c *Client) Version() string { return c.version }

func (c *Client) APIVersion() APIVersion { return c.apiVersion }

var deniedNames = map[string]bool{
	"org.freedesktop.DBus.Error.AccessDenied":          true,
	"org.fedoraproject.FirewallD1.AccessDenied":        true,
	"org.fedoraproject.FirewallD1.NotAuthorized":       true,
	"org.fedoraproject.FirewallD1.Error.AccessDenied":  true,
	"org.fedoraproject.FirewallD1.Error.NotAuthorized": true,
}

var deniedPhrases = []string{"accessdenied", "permission denied", "not authorized", "notauthorized"}

func isPermissionDenied(err error) bool {
	var dbusErr *dbus.Error
	if errors.As(err, &dbusErr) && deniedNames[dbusErr.Name] {
		return true
	}
	return containsAny(strings.ToLower(err.Error()), deniedPhrases)
}

// isInvalidZone recognizes firewalld's INVALID_ZONE exception, which
// arrives either as the error name suffix or as the message prefix.
func isInvalidZone(err error) bool {
	var dbusErr *dbus.Error
	if errors.As(err, &dbusErr) && strings.HasSuffix(dbusErr.Name, ".INVALID_ZONE") {
		return true
	}
	return containsAny(strings.ToLower(err.Error()), []string{"invalid_zone", "invalid zone"})
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// mapError translates daemon errors into the package sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case isPermissionDenied(err):
		return ErrPermissionDenied
	case isInvalidZone(err):
		return fmt.Errorf("%w: %v", ErrInvalidZone, err)
	default:
		return err
	}
}

func (c *Client) call(method string, out any, args ...any) error {
	return c.callObject(c.obj, method, out, args...)
}

func (c *Client) callObject(obj dbus.BusObject, method string, out any, args ...any) error {
	slog.Debug("dbus call", "path", obj.Path(), "method", method, "args", args)
	ctx, cancel := c.callContext()
	defer cancel()
	call := obj.CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		slog.Debug("dbus call failed", "method", method, "error", call.Err)
		return fmt.Errorf("dbus %s: %w", method, call.Err)
	}
	if out == nil {
		return nil
	}
	if err := call.Store(out); err != nil {
		return fmt.Errorf("dbus store %s: %w", method, err)
	}
	return nil
}

// callContext derives the context for one D-Bus call.
func (c *Client) callContext() (context.Context, context.CancelFunc) {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) configObject() dbus.BusObject {
	return c.conn.Object(dbusInterface, dbusConfigPath)
}
