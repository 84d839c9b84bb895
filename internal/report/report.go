// Package report writes query results for people and for scripts.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fwprobe/internal/firewalld"

	"github.com/charmbracelet/lipgloss"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Renderer struct {
	w      io.Writer
	format string
	color  bool

	title lipgloss.Style
	key   lipgloss.Style
	dim   lipgloss.Style
}

func New(w io.Writer, format string, color bool) (*Renderer, error) {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
	case "":
		format = FormatText
	default:
		return nil, fmt.Errorf("unsupported output format %q (use text|json|yaml)", format)
	}

	lr := lipgloss.NewRenderer(w)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		w:      w,
		format: format,
		color:  color,
		title:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		key:    lr.NewStyle().Foreground(lipgloss.Color("62")),
		dim:    lr.NewStyle().Foreground(lipgloss.Color("240")),
	}, nil
}

// List writes services or port descriptors. In text form the items follow
// the title one per line.
func (r *Renderer) List(title string, items []string) error {
	if items == nil {
		items = []string{}
	}
	if r.format != FormatText {
		return r.encode(items)
	}

	var b strings.Builder
	b.WriteString(r.title.Render(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(r.dim.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, item := range items {
		b.WriteString("  " + item + "\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) Value(title, value string) error {
	if r.format != FormatText {
		return r.encode(value)
	}
	_, err := fmt.Fprintf(r.w, "%s %s\n", r.title.Render(title+":"), value)
	return err
}

// ZoneInfo writes zones sorted by header and keys sorted within a zone.
func (r *Renderer) ZoneInfo(info firewalld.ZoneInfo) error {
	if info == nil {
		info = firewalld.ZoneInfo{}
	}
	if r.format != FormatText {
		return r.encode(info)
	}

	var b strings.Builder
	for _, header := range info.Names() {
		b.WriteString(r.title.Render(header))
		b.WriteString("\n")
		settings := info[header]
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("  " + r.key.Render(k+":") + " " + settings[k] + "\n")
		}
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		f := prettyjson.NewFormatter()
		f.DisabledColor = !r.color
		data, err := f.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(r.w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", r.format)
	}
}
