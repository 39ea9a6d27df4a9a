package console

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/laika-mvc/laika/internal"
)

const (
	defaultTableWidth = 120
	minTableWidth     = 60
	pipelineSeparator = " > "
)

var methodStyles = map[string]lipgloss.Style{
	http.MethodGet:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	http.MethodPost:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	http.MethodPut:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	http.MethodDelete:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	http.MethodPatch:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	http.MethodHead:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	http.MethodOptions: lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true),
}

// renderRoutes writes routes as a table. Colors are downsampled to what the
// output supports and stripped when it is not a terminal.
func renderRoutes(out io.Writer, routes []internal.RouteInfo, color bool) error {
	w := colorprofile.NewWriter(out, os.Environ())
	if !color {
		w.Profile = colorprofile.NoTTY
	}

	rows := make([][]string, 0, len(routes))
	for _, rt := range routes {
		method := rt.Method
		if style, ok := methodStyles[method]; ok && color {
			method = style.Render(method)
		}
		name := rt.Name
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{
			method,
			rt.Pattern,
			name,
			rt.Handler,
			strings.Join(rt.Pipeline, pipelineSeparator),
		})
	}

	border := lipgloss.NewStyle()
	if color {
		border = border.Foreground(lipgloss.Color("240"))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 1)
			if row == table.HeaderRow && color {
				style = style.Bold(true).Foreground(lipgloss.Color("230"))
			}
			return style
		}).
		Headers("Method", "Pattern", "Name", "Handler", "Pipeline").
		Rows(rows...).
		Width(tableWidth(out))

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// tableWidth is the terminal width when out is one, else defaultTableWidth.
func tableWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultTableWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultTableWidth
	}
	return max(minTableWidth, width)
}
