package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/marssim-go/internal/infrastructure/catalog"
)

// TreeFormatter renders catalog entries as indented trees
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatBuilding renders a building type and its functions
func (f *TreeFormatter) FormatBuilding(b *catalog.BuildingDef) string {
	var sb strings.Builder
	sb.WriteString(f.bold(b.Type))
	sb.WriteByte('\n')
	for i, fn := range b.Functions {
		last := i == len(b.Functions)-1
		sb.WriteString(branch(last))
		sb.WriteString(f.functionLine(fn))
		sb.WriteByte('\n')

		details := functionDetails(fn)
		for j, d := range details {
			sb.WriteString(stem(last))
			sb.WriteString(branch(j == len(details)-1))
			sb.WriteString(d)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FormatProcess renders a recipe with its inputs and outputs
func (f *TreeFormatter) FormatProcess(p *catalog.ProcessDef) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s, tech %d, skill %d]\n", f.bold(p.Name), strings.ToUpper(p.Workshop), p.TechLevel, p.SkillLevel)
	fmt.Fprintf(&sb, "%swork %.0f msol, process %.0f msol, %.2f kW\n", branch(false), p.WorkTime, p.ProcessTime, p.PowerRequired)
	fmt.Fprintf(&sb, "%sin:  %s\n", branch(false), itemList(p.Inputs))
	fmt.Fprintf(&sb, "%sout: %s\n", branch(true), f.color(colorGreen, itemList(p.Outputs)))
	return sb.String()
}

func (f *TreeFormatter) functionLine(fn catalog.FunctionDef) string {
	line := f.color(colorCyan, strings.ToUpper(fn.Type))
	var attrs []string
	if fn.Capacity > 0 {
		attrs = append(attrs, fmt.Sprintf("capacity %d", fn.Capacity))
	}
	if fn.TechLevel > 0 {
		attrs = append(attrs, fmt.Sprintf("tech %d", fn.TechLevel))
	}
	if len(fn.Spots) > 0 {
		attrs = append(attrs, fmt.Sprintf("%d spots", len(fn.Spots)))
	}
	if len(attrs) > 0 {
		line += " (" + strings.Join(attrs, ", ") + ")"
	}
	return line
}

func functionDetails(fn catalog.FunctionDef) []string {
	var out []string
	for _, k := range sortedKeys(fn.Properties) {
		out = append(out, fmt.Sprintf("%s: %v", k, fn.Properties[k]))
	}
	if len(fn.Capacities) > 0 {
		out = append(out, "stores "+amountList(fn.Capacities))
	}
	if len(fn.InitialStock) > 0 {
		out = append(out, "starts with "+amountList(fn.InitialStock))
	}
	for _, p := range fn.Processes {
		state := "off"
		if p.DefaultOn {
			state = "on"
		}
		out = append(out, fmt.Sprintf("%s (%s, %.2f kW)", p.Name, state, p.PowerRequired))
	}
	return out
}

func itemList(items []catalog.ItemDef) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%g %s", it.Amount, it.Resource)
	}
	return strings.Join(parts, ", ")
}

func amountList(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%g kg %s", m[k], k)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func stem(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorCyan  = "\033[36m"
	colorGreen = "\033[32m"
)

func (f *TreeFormatter) color(code, text string) string {
	if !f.useColors {
		return text
	}
	return code + text + colorReset
}

func (f *TreeFormatter) bold(text string) string {
	return f.color(colorBold, text)
}
