package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/realty/internal/catalog"
	"github.com/evcraddock/realty/internal/property"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertySummary prints a single property in text format.
func printPropertySummary(w io.Writer, p *property.Property) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "  ID:         %s\n", p.ID)
	fmt.Fprintf(w, "  Slug:       %s\n", p.Slug)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-11s %s\n", label+":", value)
		}
	}
	line("Type", p.PropertyType)
	line("Developer", p.Developer)
	line("Location", joinNonEmpty(", ", p.Location, p.Address.City, p.Address.State))
	if p.Price != "" {
		line("Price", formatPrice(p.Price))
	}
	if p.Area != "" {
		line("Area", strings.TrimSpace(p.Area+" "+p.AreaUnit))
	}
	line("BHK", strings.Join(p.Configuration, ", "))
	line("Possession", joinNonEmpty(" ", p.Possession, p.PossessionDate))
	line("Features", strings.Join(p.Features, ", "))
	line("Flags", strings.Join(flags(p), ", "))
	for _, c := range p.Configurations {
		fmt.Fprintf(w, "  - %s  carpet %s %s  price %s\n", c.BHKType, c.CarpetArea, c.CarpetAreaUnit, formatPrice(c.Price))
	}
	for _, img := range p.Images {
		fmt.Fprintf(w, "  image: %s\n", img)
	}
}

func flags(p *property.Property) []string {
	var out []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"featured", p.Featured},
		{"recommended", p.Recommend},
		{"new", p.NewProperty},
		{"resale", p.Resale},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return out
}

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(out io.Writer, props []property.Property) error {
	if len(props) == 0 {
		fmt.Fprintln(out, "No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tTYPE\tCITY\tPRICE\tBHK"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t-----\t----\t----\t-----\t---"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Title, 40), dash(p.PropertyType), dash(p.Address.City),
			dash(formatPrice(p.Price)), dash(strings.Join(p.Configuration, ","))); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	return w.Flush()
}

// printPage prints one page of results with a position footer.
func printPage(out io.Writer, page catalog.Page) error {
	if err := printPropertyTable(out, page.Items); err != nil {
		return err
	}
	if page.Total > 0 {
		fmt.Fprintf(out, "\nPage %d of %d (%d properties)\n", page.Page, page.TotalPages, page.Total)
	}
	return nil
}

// formatPrice groups the integer part of a numeric price with commas.
// Non-numeric prices are returned unchanged.
func formatPrice(s string) string {
	d, ok := catalog.ParsePrice(s)
	if !ok {
		return strings.TrimSpace(s)
	}

	neg := d.IsNegative()
	intPart := d.Abs().Truncate(0)
	frac := d.Abs().Sub(intPart)

	digits := intPart.String()
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)

	out := strings.Join(parts, ",")
	if !frac.Equal(decimal.Zero) {
		out += strings.TrimPrefix(frac.String(), "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
