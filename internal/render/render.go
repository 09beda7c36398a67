// Package render prints query results for a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"vehicle-search/internal/models"
)

const NoResults = "Nenhum veículo encontrado com esses critérios."

var (
	titleColor = color.New(color.Bold)
	warnColor  = color.New(color.FgYellow)
)

// Results writes a titled table, or a notice when items is empty.
func Results(w io.Writer, items []models.VehicleDTO) error {
	if len(items) == 0 {
		_, err := warnColor.Fprintln(w, NoResults)
		return err
	}

	if _, err := titleColor.Fprintf(w, "Resultados (%d)\n", len(items)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Marca\tModelo\tAno\tCor\tKM\tPreço (R$)\t")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t\n",
			it.Make, it.Model, it.Year, it.Color, Thousands(it.MileageKM), Money(it.Price))
	}
	return tw.Flush()
}

// Thousands groups digits with dots: 45000 -> 45.000.
func Thousands(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := group(strconv.Itoa(n))
	if neg {
		return "-" + s
	}
	return s
}

// Money formats a price the Brazilian way: 1234.5 -> 1.234,50.
func Money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	out := group(whole) + "," + frac
	if neg {
		return "-" + out
	}
	return out
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
