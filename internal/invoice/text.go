package invoice

import (
	"fmt"
	"strings"

	"github.com/h0rv/posdash/internal/form"
	"github.com/muesli/reflow/wordwrap"
)

const minWidth = 40

// Text renders inv as plain text no wider than width.
func Text(inv Invoice, width int) string {
	if width < minWidth {
		width = minWidth
	}
	var b strings.Builder

	fmt.Fprintf(&b, "Invoice %s\n", orDash(inv.Number))
	fmt.Fprintf(&b, "Date:     %s\n", inv.DateLabel())
	fmt.Fprintf(&b, "Customer: %s\n", orDash(inv.Customer))
	fmt.Fprintf(&b, "Email:    %s\n", orDash(inv.Email))
	fmt.Fprintf(&b, "Phone:    %s\n\n", orDash(inv.Phone))

	nameWidth := width - 30
	fmt.Fprintf(&b, "%-*s %5s %10s %12s\n", nameWidth, "Product", "Qty", "Price", "Amount")
	b.WriteString(strings.Repeat("-", width) + "\n")
	if len(inv.Lines) == 0 {
		b.WriteString("No products\n")
	}
	for _, l := range inv.Lines {
		fmt.Fprintf(&b, "%-*s %5d %10s %12s\n",
			nameWidth, truncate(l.Name, nameWidth), l.Quantity, form.Money(l.UnitPrice), form.Money(l.Amount))
	}
	b.WriteString(strings.Repeat("-", width) + "\n")

	total := func(label, value string) {
		fmt.Fprintf(&b, "%*s %12s\n", width-13, label, value)
	}
	total("Subtotal", form.Money(inv.Subtotal))
	total("Discount", form.Deduction(inv.Discount))
	total("Tax", form.Surcharge(inv.Tax))
	total("Total", form.Money(inv.Total))

	if inv.Notes != "" {
		b.WriteString("\nNotes:\n")
		b.WriteString(wordwrap.String(inv.Notes, width))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
