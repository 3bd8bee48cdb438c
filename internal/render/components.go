// Package render produces HTML fragments for catalog records using templ
// runtime components. Output is deterministic for a given record so
// fragments can be cached downstream.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// PlaceholderImage is substituted when a record has no product image.
const PlaceholderImage = "/static/img/phone-placeholder.png"

// specEntry is one labelled spec line; entries whose value is the
// not-available sentinel are omitted from output entirely.
type specEntry struct {
	label string
	value string
}

func specEntries(p *domain.PhoneRecord) []specEntry {
	all := []specEntry{
		{"RAM", p.RAM},
		{"Storage", p.Storage},
		{"Camera", p.Camera},
		{"Display", p.Display},
		{"Processor", p.Processor},
		{"Battery", p.Battery},
	}
	out := all[:0]
	for _, e := range all {
		if e.value != "" && e.value != domain.NotAvailable {
			out = append(out, e)
		}
	}
	return out
}

func imageURL(p *domain.PhoneRecord) string {
	if p.ImageURL == "" {
		return PlaceholderImage
	}
	return p.ImageURL
}

func peso(amount float64) string {
	return fmt.Sprintf("₱%s", formatThousands(amount))
}

// formatThousands renders a price with comma separators and two decimals,
// matching the storefront's display format.
func formatThousands(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + fracPart
}

// PhoneRow renders one catalog list row.
func PhoneRow(p domain.PhoneRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div class="phone-row" data-id="` + templ.EscapeString(p.ID) + `">`)
		b.WriteString(`<img class="phone-image" src="` + templ.EscapeString(imageURL(&p)) + `" alt="` + templ.EscapeString(p.Name) + `">`)
		b.WriteString(`<div class="phone-main">`)
		b.WriteString(`<span class="phone-brand">` + templ.EscapeString(p.Brand) + `</span>`)
		b.WriteString(`<a class="phone-name" href="` + templ.EscapeString(p.ProductURL) + `">` + templ.EscapeString(p.Name) + `</a>`)

		entries := specEntries(&p)
		if len(entries) > 0 {
			b.WriteString(`<ul class="phone-specs">`)
			for _, e := range entries {
				b.WriteString(`<li>` + templ.EscapeString(e.label) + `: ` + templ.EscapeString(e.value) + `</li>`)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</div>`)

		b.WriteString(`<div class="phone-pricing">`)
		if p.HasDiscount() {
			b.WriteString(`<span class="price-regular">` + peso(p.RegularPrice) + `</span>`)
			b.WriteString(`<span class="price-sale">` + peso(p.Price) + `</span>`)
		} else {
			b.WriteString(`<span class="price">` + peso(p.Price) + `</span>`)
		}
		b.WriteString(`<a class="deal-link" href="` + templ.EscapeString(p.DealURL) + `" rel="nofollow">View Deal</a>`)
		b.WriteString(`</div>`)

		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// DropRow renders one price-drop leaderboard row.
func DropRow(d domain.PriceDrop) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div class="drop-row" data-id="` + templ.EscapeString(d.ID) + `">`)
		b.WriteString(`<span class="drop-name">` + templ.EscapeString(d.Brand) + ` ` + templ.EscapeString(d.Name) + `</span>`)
		b.WriteString(`<span class="drop-regular">` + peso(d.RegularPrice) + `</span>`)
		b.WriteString(`<span class="drop-price">` + peso(d.Price) + `</span>`)
		b.WriteString(fmt.Sprintf(`<span class="drop-savings">save %s (%d%%)</span>`, peso(d.Savings), d.Percent))
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// PickCard renders one popular-pick card.
func PickCard(p domain.PhoneRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div class="pick-card" data-id="` + templ.EscapeString(p.ID) + `">`)
		b.WriteString(`<img src="` + templ.EscapeString(imageURL(&p)) + `" alt="` + templ.EscapeString(p.Name) + `">`)
		b.WriteString(`<span class="pick-name">` + templ.EscapeString(p.Name) + `</span>`)
		b.WriteString(`<span class="pick-price">` + peso(p.Price) + `</span>`)
		b.WriteString(`<a href="` + templ.EscapeString(p.DealURL) + `" rel="nofollow">View Deal</a>`)
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
