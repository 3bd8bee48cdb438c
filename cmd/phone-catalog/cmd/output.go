package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/viper"

	apiclient "github.com/gadgetph/phone-catalog/internal/api/client"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printPhonesTable(phones []domain.PhoneRecord) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tBRAND\tNAME\tPRICE\tBUCKET\tRAM\tSTORAGE\tPOPULAR\n")
	for i := range phones {
		p := &phones[i]
		price := fmt.Sprintf("₱%.2f", p.Price)
		if p.HasDiscount() {
			price = fmt.Sprintf("₱%.2f (was ₱%.2f)", p.Price, p.RegularPrice)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%v\n",
			p.ID,
			p.Brand,
			truncate(p.Name, 40),
			price,
			p.Bucket(),
			p.RAM,
			p.Storage,
			p.IsPopular,
		)
	}
	return tw.finish()
}

func printDropsTable(drops []domain.PriceDrop) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("BRAND\tNAME\tPRICE\tWAS\tSAVINGS\tPERCENT\n")
	for i := range drops {
		d := &drops[i]
		tw.writef("%s\t%s\t₱%.2f\t₱%.2f\t₱%.2f\t%d%%\n",
			d.Brand,
			truncate(d.Name, 40),
			d.Price,
			d.RegularPrice,
			d.Savings,
			d.Percent,
		)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
