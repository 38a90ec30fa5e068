package infra

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Printer hands receipt jobs to the spooler device. It is intentionally
// thin: byte-level ticket formatting belongs to the print subsystem, not to
// the sale engine — here a job is a line written to the configured device.
type Printer struct {
	device string
}

func NewPrinter(device string) *Printer {
	return &Printer{device: device}
}

// PrintReceipt is best-effort: callers log and swallow the error, a failed
// print never surfaces to the sale that requested it.
func (p *Printer) PrintReceipt(_ context.Context, saleID, folio string) error {
	if p.device == "" {
		return fmt.Errorf("no printer device configured")
	}
	f, err := os.OpenFile(p.device, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open printer device: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "RECEIPT %s (%s) %s\n", folio, saleID, time.Now().Format(time.RFC3339))
	return err
}
