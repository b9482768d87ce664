package bench

import (
	"fmt"
	"io"

	"github.com/born-ml/matbench/internal/tensor"
)

// Reporter prints benchmark progress lines.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Header announces the selected device.
func (p *Reporter) Header(device tensor.Device) error {
	_, err := fmt.Fprintf(p.w, "Benchmarking on: %s\n", device)
	return err
}

// Result prints the elapsed time and throughput of res.
func (p *Reporter) Result(res *Result) error {
	_, err := fmt.Fprintf(p.w, "Time taken: %.4fs\nGFLOPS: %.2f\n", res.Duration.Seconds(), res.GFLOPS)
	return err
}
