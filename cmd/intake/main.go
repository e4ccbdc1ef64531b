// Command intake walks an applicant through the intake wizard in a terminal
// and posts the finished application to the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
	"github.com/sngm3741/affiliate-intake/api/internal/intake/wizard"
	"github.com/sngm3741/affiliate-intake/api/internal/interfaces/tui"
)

func main() {
	var (
		apiFlag     = flag.String("api", "http://localhost:8080", "Base URL of the intake API")
		variantFlag = flag.String("variant", string(domain.VariantAffiliate), "Wizard variant (affiliate, early-access)")
		startFlag   = flag.Int("start", 1, "Step to start at (1-based)")
		timeoutFlag = flag.Duration("timeout", 30*time.Second, "Submission timeout")
	)
	flag.Parse()

	variant, err := domain.ParseVariant(*variantFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	submitter := wizard.NewHTTPSubmitter(*apiFlag, &http.Client{Timeout: *timeoutFlag})
	w := wizard.New(domain.StepsFor(variant), submitter, wizard.WithStartStep(*startFlag))

	_, err = tui.NewRunner(w, tui.NewSurveyDriver(os.Stdout)).Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, tui.ErrAborted), errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Aborted.")
		os.Exit(130)
	case errors.Is(err, tui.ErrNotSubmitted):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
