package notifier

import (
	"fmt"
	"strings"

	"StockSeer/internal/pipeline"
)

// FormatForecastReport renders the horizon summary of one pipeline run
// as plain text, one line per horizon. Both the CLI and the Telegram
// notifier display this.
func FormatForecastReport(res *pipeline.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Forecast for %s (%dy lookback)\n", res.Symbol, res.LookbackYears))
	b.WriteString(fmt.Sprintf("Last close: %.2f on %s\n\n",
		res.LastObserved.Price, res.LastObserved.Date.Format("2006-01-02")))

	for _, h := range res.Horizons {
		b.WriteString(fmt.Sprintf("%-4s %s  %10.2f  [%.2f, %.2f]  %+.1f%%\n",
			h.Label, h.TargetDate.Format("2006-01-02"),
			h.Predicted, h.Lower, h.Upper, h.PctChange))
	}

	b.WriteString("\nBands are the 95% credible interval.")
	return b.String()
}
