package notifier

import "arodriguez/craigwatch/internal/digest"

// Notifier delivers a composed report to the configured recipient.
type Notifier interface {
	// Send delivers the report. Failures are retried by the pipeline.
	Send(report *digest.Report) error
}
