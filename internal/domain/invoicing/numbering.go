package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	periodPrefix  = "FAC"
	receiptPrefix = "REC"

	batchTimeLayout  = "20060102150405"
	directTimeLayout = "20060102150405.000"
)

// PeriodInvoiceNumber formats FAC-{year}-{accountNumber}-{readingSeq}
func PeriodInvoiceNumber(year int, accountNumber string, readingSeq int64) string {
	return fmt.Sprintf("%s-%d-%s-%d", periodPrefix, year, accountNumber, readingSeq)
}

// BatchInvoiceNumber formats REC-{batchID}-{readingSeq}
func BatchInvoiceNumber(batchID string, readingSeq int64) string {
	return fmt.Sprintf("%s-%s-%d", receiptPrefix, batchID, readingSeq)
}

// DirectPaymentNumber formats REC-{timestamp} with millisecond precision
func DirectPaymentNumber(when time.Time) string {
	ts := strings.Replace(when.UTC().Format(directTimeLayout), ".", "", 1)
	return fmt.Sprintf("%s-%s", receiptPrefix, ts)
}

// NewBatchID returns the payment instant (UTC, to the second) followed by
// six hex digits, so two batches confirmed in the same second stay distinct
func NewBatchID(when time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return when.UTC().Format(batchTimeLayout) + suffix
}
