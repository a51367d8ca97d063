// Package parsers contains the signal collaborators that normalize raw
// payment notifications into canonical ledger entries: email and SMS credit
// notification text, and already-fetched blockchain transaction payloads.
//
// Parsing is best-effort against the notification formats currently seen in
// the field; text that does not match a known format yields no entries rather
// than an error.
package parsers

import (
	"regexp"
	"strings"
	"time"

	"deposit-reconciliation-service/internal/ledger"
	"deposit-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

var (
	rupeeAmountPattern  = regexp.MustCompile(`(?i)(?:rs|inr|₹)\s*([\d,]+\.?\d*)`)
	upiReferencePattern = regexp.MustCompile(`(?i)reference\s+number[:\s]+(\d+)`)
	shortRefPattern     = regexp.MustCompile(`(?i)ref\s+(\d+)`)
	impsRefPattern      = regexp.MustCompile(`(?i)(?:imps\s+)?ref\s+no[:\s]+(\d+)`)
	senderPattern       = regexp.MustCompile(`(?i)from[:\s]+([A-Z][A-Z\s]+)`)
	emailTimePattern    = regexp.MustCompile(`time[:\s]+(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})`)
)

const emailTimeLayout = "2006-01-02 15:04:05"

// EmailParser extracts ledger entries from bank credit notification emails.
// It recognizes UPI credit and IMPS credit formats.
type EmailParser struct {
	// Now supplies the fallback timestamp when the notification carries no
	// parseable time
	Now func() time.Time
}

// NewEmailParser creates an email parser using the wall clock
func NewEmailParser() *EmailParser {
	return &EmailParser{Now: func() time.Time { return time.Now().UTC() }}
}

// Extract implements ledger.Extractor for email text
func (p *EmailParser) Extract(text string) ([]ledger.CanonicalEntry, error) {
	lowered := strings.ToLower(text)

	switch {
	case strings.Contains(lowered, "upi credit") || strings.Contains(lowered, "received via upi"):
		return p.extractOne(text, models.MethodUPI, upiReferencePattern, shortRefPattern), nil
	case strings.Contains(lowered, "imps credit") || strings.Contains(lowered, "imps ref"):
		return p.extractOne(text, models.MethodBank, impsRefPattern, shortRefPattern), nil
	}

	return nil, nil
}

func (p *EmailParser) extractOne(text string, method models.PaymentMethod, refPatterns ...*regexp.Regexp) []ledger.CanonicalEntry {
	amount, ok := parseRupeeAmount(text)
	if !ok {
		return nil
	}

	ref := firstMatch(text, refPatterns...)
	if ref == "" {
		return nil
	}

	timestamp := p.Now()
	if m := emailTimePattern.FindStringSubmatch(text); m != nil {
		if parsed, err := time.Parse(emailTimeLayout, m[1]); err == nil {
			timestamp = parsed
		}
	}

	return []ledger.CanonicalEntry{{
		Source:    models.SourceEmail,
		Method:    method,
		UTROrHash: ref,
		Amount:    amount,
		Sender:    parseSender(text),
		Timestamp: timestamp,
		RawData:   map[string]string{"email_text": text},
	}}
}

func parseRupeeAmount(text string) (decimal.Decimal, bool) {
	m := rupeeAmountPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func parseSender(text string) string {
	m := senderPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstMatch(text string, patterns ...*regexp.Regexp) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
