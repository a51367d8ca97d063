package parsers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"deposit-reconciliation-service/internal/ledger"
	"deposit-reconciliation-service/internal/models"
)

// SMS timestamps come as DD-MM-YYYY HH:MM
var smsTimePattern = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})\s+(\d{2}:\d{2})`)

const smsTimeLayout = "2006-01-02 15:04"

// SMSParser extracts ledger entries from bank credit notification SMS text.
// It recognizes UPI and IMPS credit formats.
type SMSParser struct {
	// Now supplies the fallback timestamp when the message carries no
	// parseable time
	Now func() time.Time
}

// NewSMSParser creates an SMS parser using the wall clock
func NewSMSParser() *SMSParser {
	return &SMSParser{Now: func() time.Time { return time.Now().UTC() }}
}

// Extract implements ledger.Extractor for SMS text
func (p *SMSParser) Extract(text string) ([]ledger.CanonicalEntry, error) {
	lowered := strings.ToLower(text)

	var method models.PaymentMethod
	switch {
	case strings.Contains(lowered, "received via upi") || strings.Contains(lowered, "upi ref"):
		method = models.MethodUPI
	case strings.Contains(lowered, "imps"):
		method = models.MethodBank
	default:
		return nil, nil
	}

	amount, ok := parseRupeeAmount(text)
	if !ok {
		return nil, nil
	}

	ref := firstMatch(text, shortRefPattern)
	if ref == "" {
		return nil, nil
	}

	timestamp := p.Now()
	if m := smsTimePattern.FindStringSubmatch(text); m != nil {
		day, month, year, clock := m[1], m[2], m[3], m[4]
		normalized := fmt.Sprintf("%s-%s-%s %s", year, month, day, clock)
		if parsed, err := time.Parse(smsTimeLayout, normalized); err == nil {
			timestamp = parsed
		}
	}

	return []ledger.CanonicalEntry{{
		Source:    models.SourceSMS,
		Method:    method,
		UTROrHash: ref,
		Amount:    amount,
		Sender:    parseSender(text),
		Timestamp: timestamp,
		RawData:   map[string]string{"sms_text": text},
	}}, nil
}
