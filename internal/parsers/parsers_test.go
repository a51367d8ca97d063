package parsers

import (
	"testing"
	"time"

	"deposit-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

var fallbackTime = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fallbackTime }

func TestEmailParser_UPICredit(t *testing.T) {
	p := &EmailParser{Now: fixedClock}

	text := "Dear customer, UPI credit of Rs 500.00 received from: RAMESH KUMAR, reference number: 123456789012, time: 2024-01-15 10:30:00"
	entries, err := p.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Source != models.SourceEmail {
		t.Errorf("Expected EMAIL source, got %s", entry.Source)
	}
	if entry.Method != models.MethodUPI {
		t.Errorf("Expected UPI method, got %s", entry.Method)
	}
	if entry.UTROrHash != "123456789012" {
		t.Errorf("Expected reference number as UTR, got %q", entry.UTROrHash)
	}
	if !entry.Amount.Equal(decimal.NewFromFloat(500.00)) {
		t.Errorf("Expected amount 500.00, got %s", entry.Amount)
	}
	if entry.Sender != "RAMESH KUMAR" {
		t.Errorf("Expected sender RAMESH KUMAR, got %q", entry.Sender)
	}
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !entry.Timestamp.Equal(want) {
		t.Errorf("Expected notification time %s, got %s", want, entry.Timestamp)
	}
	if entry.RawData["email_text"] != text {
		t.Error("Expected raw text to be preserved")
	}
}

func TestEmailParser_IMPSCredit(t *testing.T) {
	p := &EmailParser{Now: fixedClock}

	entries, err := p.Extract("IMPS credit of Rs 1,250.50 from: SHYAM, IMPS Ref No: 987654321")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Method != models.MethodBank {
		t.Errorf("Expected BANK method, got %s", entry.Method)
	}
	if entry.UTROrHash != "987654321" {
		t.Errorf("Expected IMPS ref as UTR, got %q", entry.UTROrHash)
	}
	if !entry.Amount.Equal(decimal.NewFromFloat(1250.50)) {
		t.Errorf("Expected comma-grouped amount to parse, got %s", entry.Amount)
	}
	// No time in the notification: the clock supplies the timestamp
	if !entry.Timestamp.Equal(fallbackTime) {
		t.Errorf("Expected fallback timestamp, got %s", entry.Timestamp)
	}
}

func TestEmailParser_UnrecognizedText(t *testing.T) {
	p := &EmailParser{Now: fixedClock}

	tests := []struct {
		name string
		text string
	}{
		{"unrelated email", "Your monthly statement is ready for download"},
		{"credit without amount", "UPI credit received, reference number: 123456"},
		{"credit without reference", "UPI credit of Rs 500.00 received"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := p.Extract(tt.text)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("Expected no entries, got %d", len(entries))
			}
		})
	}
}

func TestSMSParser_UPICredit(t *testing.T) {
	p := &SMSParser{Now: fixedClock}

	entries, err := p.Extract("Rs 300.00 received via UPI from: ANITA, Ref 445566 on 15-01-2024 10:30")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Source != models.SourceSMS {
		t.Errorf("Expected SMS source, got %s", entry.Source)
	}
	if entry.Method != models.MethodUPI {
		t.Errorf("Expected UPI method, got %s", entry.Method)
	}
	if entry.UTROrHash != "445566" {
		t.Errorf("Expected ref as UTR, got %q", entry.UTROrHash)
	}
	if entry.Sender != "ANITA" {
		t.Errorf("Expected sender ANITA, got %q", entry.Sender)
	}
	// DD-MM-YYYY in the message becomes a normal timestamp
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !entry.Timestamp.Equal(want) {
		t.Errorf("Expected message time %s, got %s", want, entry.Timestamp)
	}
}

func TestSMSParser_IMPSCredit(t *testing.T) {
	p := &SMSParser{Now: fixedClock}

	entries, err := p.Extract("IMPS credit Rs 200 Ref 778899")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Method != models.MethodBank {
		t.Errorf("Expected BANK method, got %s", entry.Method)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected amount 200, got %s", entry.Amount)
	}
	if !entry.Timestamp.Equal(fallbackTime) {
		t.Errorf("Expected fallback timestamp, got %s", entry.Timestamp)
	}
}

func TestSMSParser_UnrecognizedText(t *testing.T) {
	p := &SMSParser{Now: fixedClock}

	entries, err := p.Extract("Your OTP for login is 1234. Do not share it.")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestChainParser_Parse(t *testing.T) {
	p := &ChainParser{Now: fixedClock}

	entry, err := p.Parse(ChainTransaction{
		TxID:    "0xabc123",
		Amount:  "0.517",
		Token:   "USDT",
		Network: "TRC20",
		From:    "TSenderAddr",
		To:      "TReceiverAddr",
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if entry.Source != models.SourceBlockchain {
		t.Errorf("Expected BLOCKCHAIN source, got %s", entry.Source)
	}
	if entry.Method != models.MethodCrypto {
		t.Errorf("Expected CRYPTO method, got %s", entry.Method)
	}
	if entry.UTROrHash != "0xabc123" {
		t.Errorf("Expected txid as hash, got %q", entry.UTROrHash)
	}
	if !entry.Amount.Equal(decimal.NewFromFloat(0.517)) {
		t.Errorf("Expected amount 0.517, got %s", entry.Amount)
	}
	if entry.Sender != "TSenderAddr" {
		t.Errorf("Expected sender address, got %q", entry.Sender)
	}
	if !entry.Timestamp.Equal(fallbackTime) {
		t.Errorf("Expected observation time, got %s", entry.Timestamp)
	}
	if entry.RawData["network"] != "TRC20" || entry.RawData["token"] != "USDT" {
		t.Error("Expected network and token in raw data")
	}
}

func TestChainParser_Invalid(t *testing.T) {
	p := &ChainParser{Now: fixedClock}

	tests := []struct {
		name string
		tx   ChainTransaction
	}{
		{"missing txid", ChainTransaction{Amount: "1.0"}},
		{"blank txid", ChainTransaction{TxID: "   ", Amount: "1.0"}},
		{"bad amount", ChainTransaction{TxID: "0xabc", Amount: "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Parse(tt.tx); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
