package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    PaymentMethod
		wantErr bool
	}{
		{"UPI", MethodUPI, false},
		{"BANK", MethodBank, false},
		{"CRYPTO", MethodCrypto, false},
		{"CARD", MethodCard, false},
		{"PAYPAL", MethodPayPal, false},
		{"upi", "", true},
		{"WIRE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePaymentMethod(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePaymentMethod(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPaymentMethod_IsLedgerMethod(t *testing.T) {
	for _, m := range []PaymentMethod{MethodUPI, MethodBank, MethodCrypto, MethodCard} {
		if !m.IsLedgerMethod() {
			t.Errorf("Expected %s to be a ledger method", m)
		}
	}
	if MethodPayPal.IsLedgerMethod() {
		t.Error("Expected PAYPAL not to be a ledger method")
	}
	if PaymentMethod("WIRE").IsLedgerMethod() {
		t.Error("Expected an unknown method not to be a ledger method")
	}
}

func TestParseDepositStatus(t *testing.T) {
	for _, s := range []DepositStatus{DepositPending, DepositSuccess, DepositFailed, DepositFlagged} {
		got, err := ParseDepositStatus(string(s))
		if err != nil || got != s {
			t.Errorf("Expected %s to round trip, got %s (%v)", s, got, err)
		}
	}
	if _, err := ParseDepositStatus("pending"); err == nil {
		t.Error("Expected lowercase status to be rejected")
	}
}

func validDeposit() *Deposit {
	return &Deposit{
		ID:        1,
		UserID:    7,
		Method:    MethodUPI,
		Amount:    decimal.NewFromInt(100),
		Status:    DepositPending,
		CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestDeposit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Deposit)
		wantErr string
	}{
		{"valid", func(d *Deposit) {}, ""},
		{"zero user", func(d *Deposit) { d.UserID = 0 }, "user id"},
		{"bad method", func(d *Deposit) { d.Method = "WIRE" }, "method"},
		{"zero amount", func(d *Deposit) { d.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(d *Deposit) { d.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"bad status", func(d *Deposit) { d.Status = "OPEN" }, "status"},
		{"zero created_at", func(d *Deposit) { d.CreatedAt = time.Time{} }, "creation time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDeposit()
			tt.mutate(d)

			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid deposit, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDeposit_HasProof(t *testing.T) {
	d := validDeposit()
	if d.HasProof() {
		t.Error("Expected no proof on a fresh deposit")
	}
	d.UTROrHash = "   "
	if d.HasProof() {
		t.Error("Expected whitespace not to count as proof")
	}
	d.UTROrHash = "TX1"
	if !d.HasProof() {
		t.Error("Expected proof to be detected")
	}
}

func TestDeposit_Clone(t *testing.T) {
	verifiedAt := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)
	d := validDeposit()
	d.Metadata = map[string]string{"channel": "app"}
	d.VerifiedAt = &verifiedAt

	clone := d.Clone()
	clone.Metadata["channel"] = "web"
	*clone.VerifiedAt = clone.VerifiedAt.Add(time.Hour)

	if d.Metadata["channel"] != "app" {
		t.Error("Expected metadata to be deep-copied")
	}
	if !d.VerifiedAt.Equal(verifiedAt) {
		t.Error("Expected verified_at to be deep-copied")
	}

	var nilDeposit *Deposit
	if nilDeposit.Clone() != nil {
		t.Error("Expected nil clone for nil deposit")
	}
}

func TestLedgerEntry_Clone(t *testing.T) {
	entry := &LedgerEntry{
		ID:        1,
		Source:    SourceSMS,
		Method:    MethodBank,
		UTROrHash: "TX1",
		Amount:    decimal.NewFromInt(50),
		RawData:   map[string]string{"sms_text": "IMPS credit"},
		Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	clone := entry.Clone()
	clone.RawData["sms_text"] = "edited"
	clone.Matched = true

	if entry.RawData["sms_text"] != "IMPS credit" {
		t.Error("Expected raw data to be deep-copied")
	}
	if entry.Matched {
		t.Error("Expected matched flag to be independent")
	}
}

func TestPaymentAccount_Validate(t *testing.T) {
	account := &PaymentAccount{
		ID:             1,
		AccountType:    MethodUPI,
		IdentifierName: "upi_1",
		Status:         AccountPending,
	}
	if err := account.Validate(); err != nil {
		t.Errorf("Expected valid account, got %v", err)
	}

	account.IdentifierName = ""
	if err := account.Validate(); err == nil {
		t.Error("Expected empty identifier name to be rejected")
	}

	account.IdentifierName = "upi_1"
	account.Status = "SUSPENDED"
	if err := account.Validate(); err == nil {
		t.Error("Expected unknown status to be rejected")
	}
}

func TestPaymentAccount_Clone(t *testing.T) {
	approvedAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	approvedBy := int64(9)
	account := &PaymentAccount{
		ID:             1,
		AccountType:    MethodBank,
		IdentifierName: "bank_1",
		Status:         AccountActive,
		Details:        map[string]string{"ifsc": "HDFC0001"},
		ApprovedAt:     &approvedAt,
		ApprovedBy:     &approvedBy,
	}

	clone := account.Clone()
	clone.Details["ifsc"] = "ICIC0002"
	*clone.ApprovedBy = 42

	if account.Details["ifsc"] != "HDFC0001" {
		t.Error("Expected details to be deep-copied")
	}
	if *account.ApprovedBy != 9 {
		t.Error("Expected approved_by to be deep-copied")
	}
}

func TestUser_StringOmitsHash(t *testing.T) {
	u := &User{
		ID:           1,
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		IsAdmin:      true,
	}
	if strings.Contains(u.String(), "secret") {
		t.Error("Expected the password hash to be omitted from String")
	}
}
