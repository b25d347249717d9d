package validator

import (
	"errors"
	"strings"
	"testing"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

func newTestValidator() *ReservationValidator {
	return NewReservationValidator(logger.Discard(), []string{"00:00", "09:00", "21:00"})
}

func TestValidateCreate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name       string
		req        model.CreateReservationRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  model.CreateReservationRequest{Date: "2025-01-15", Time: "09:00", Name: "Alice", Passphrase: "pw"},
		},
		{
			name: "blank name is not a shape error",
			req:  model.CreateReservationRequest{Date: "2025-01-15", Time: "09:00"},
		},
		{
			name:       "missing date",
			req:        model.CreateReservationRequest{Time: "09:00", Name: "Alice", Passphrase: "pw"},
			wantFields: []string{"Date"},
		},
		{
			name:       "bad date and unknown time",
			req:        model.CreateReservationRequest{Date: "15/01/2025", Time: "10:00", Name: "Alice", Passphrase: "pw"},
			wantFields: []string{"Date", "Time"},
		},
		{
			name: "long free-text name",
			req:  model.CreateReservationRequest{Date: "2025-01-15", Time: "09:00", Name: strings.Repeat("가", 200), Passphrase: "pw"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(&tt.req)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if len(verrs) != len(tt.wantFields) {
				t.Fatalf("got %d errors %v, want fields %v", len(verrs), verrs, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if verrs[i].Field != f {
					t.Errorf("error %d field = %s, want %s", i, verrs[i].Field, f)
				}
			}
		})
	}
}

func TestValidateSlot(t *testing.T) {
	v := newTestValidator()
	if err := v.ValidateSlot("2025-01-15", "21:00"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := v.ValidateSlot("2025-02-30", "03:00")
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 2 {
		t.Fatalf("expected two errors, got %v", err)
	}
	if !strings.Contains(verrs[1].Message, "00:00, 09:00, 21:00") {
		t.Errorf("time message should list slot times, got %q", verrs[1].Message)
	}
}

func TestValidateLogin(t *testing.T) {
	v := newTestValidator()
	if err := v.ValidateLogin(&model.AdminLoginRequest{}); err == nil {
		t.Error("expected error for empty secret")
	}
	if err := v.ValidateLogin(&model.AdminLoginRequest{Secret: "x"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
