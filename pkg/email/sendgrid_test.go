package email

import (
	"testing"

	"github.com/shopzen/shopzen-backend/pkg/config"
	apperrors "github.com/shopzen/shopzen-backend/pkg/errors"
)

func TestNewSendgridSenderRequiresAPIKey(t *testing.T) {
	_, err := NewSendgridSender(config.SendgridConfig{DefaultFrom: "alerts@shopzen.io"})
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNewSendgridSenderRequiresFrom(t *testing.T) {
	_, err := NewSendgridSender(config.SendgridConfig{APIKey: "SG.test"})
	if err == nil {
		t.Fatal("expected error for missing from address")
	}
}

func TestValidateMessage(t *testing.T) {
	sender, err := NewSendgridSender(config.SendgridConfig{
		APIKey:      "SG.test",
		DefaultFrom: "alerts@shopzen.io",
		FromName:    "ShopZen Alerts",
	})
	if err != nil {
		t.Fatalf("NewSendgridSender: %v", err)
	}

	cases := []struct {
		name string
		msg  Message
		ok   bool
	}{
		{
			name: "valid",
			msg:  Message{To: "shopper@example.com", Subject: "Back in stock", PlainText: "body"},
			ok:   true,
		},
		{
			name: "missing recipient",
			msg:  Message{Subject: "Back in stock", PlainText: "body"},
		},
		{
			name: "malformed recipient",
			msg:  Message{To: "not-an-email", Subject: "Back in stock", PlainText: "body"},
		},
		{
			name: "missing subject",
			msg:  Message{To: "shopper@example.com", PlainText: "body"},
		},
		{
			name: "missing body",
			msg:  Message{To: "shopper@example.com", Subject: "Back in stock"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := sender.validateMessage(tc.msg)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected valid message, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			typed := apperrors.As(err)
			if typed == nil || typed.Code() != apperrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}
