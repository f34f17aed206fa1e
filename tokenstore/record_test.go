package tokenstore

import (
	"errors"
	"testing"
	"time"
)

// TestParseRecord covers the accepted wire shapes.
func TestParseRecord(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name      string
		in        string
		userID    string
		token     string
		refreshed *time.Time
		wantErr   error
	}{
		{name: "auth token", in: `{"userId":"42","authToken":"a","apiKey":"k"}`, userID: "42", token: "a"},
		{name: "legacy access token", in: `{"userId":"42","accessToken":"b"}`, userID: "42", token: "b"},
		{name: "auth token wins", in: `{"userId":"42","authToken":"a","accessToken":"b"}`, userID: "42", token: "a"},
		{name: "numeric user id", in: `{"userId":42,"authToken":"a"}`, userID: "42", token: "a"},
		{name: "rfc3339 refresh", in: `{"userId":"1","authToken":"a","lastRefreshed":"2026-03-04T05:06:07Z"}`, userID: "1", token: "a", refreshed: &ts},
		{name: "epoch millis refresh", in: `{"userId":"1","authToken":"a","lastRefreshed":1772600767000}`, userID: "1", token: "a", refreshed: &ts},
		{name: "no token", in: `{"userId":"42"}`, userID: "42"},
		{name: "not an object", in: `"42"`, wantErr: ErrMalformedRecord},
		{name: "not json", in: `abc`, wantErr: ErrMalformedRecord},
		{name: "broken json", in: `{"userId":`, wantErr: ErrMalformedRecord},
		{name: "bad user id", in: `{"userId":{"id":1}}`, wantErr: ErrMalformedRecord},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := ParseRecord([]byte(tc.in))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecord: %v", err)
			}
			if rec.UserID != tc.userID || rec.Token != tc.token {
				t.Errorf("got userId=%q token=%q", rec.UserID, rec.Token)
			}
			if tc.refreshed != nil && (rec.LastRefreshed == nil || !rec.LastRefreshed.Equal(*tc.refreshed)) {
				t.Errorf("expected lastRefreshed %v, got %v", tc.refreshed, rec.LastRefreshed)
			}
		})
	}
}

// TestRecord_HasToken verifies whitespace-only tokens are unusable.
func TestRecord_HasToken(t *testing.T) {
	var nilRec *Record
	if nilRec.HasToken() {
		t.Error("nil record must not have a token")
	}
	if (&Record{Token: " \t"}).HasToken() {
		t.Error("blank token must not count")
	}
	if !(&Record{Token: "t"}).HasToken() {
		t.Error("expected token")
	}
}
