package tokenstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key namespaces in the shared store. These are part of the external
// contract with the OAuth exchange that writes the records.
const (
	PrefixToken     = "token:"
	PrefixAuthToken = "xano_auth_token:"
	PrefixRefresh   = "refresh:"
)

// lookupOrder is the order Find consults namespaces in.
var lookupOrder = []string{PrefixAuthToken, PrefixToken}

// Prefixes lists every namespace DeleteAll sweeps.
var Prefixes = []string{PrefixToken, PrefixAuthToken, PrefixRefresh}

// Record is a stored credential as seen by the gate.
type Record struct {
	UserID        string
	Token         string
	APIKey        string
	LastRefreshed *time.Time

	// Key and Prefix locate the record in the store. They are set by the
	// store on read and are never serialized.
	Key    string
	Prefix string
}

// HasToken reports whether the record carries a usable credential.
func (r *Record) HasToken() bool {
	return r != nil && strings.TrimSpace(r.Token) != ""
}

// wireRecord is the JSON shape written by the OAuth exchange. userId may be
// a string or a number; the token is authToken or the legacy accessToken.
type wireRecord struct {
	UserID        json.RawMessage `json:"userId"`
	AuthToken     string          `json:"authToken,omitempty"`
	AccessToken   string          `json:"accessToken,omitempty"`
	APIKey        string          `json:"apiKey,omitempty"`
	LastRefreshed json.RawMessage `json:"lastRefreshed,omitempty"`
}

// ParseRecord decodes a stored value. Values that are not JSON objects, or
// whose userId is neither a string nor a number, yield ErrMalformedRecord.
func ParseRecord(data []byte) (*Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrMalformedRecord
	}

	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	userID, err := decodeUserID(w.UserID)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		UserID: userID,
		Token:  w.AuthToken,
		APIKey: w.APIKey,
	}
	if rec.Token == "" {
		rec.Token = w.AccessToken
	}
	if ts, ok := decodeTimestamp(w.LastRefreshed); ok {
		rec.LastRefreshed = &ts
	}
	return rec, nil
}

func decodeUserID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: userId is %s", ErrMalformedRecord, raw)
}

// decodeTimestamp accepts RFC 3339 strings and epoch milliseconds.
// Anything else is ignored; lastRefreshed is informational.
func decodeTimestamp(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		return time.Time{}, false
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// MarshalJSON encodes the record in the shape ParseRecord reads.
func (r Record) MarshalJSON() ([]byte, error) {
	out := struct {
		UserID        string     `json:"userId"`
		AuthToken     string     `json:"authToken,omitempty"`
		APIKey        string     `json:"apiKey,omitempty"`
		LastRefreshed *time.Time `json:"lastRefreshed,omitempty"`
	}{
		UserID:        r.UserID,
		AuthToken:     r.Token,
		APIKey:        r.APIKey,
		LastRefreshed: r.LastRefreshed,
	}
	return json.Marshal(out)
}
