// Package share encodes a form and its results into a self-contained link.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

// Param is the query parameter carrying the encoded payload.
const Param = "share"

// ErrIncomplete is returned when a decoded payload lacks the form or the
// results.
var ErrIncomplete = errors.New("share: payload is missing formData or analysisResults")

// Payload is the shared snapshot.
type Payload struct {
	FormData        *form.Form       `json:"formData"`
	AnalysisResults analysis.Results `json:"analysisResults"`
}

// Encode returns base64(JSON(p)).
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding share payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode reverses Encode.
func Decode(s string) (Payload, error) {
	// A '+' that reached us unescaped through a query string arrives as a
	// space.
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Payload{}, fmt.Errorf("decoding share payload: %w", err)
	}
	var raw struct {
		FormData        json.RawMessage `json:"formData"`
		AnalysisResults json.RawMessage `json:"analysisResults"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Payload{}, fmt.Errorf("parsing share payload: %w", err)
	}
	if isAbsent(raw.FormData) || isAbsent(raw.AnalysisResults) {
		return Payload{}, ErrIncomplete
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("parsing share payload: %w", err)
	}
	return p, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Link appends the encoded payload to base as the share query parameter.
func Link(base string, p Payload) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing share base url: %w", err)
	}
	enc, err := Encode(p)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(Param, enc)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FromURL extracts and decodes the share parameter from a full link or a
// raw query string. It reports false when the parameter is absent.
func FromURL(link string) (Payload, bool, error) {
	u, err := url.Parse(link)
	if err != nil {
		return Payload{}, false, fmt.Errorf("parsing share link: %w", err)
	}
	v := u.Query().Get(Param)
	if v == "" {
		return Payload{}, false, nil
	}
	p, err := Decode(v)
	if err != nil {
		return Payload{}, true, err
	}
	return p, true, nil
}
