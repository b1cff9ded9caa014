package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Params is an ordered list of query parameters. Binance validates the
// HMAC signature against the literal query string it receives, so the
// parameter order chosen by the caller must survive byte-for-byte from
// signing through to the wire. A map (url.Values) cannot guarantee
// that; Encode() on url.Values sorts keys alphabetically.
type Params struct {
	pairs []pair
}

type pair struct {
	key   string
	value string
}

// NewParams creates an empty ordered parameter list
func NewParams() *Params {
	return &Params{}
}

// Add appends a parameter, preserving insertion order. It returns the
// receiver so call sites can chain builds.
func (p *Params) Add(key, value string) *Params {
	p.pairs = append(p.pairs, pair{key: key, value: value})
	return p
}

// Get returns the value of the first parameter with the given key, or
// an empty string if absent.
func (p *Params) Get(key string) string {
	for _, kv := range p.pairs {
		if kv.key == key {
			return kv.value
		}
	}
	return ""
}

// Has reports whether a parameter with the given key is present
func (p *Params) Has(key string) bool {
	for _, kv := range p.pairs {
		if kv.key == key {
			return true
		}
	}
	return false
}

// Len returns the number of parameters
func (p *Params) Len() int {
	return len(p.pairs)
}

// Clone returns an independent copy of the parameter list
func (p *Params) Clone() *Params {
	clone := &Params{pairs: make([]pair, len(p.pairs))}
	copy(clone.pairs, p.pairs)
	return clone
}

// Encode builds the canonical query string: key=value pairs joined
// with '&' in insertion order, values percent-escaped the same way
// they are sent on the wire.
func (p *Params) Encode() string {
	var sb strings.Builder
	for i, kv := range p.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(kv.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv.value))
	}
	return sb.String()
}

// Signer handles HMAC-SHA256 signing for Binance API requests
type Signer struct {
	apiKey     string
	apiSecret  string
	recvWindow int64
}

// NewSigner creates a new signer without an explicit recv window; the
// exchange default applies.
func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// NewSignerWithRecvWindow creates a new signer that stamps a
// recvWindow parameter onto every signed request.
func NewSignerWithRecvWindow(apiKey, apiSecret string, recvWindow int64) *Signer {
	return &Signer{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		recvWindow: recvWindow,
	}
}

// APIKey returns the API key
func (s *Signer) APIKey() string {
	return s.apiKey
}

// RecvWindow returns the recv window value
func (s *Signer) RecvWindow() int64 {
	return s.recvWindow
}

// Sign generates the hex-encoded HMAC-SHA256 signature over the
// canonical query string of the given parameters.
func (s *Signer) Sign(params *Params) string {
	h := hmac.New(sha256.New, []byte(s.apiSecret))
	h.Write([]byte(params.Encode()))
	return hex.EncodeToString(h.Sum(nil))
}

// Signed returns a copy of the parameters with a fresh epoch-ms
// timestamp, the configured recvWindow (when set and not already
// present), and the signature appended last. The input is not
// modified.
func (s *Signer) Signed(params *Params) *Params {
	signed := params.Clone()

	signed.Add("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	if s.recvWindow > 0 && !signed.Has("recvWindow") {
		signed.Add("recvWindow", strconv.FormatInt(s.recvWindow, 10))
	}

	// The signature must be the final parameter; it covers everything
	// before it.
	signed.Add("signature", s.Sign(signed))

	return signed
}

// ValidateSignature verifies if a signature is valid for given parameters
func (s *Signer) ValidateSignature(params *Params, signature string) bool {
	expected := s.Sign(params)
	return hmac.Equal([]byte(expected), []byte(signature))
}
