package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned for any token the codec cannot turn into claims.
// Callers treat it exactly like "no session".
var ErrMalformedToken = errors.New("malformed token")

// Authority is one entry of the authorities claim. The issuer emits
// {"authority":"ROLE_X"} objects; bare strings are accepted as well.
type Authority string

// UnmarshalJSON accepts either a string or an object with an "authority" field.
func (a *Authority) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Authority(s)
		return nil
	}

	var obj struct {
		Authority string `json:"authority"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = Authority(obj.Authority)
	return nil
}

// MarshalJSON emits the issuer's object form.
func (a Authority) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Authority string `json:"authority"`
	}{Authority: string(a)})
}

// Claims describes the token payload consumed by the client.
type Claims struct {
	Authorities []Authority `json:"authorities,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec extracts claims from compact tokens. The signature is never
// verified: claims drive display and routing only, the remote API
// re-validates the token on every protected request.
type TokenCodec struct {
	parser *jwt.Parser
}

// NewTokenCodec builds a codec tolerant of padded payload segments.
func NewTokenCodec() *TokenCodec {
	return &TokenCodec{parser: jwt.NewParser(jwt.WithPaddingAllowed())}
}

// Decode parses the payload segment of token.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(segments))
	}

	payload, err := c.parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding: %v", ErrMalformedToken, err)
	}
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid utf-8", ErrMalformedToken)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload json: %v", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrMalformedToken)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrMalformedToken)
	}
	return &claims, nil
}
