package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PrincipalHeader carries the identity asserted by the auth layer in front of the API.
const PrincipalHeader = "x-ms-client-principal"

var ErrNoPrincipal = errors.New("no client principal")

// ClientPrincipal is the decoded identity header.
type ClientPrincipal struct {
	IdentityProvider string   `json:"identityProvider,omitempty"`
	UserID           string   `json:"userId"`
	UserDetails      string   `json:"userDetails,omitempty"`
	UserRoles        []string `json:"userRoles,omitempty"`
}

// UnmarshalJSON accepts any truthy scalar userId; numbers and true are
// converted to their string form.
func (p *ClientPrincipal) UnmarshalJSON(data []byte) error {
	type principalAlias ClientPrincipal
	aux := struct {
		*principalAlias
		UserID interface{} `json:"userId"`
	}{principalAlias: (*principalAlias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.UserID = userIDString(aux.UserID)
	return nil
}

func userIDString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

var principalEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodePrincipal decodes a base64 JSON principal header value.
func DecodePrincipal(encoded string) (*ClientPrincipal, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrNoPrincipal
	}

	var raw []byte
	var err error
	for _, enc := range principalEncodings {
		raw, err = enc.DecodeString(encoded)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode principal: %w", err)
	}

	var principal ClientPrincipal
	if err := json.Unmarshal(raw, &principal); err != nil {
		return nil, fmt.Errorf("failed to parse principal: %w", err)
	}
	if principal.UserID == "" {
		return nil, ErrNoPrincipal
	}
	return &principal, nil
}

// EncodePrincipal produces a header value DecodePrincipal accepts.
func EncodePrincipal(principal ClientPrincipal) (string, error) {
	raw, err := json.Marshal(principal)
	if err != nil {
		return "", fmt.Errorf("failed to marshal principal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// PrincipalFromHeaders looks the principal header up case-insensitively.
func PrincipalFromHeaders(headers map[string]string, multiValue map[string][]string) (*ClientPrincipal, error) {
	for key, value := range headers {
		if strings.EqualFold(key, PrincipalHeader) {
			return DecodePrincipal(value)
		}
	}
	for key, values := range multiValue {
		if strings.EqualFold(key, PrincipalHeader) && len(values) > 0 {
			return DecodePrincipal(values[0])
		}
	}
	return nil, ErrNoPrincipal
}
