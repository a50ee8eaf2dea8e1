package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
)

// ConfigHeader carries a configuration override from the HTTP ingress to
// the tool and resource handlers. Only the gateway sets it; inbound values
// are discarded.
const ConfigHeader = "X-Flowise-Mcp-Config"

// configQueryParam is the query parameter clients put the base64 JSON
// configuration blob in.
const configQueryParam = "config"

var blobEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.URLEncoding,
	base64.RawStdEncoding,
	base64.RawURLEncoding,
}

// decodeConfigBlob parses a base64 JSON configuration blob. Padded and
// unpadded forms of both the standard and URL alphabets are accepted.
func decodeConfigBlob(blob string) (domain.ConfigOverride, error) {
	// Query decoding turns an unescaped '+' into a space.
	blob = strings.TrimSpace(strings.ReplaceAll(blob, " ", "+"))
	if blob == "" {
		return domain.ConfigOverride{}, errors.New("config blob is empty")
	}

	var raw []byte
	var decodeErr error
	for _, encoding := range blobEncodings {
		raw, decodeErr = encoding.DecodeString(blob)
		if decodeErr == nil {
			break
		}
	}
	if decodeErr != nil {
		return domain.ConfigOverride{}, fmt.Errorf("decode config blob: %w", decodeErr)
	}

	var override domain.ConfigOverride
	if err := json.Unmarshal(raw, &override); err != nil {
		return domain.ConfigOverride{}, fmt.Errorf("parse config blob: %w", err)
	}
	return override, nil
}

// encodeConfigHeader renders override as a header value.
func encodeConfigHeader(override domain.ConfigOverride) (string, error) {
	data, err := json.Marshal(override)
	if err != nil {
		return "", fmt.Errorf("encode config header: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// configFromHeader reads the override set by the ingress. Absent or
// unreadable headers give no override.
func configFromHeader(header http.Header) (domain.ConfigOverride, bool) {
	if header == nil {
		return domain.ConfigOverride{}, false
	}
	value := header.Get(ConfigHeader)
	if value == "" {
		return domain.ConfigOverride{}, false
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return domain.ConfigOverride{}, false
	}
	var override domain.ConfigOverride
	if err := json.Unmarshal(data, &override); err != nil {
		return domain.ConfigOverride{}, false
	}
	return override, !override.Empty()
}

// resolveConfig layers the per-request override, when present, over base.
func resolveConfig(base domain.AmbientConfig, header http.Header) domain.AmbientConfig {
	override, ok := configFromHeader(header)
	if !ok {
		return base
	}
	return base.Apply(override)
}
