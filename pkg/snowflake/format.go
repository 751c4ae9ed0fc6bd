package snowflake

import (
	"errors"
	"fmt"
	"strings"

	bw "github.com/bwmarrin/snowflake"
)

// Format is a textual encoding of an ID.
type Format string

const (
	FormatDecimal Format = "decimal"
	FormatBase2   Format = "base2"
	FormatBase32  Format = "base32"
	FormatBase36  Format = "base36"
	FormatBase58  Format = "base58"
	FormatBase64  Format = "base64"
)

var ErrUnknownFormat = errors.New("snowflake: unknown id format")

// Formats lists every supported format, decimal first.
func Formats() []Format {
	return []Format{FormatDecimal, FormatBase2, FormatBase32, FormatBase36, FormatBase58, FormatBase64}
}

// ParseFormat resolves a format name. The empty string selects FormatDecimal.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDecimal, nil
	case FormatDecimal, FormatBase2, FormatBase32, FormatBase36, FormatBase58, FormatBase64:
		return f, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
	}
}

// Encode renders id in the format. Unknown formats fall back to decimal.
func (f Format) Encode(id int64) string {
	sid := bw.ID(id)
	switch f {
	case FormatBase2:
		return sid.Base2()
	case FormatBase32:
		return sid.Base32()
	case FormatBase36:
		return sid.Base36()
	case FormatBase58:
		return sid.Base58()
	case FormatBase64:
		return sid.Base64()
	default:
		return sid.String()
	}
}

// Parse reads an ID previously rendered with Encode.
func (f Format) Parse(s string) (int64, error) {
	var (
		sid bw.ID
		err error
	)
	switch f {
	case FormatBase2:
		sid, err = bw.ParseBase2(s)
	case FormatBase32:
		sid, err = bw.ParseBase32([]byte(s))
	case FormatBase36:
		sid, err = bw.ParseBase36(s)
	case FormatBase58:
		sid, err = bw.ParseBase58([]byte(s))
	case FormatBase64:
		sid, err = bw.ParseBase64(s)
	default:
		sid, err = bw.ParseString(s)
	}
	if err != nil {
		return 0, fmt.Errorf("parse %s id %q: %w", f, s, err)
	}
	if sid < 0 {
		return 0, fmt.Errorf("parse %s id %q: negative value", f, s)
	}
	return sid.Int64(), nil
}
