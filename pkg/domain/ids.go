package domain

import (
	"strings"
	"unicode/utf8"

	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
)

// EntityKind tells a company registration (CNPJ) from an individual one (CPF).
type EntityKind string

const (
	EntityKindCNPJ EntityKind = "CNPJ"
	EntityKindCPF  EntityKind = "CPF"
)

const (
	cnpjLength = 14
	cpfLength  = 11

	// maxRawEntityIDLength bounds formatted input ("12.345.678/0001-95" is 18).
	maxRawEntityIDLength = 32
)

// EntityID is the digits-only identifier of a licensed entity (CNPJ or CPF).
// It is the key under which analyses, answers, and overrides are persisted.
type EntityID string

// ParseEntityID validates a CNPJ or CPF at trust boundaries.
//
// Formatting punctuation ('.', '/', '-', spaces) is stripped; any other
// character is rejected rather than silently dropped.
func ParseEntityID(raw string) (EntityID, error) {
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	if len(raw) > maxRawEntityIDLength || !utf8.ValidString(raw) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid entity id")
	}

	var b strings.Builder
	b.Grow(cnpjLength)
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '/' || r == '-' || r == ' ':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid entity id")
		}
	}

	digits := b.String()
	if len(digits) != cnpjLength && len(digits) != cpfLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "entity id must have 11 (CPF) or 14 (CNPJ) digits")
	}
	if strings.Trim(digits, "0") == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid entity id")
	}
	return EntityID(digits), nil
}

func (id EntityID) String() string {
	return string(id)
}

func (id EntityID) IsZero() bool {
	return id == ""
}

// Kind reports whether the id is a CNPJ or a CPF.
func (id EntityID) Kind() EntityKind {
	if len(id) == cpfLength {
		return EntityKindCPF
	}
	return EntityKindCNPJ
}

// Format renders the id with the usual punctuation (00.000.000/0000-00 or 000.000.000-00).
func (id EntityID) Format() string {
	s := string(id)
	switch len(s) {
	case cnpjLength:
		return s[0:2] + "." + s[2:5] + "." + s[5:8] + "/" + s[8:12] + "-" + s[12:14]
	case cpfLength:
		return s[0:3] + "." + s[3:6] + "." + s[6:9] + "-" + s[9:11]
	default:
		return s
	}
}
