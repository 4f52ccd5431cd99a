package student

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/imptech/academy-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION NUMBER GENERATION
// Format: IMPTECH-<ProgCode>-<Year>-<Serial>
// The serial is scoped to (programme code, year), zero-padded to 3 digits,
// and only ever increases. The "max existing" lookup lives in the repository;
// this file holds the pure derivation and parsing.
// ══════════════════════════════════════════════════════════════════════════════

// regPrefix is the institution tag on every registration number.
const regPrefix = "IMPTECH"

// regSerialWidth is the zero-padding of the per-year serial.
const regSerialWidth = 3

// ProgrammeCode derives the code from a programme name: the first letter of
// each of the first three words, upper-cased. "Web Development" -> "WD",
// "Basic Computer Training" -> "BCT".
func ProgrammeCode(programme string) string {
	words := strings.Fields(programme)
	if len(words) > 3 {
		words = words[:3]
	}

	var b strings.Builder
	for _, w := range words {
		r := []rune(w)[0]
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// RegNumberPrefix returns the shared prefix of all registration numbers for
// a programme code and year, e.g. "IMPTECH-WD-2025-".
func RegNumberPrefix(progCode string, year int) string {
	return fmt.Sprintf("%s-%s-%d-", regPrefix, progCode, year)
}

// BuildRegNumber assembles a full registration number.
func BuildRegNumber(progCode string, year, serial int) RegNumber {
	return RegNumber(fmt.Sprintf("%s-%s-%d-%0*d", regPrefix, progCode, year, regSerialWidth, serial))
}

// NextRegNumber computes the successor of the highest existing registration
// number for the prefix. last is empty when no student exists yet for the
// (programme code, year) scope; the serial then starts at 001.
func NextRegNumber(progCode string, year int, last RegNumber) (RegNumber, error) {
	if last == "" {
		return BuildRegNumber(progCode, year, 1), nil
	}

	parsed, err := ParseRegNumber(string(last))
	if err != nil {
		return "", err
	}
	return BuildRegNumber(progCode, year, parsed.Serial+1), nil
}

// ParsedRegNumber is the decomposed form of a registration number.
type ParsedRegNumber struct {
	ProgrammeCode string
	Year          int
	Serial        int
}

// ParseRegNumber splits IMPTECH-<code>-<year>-<serial> into its parts.
func ParseRegNumber(s string) (ParsedRegNumber, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 4 || parts[0] != regPrefix {
		return ParsedRegNumber{}, shared.NewDomainError("student", "ParseRegNumber", shared.ErrInvalidFormat,
			fmt.Sprintf("malformed registration number %q", s))
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return ParsedRegNumber{}, shared.WrapError("student", "ParseRegNumber", shared.ErrInvalidFormat,
			"registration year is not numeric", err)
	}

	serial, err := strconv.Atoi(parts[3])
	if err != nil || serial <= 0 {
		return ParsedRegNumber{}, shared.NewDomainError("student", "ParseRegNumber", shared.ErrInvalidFormat,
			fmt.Sprintf("registration serial %q is not a positive number", parts[3]))
	}

	return ParsedRegNumber{
		ProgrammeCode: parts[1],
		Year:          year,
		Serial:        serial,
	}, nil
}
