// Package trace parses allocation trace scripts replayed by memctl.
//
// A trace is line oriented. Blank lines and lines starting with '#' are
// ignored; every other line is one operation:
//
//	alloc <id> [size [alignment]]
//	free <id>
//	reset
//	mark <name>
//	rewind <name>
//
// Sizes accept k/m/g suffixes (powers of 1024). Traces written on Windows are
// often UTF-16 with a BOM or Latin-1; the reader decodes both.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrSyntax indicates a malformed trace line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrEncoding indicates an unknown encoding name.
	ErrEncoding = errors.New("trace: unknown encoding")
)

// Kind identifies a trace operation.
type Kind uint8

const (
	Alloc Kind = iota + 1
	Free
	Reset
	Mark
	Rewind
)

var kindNames = map[Kind]string{
	Alloc:  "alloc",
	Free:   "free",
	Reset:  "reset",
	Mark:   "mark",
	Rewind: "rewind",
}

// namedKinds maps the verbs that take a single name to their Kind.
var namedKinds = map[string]Kind{
	"free":   Free,
	"mark":   Mark,
	"rewind": Rewind,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Op is one parsed trace line.
type Op struct {
	Kind  Kind
	ID    string // allocation id for alloc/free, marker name for mark/rewind
	Size  int
	Align int // 0 means the allocator default
	Line  int
}

// Encoding names the text encoding of a trace.
type Encoding string

const (
	EncodingAuto   Encoding = "auto"   // UTF-8, or UTF-16 when a BOM is present
	EncodingUTF8   Encoding = "utf8"
	EncodingUTF16  Encoding = "utf16"  // little-endian unless a BOM says otherwise
	EncodingLatin1 Encoding = "latin1" // ISO 8859-1
)

const (
	scannerInitialBufferSize = 4096
	scannerMaxLineSize       = 1 << 20
)

// decoder wraps r so that it yields UTF-8.
func decoder(r io.Reader, enc Encoding) (io.Reader, error) {
	switch enc {
	case "", EncodingAuto:
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case EncodingUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	case EncodingUTF16:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case EncodingLatin1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrEncoding, enc)
	}
}

// Parse reads every operation from r.
func Parse(r io.Reader, enc Encoding) ([]Op, error) {
	utf8Reader, err := decoder(r, enc)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(utf8Reader)
	scanner.Buffer(make([]byte, 0, scannerInitialBufferSize), scannerMaxLineSize)

	var ops []Op
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		op.Line = lineNo
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace: %w", err)
	}
	return ops, nil
}

// ParseFile opens path and parses it.
func ParseFile(path string, enc Encoding) ([]Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, enc)
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "alloc":
		if len(args) < 1 || len(args) > 3 {
			return Op{}, fmt.Errorf("%w: alloc takes <id> [size [alignment]]", ErrSyntax)
		}
		op := Op{Kind: Alloc, ID: args[0]}
		var err error
		if len(args) > 1 {
			if op.Size, err = ParseSize(args[1]); err != nil {
				return Op{}, err
			}
		}
		if len(args) > 2 {
			if op.Align, err = ParseSize(args[2]); err != nil {
				return Op{}, err
			}
		}
		return op, nil
	case "free", "mark", "rewind":
		if len(args) != 1 {
			return Op{}, fmt.Errorf("%w: %s takes exactly one name", ErrSyntax, verb)
		}
		return Op{Kind: namedKinds[verb], ID: args[0]}, nil
	case "reset":
		if len(args) != 0 {
			return Op{}, fmt.Errorf("%w: reset takes no arguments", ErrSyntax)
		}
		return Op{Kind: Reset}, nil
	default:
		return Op{}, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}
}

// ParseSize parses a non-negative byte count with an optional k, m or g
// suffix (case-insensitive, powers of 1024).
func ParseSize(s string) (int, error) {
	mult := 1
	num := s
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'k', 'K':
			mult, num = 1<<10, s[:n-1]
		case 'm', 'M':
			mult, num = 1<<20, s[:n-1]
		case 'g', 'G':
			mult, num = 1<<30, s[:n-1]
		}
	}
	v, err := strconv.Atoi(num)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad size %q", ErrSyntax, s)
	}
	if v > 0 && mult > 1 && v > math.MaxInt/mult {
		return 0, fmt.Errorf("%w: size %q overflows", ErrSyntax, s)
	}
	return v * mult, nil
}
