// Package mgf reads spectra from Mascot Generic Format (MGF) files.
//
// Each record sits between a BEGIN IONS and an END IONS line. Inside a
// record the reader first accepts KEY=VALUE properties (TITLE, PEPMASS,
// RTINSECONDS). Reading RTINSECONDS switches the record to peak lines of
// the form "<mz> <intensity>"; it is the only way to enter that state.
// Lines outside records are ignored.
package mgf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/specclust/internal/spectrum"
)

// MaxLineCapacity is the maximum buffer size for a single line (1MB).
const MaxLineCapacity = 1024 * 1024

const (
	beginIons = "BEGIN IONS"
	endIons   = "END IONS"

	keyTitle       = "TITLE"
	keyPepmass     = "PEPMASS"
	keyRTInSeconds = "RTINSECONDS"
)

// Errors wrapped by ParseError.
var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrMalformedPeak   = errors.New("malformed peak line")
	ErrBadValue        = errors.New("invalid property value")
	ErrUnexpectedLine  = errors.New("unexpected line")
	ErrUnterminated    = errors.New("record not terminated by END IONS")
)

// ParseError identifies the record and line that failed to parse.
type ParseError struct {
	Spectrum int    // 1-based ordinal of the record being read
	Line     int    // 1-based line number
	Content  string // Offending line
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("spectrum %d, line %d: %v: %q", e.Spectrum, e.Line, e.Err, e.Content)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// state is the reader's position within the record cycle.
type state int

const (
	stateIdle       state = iota // between records
	stateProperties              // after BEGIN IONS, reading KEY=VALUE lines
	statePeaks                   // after RTINSECONDS, reading peak lines
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateProperties:
		return "properties"
	case statePeaks:
		return "peaks"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// parser holds the state machine for one input stream.
type parser struct {
	state   state
	cur     spectrum.Spectrum
	ordinal int
	line    int
	out     []spectrum.Spectrum
}

func (p *parser) fail(content string, err error) error {
	return &ParseError{Spectrum: p.ordinal, Line: p.line, Content: content, Err: err}
}

// feed advances the state machine by one trimmed, non-empty line.
func (p *parser) feed(line string) error {
	switch p.state {
	case stateIdle:
		switch line {
		case beginIons:
			p.ordinal++
			p.cur = spectrum.Spectrum{}
			p.state = stateProperties
		case endIons:
			return p.fail(line, fmt.Errorf("%w: END IONS outside a record", ErrUnexpectedLine))
		}
		return nil

	case stateProperties, statePeaks:
		switch line {
		case endIons:
			p.out = append(p.out, p.cur)
			p.cur = spectrum.Spectrum{}
			p.state = stateIdle
			return nil
		case beginIons:
			return p.fail(line, fmt.Errorf("%w: BEGIN IONS inside a record", ErrUnexpectedLine))
		}
		if p.state == stateProperties {
			return p.property(line)
		}
		return p.peak(line)
	}
	return fmt.Errorf("mgf: invalid parser state %v", p.state)
}

func (p *parser) property(line string) error {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return p.fail(line, fmt.Errorf("%w: expected KEY=VALUE before %s", ErrUnexpectedLine, keyRTInSeconds))
	}

	switch key {
	case keyTitle:
		p.cur.Title = value
	case keyPepmass:
		// PEPMASS may carry the precursor intensity as a second field
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return p.fail(line, fmt.Errorf("%w: empty %s", ErrBadValue, keyPepmass))
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return p.fail(line, fmt.Errorf("%w: %v", ErrBadValue, err))
		}
		p.cur.PrecursorMass = v
	case keyRTInSeconds:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return p.fail(line, fmt.Errorf("%w: %v", ErrBadValue, err))
		}
		p.cur.RetentionTime = v
		p.state = statePeaks
	default:
		return p.fail(line, fmt.Errorf("%w %q", ErrUnknownProperty, key))
	}
	return nil
}

func (p *parser) peak(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return p.fail(line, fmt.Errorf("%w: want 2 fields, got %d", ErrMalformedPeak, len(fields)))
	}
	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return p.fail(line, fmt.Errorf("%w: m/z: %v", ErrMalformedPeak, err))
	}
	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return p.fail(line, fmt.Errorf("%w: intensity: %v", ErrMalformedPeak, err))
	}
	p.cur.Peaks = append(p.cur.Peaks, spectrum.Peak{MZ: mz, Intensity: intensity})
	return nil
}

// Parse reads all spectra from r in file order.
// It stops at the first error; no partially read record is returned.
func Parse(r io.Reader) ([]spectrum.Spectrum, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxLineCapacity)

	for scanner.Scan() {
		p.line++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := p.feed(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mgf: %w", err)
	}

	if p.state != stateIdle {
		return nil, &ParseError{Spectrum: p.ordinal, Line: p.line, Content: "", Err: ErrUnterminated}
	}
	return p.out, nil
}
