// Package pkglist reads and writes the INI documents used for package
// lists (pkglist.ini) and the local source index (packages.ini).
//
// Section and key lookups are case-insensitive and never fall back to a
// parent or default section; names are reported with the casing they were
// declared with.
package pkglist

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/ini.v1"
)

// Well-known section and key names
const (
	SectionSources  = "Sources"
	SectionProvides = "Provides"
	KeyVersion      = "Version"
	KeyDescription  = "Description"
	SourceKeyPrefix = "Source"

	// Per-architecture file details are written as <arch><suffix>
	SizeSuffix   = ".size"
	SHA256Suffix = ".sha256"
)

var loadOptions = ini.LoadOptions{
	AllowBooleanKeys:        true,
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	SkipUnrecognizableLines: true,
	KeyValueDelimiters:      "=",
}

// valueOptions drops keys declared without '=' so they never carry a value
var valueOptions = func() ini.LoadOptions {
	opts := loadOptions
	opts.AllowBooleanKeys = false
	return opts
}()

// File is a parsed package list
type File struct {
	path string
	f    *ini.File // every key, bare ones included
	vals *ini.File // keys with an explicit value
}

func load(name string, opts ini.LoadOptions, source interface{}) (*File, error) {
	f, err := ini.LoadSources(opts, source)
	if err != nil {
		return nil, err
	}

	vopts := valueOptions
	vopts.Loose = opts.Loose
	vals, err := ini.LoadSources(vopts, source)
	if err != nil {
		return nil, err
	}
	return &File{path: name, f: f, vals: vals}, nil
}

// Load parses the INI file at path. A missing file is an error.
func Load(path string) (*File, error) {
	l, err := load(path, loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l, nil
}

// LoadLoose parses the INI file at path, treating a missing file as empty
func LoadLoose(path string) (*File, error) {
	opts := loadOptions
	opts.Loose = true
	l, err := load(path, opts, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l, nil
}

// Parse parses an in-memory INI document; name is used in error messages
func Parse(name string, data []byte) (*File, error) {
	l, err := load(name, loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return l, nil
}

// Path returns the path the file was loaded from
func (l *File) Path() string {
	return l.path
}

func section(f *ini.File, name string) *ini.Section {
	for _, sec := range f.Sections() {
		if strings.EqualFold(sec.Name(), name) {
			return sec
		}
	}
	return nil
}

// Value returns the value of key in section, or "" when either is missing.
// A key declared without '=' has no value.
func (l *File) Value(name, key string) string {
	sec := section(l.vals, name)
	if sec == nil {
		return ""
	}
	for _, k := range sec.Keys() {
		if strings.EqualFold(k.Name(), key) {
			return strings.TrimSpace(k.String())
		}
	}
	return ""
}

// Keys returns the key names of a whole section in declaration order.
// Keys declared without a value are included.
func (l *File) Keys(name string) []string {
	sec := section(l.f, name)
	if sec == nil {
		return nil
	}
	var names []string
	for _, k := range sec.Keys() {
		keyName := strings.TrimSpace(k.Name())
		if keyName != "" {
			names = append(names, keyName)
		}
	}
	return names
}

// Writer builds a package list document
type Writer struct {
	f *ini.File
}

// NewWriter creates an empty document
func NewWriter() *Writer {
	return &Writer{f: ini.Empty(loadOptions)}
}

// Set adds key=value to section, creating the section on first use.
// Sections are emitted in the order they were first used.
func (w *Writer) Set(section, key, value string) error {
	if _, err := w.f.Section(section).NewKey(key, value); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", section, key, err)
	}
	return nil
}

// AddSources writes locations as Source1..N
func (w *Writer) AddSources(locations []string) error {
	for i, loc := range locations {
		if err := w.Set(SectionSources, fmt.Sprintf("%s%d", SourceKeyPrefix, i+1), loc); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo writes the document to out
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

// Bytes returns the serialized document
func (w *Writer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
