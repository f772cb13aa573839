// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import (
	"io/ioutil"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// SymbolsFileExt is appended to an object file name to name its sidecar.
const SymbolsFileExt = ".sym"

// SymbolsPath returns the sidecar file name for an object file.
func SymbolsPath(object string) string {
	return object + SymbolsFileExt
}

// Entry names one address: a method entry point in the code segment, or a
// class descriptor in the stack segment.
type Entry struct {
	Addr int    `cbor:"addr"`
	Name string `cbor:"name"`
	Line int    `cbor:"line"` // zero-based source line
}

// Symbols is the debugging information produced alongside an object file.
type Symbols struct {
	Source  string  `cbor:"source"`
	Lines   []int   `cbor:"lines"`   // zero-based source line of each instruction
	Methods []Entry `cbor:"methods"` // sorted by code address
	Classes []Entry `cbor:"classes"` // sorted by descriptor address
}

// MethodAt returns the method whose entry point is addr.
func (s *Symbols) MethodAt(addr int) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	for _, e := range s.Methods {
		if e.Addr == addr {
			return e, true
		}
	}
	return Entry{}, false
}

// MethodContaining returns the method whose code includes addr: the one with
// the greatest entry point not after addr.
func (s *Symbols) MethodContaining(addr int) (Entry, bool) {
	if s == nil || len(s.Methods) == 0 {
		return Entry{}, false
	}
	i := sort.Search(len(s.Methods), func(i int) bool { return s.Methods[i].Addr > addr })
	if i == 0 {
		return Entry{}, false
	}
	return s.Methods[i-1], true
}

// ClassAt returns the class whose descriptor lives at addr in the stack.
func (s *Symbols) ClassAt(addr int) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	for _, e := range s.Classes {
		if e.Addr == addr {
			return e, true
		}
	}
	return Entry{}, false
}

// Line returns the zero-based source line of the instruction at addr.
func (s *Symbols) Line(addr int) (int, bool) {
	if s == nil || addr < 0 || addr >= len(s.Lines) {
		return 0, false
	}
	return s.Lines[addr], true
}

// Sort puts the method and class tables in address order.
func (s *Symbols) Sort() {
	sort.SliceStable(s.Methods, func(i, j int) bool { return s.Methods[i].Addr < s.Methods[j].Addr })
	sort.SliceStable(s.Classes, func(i, j int) bool { return s.Classes[i].Addr < s.Classes[j].Addr })
}

var symbolsEncMode cbor.EncMode

func init() {
	var err error
	symbolsEncMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// MarshalSymbols encodes symbols in canonical CBOR.
func MarshalSymbols(s *Symbols) ([]byte, error) {
	b, err := symbolsEncMode.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encoding symbols")
	}
	return b, nil
}

// UnmarshalSymbols decodes symbols encoded by MarshalSymbols.
func UnmarshalSymbols(b []byte) (*Symbols, error) {
	s := &Symbols{}
	if err := cbor.Unmarshal(b, s); err != nil {
		return nil, errors.Wrap(err, "decoding symbols")
	}
	return s, nil
}

// WriteSymbolsFile writes the sidecar file.
func WriteSymbolsFile(name string, s *Symbols) error {
	b, err := MarshalSymbols(s)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(filepath.Clean(name), b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write symbols %q", name)
	}
	return nil
}

// ReadSymbolsFile reads a sidecar file.
func ReadSymbolsFile(name string) (*Symbols, error) {
	b, err := ioutil.ReadFile(filepath.Clean(name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read symbols %q", name)
	}
	return UnmarshalSymbols(b)
}
