// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ObjectFileExt is the extension of mJAM object files.
const ObjectFileExt = ".mJAM"

// instrBytes is the encoded size of one instruction: four big-endian int32
// words in the order op, n, r, d.
const instrBytes = 16

var ErrTruncated = errors.New("object file ends inside an instruction")

// ObjectPath returns the object file name for a source file name: the source
// path with its extension replaced.
func ObjectPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ObjectFileExt
}

// WriteProgram encodes the program to w.  There is no header; the end of the
// stream is the end of the code.
func WriteProgram(w io.Writer, prog []Instr) error {
	var buf [instrBytes]byte
	for addr, i := range prog {
		if i.N < 0 || i.N > 255 {
			return errors.Errorf("instruction %d %s: length field %d out of range", addr, i, i.N)
		}
		if i.D < math.MinInt32 || i.D > math.MaxInt32 {
			return errors.Errorf("instruction %d %s: displacement out of range", addr, i)
		}
		binary.BigEndian.PutUint32(buf[0:], uint32(int32(i.Op)))
		binary.BigEndian.PutUint32(buf[4:], uint32(int32(i.N)))
		binary.BigEndian.PutUint32(buf[8:], uint32(int32(i.R)))
		binary.BigEndian.PutUint32(buf[12:], uint32(int32(i.D)))
		if _, err := w.Write(buf[:]); err != nil {
			return errors.Wrapf(err, "writing instruction %d", addr)
		}
	}
	return nil
}

// ReadProgram decodes instructions from r until end of file.  Opcodes and
// registers are not validated here; the machine rejects them when executed.
func ReadProgram(r io.Reader) ([]Instr, error) {
	var (
		prog []Instr
		buf  [instrBytes]byte
	)
	for {
		n, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			return prog, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrTruncated, "%d trailing bytes after instruction %d", n, len(prog))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading instruction %d", len(prog))
		}
		prog = append(prog, Instr{
			Op: Opcode(int32(binary.BigEndian.Uint32(buf[0:]))),
			N:  int(int32(binary.BigEndian.Uint32(buf[4:]))),
			R:  Reg(int32(binary.BigEndian.Uint32(buf[8:]))),
			D:  int(int32(binary.BigEndian.Uint32(buf[12:]))),
		})
	}
}

// WriteFile writes the object's program to the named file, and its symbols,
// if any, to the sidecar next to it.  The object file is written to a
// temporary name first so that a failed write leaves no partial file behind.
func WriteFile(name string, obj *Object) error {
	tmp := name + ".tmp"
	f, err := os.OpenFile(filepath.Clean(tmp), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to create object file %q", name)
	}
	w := bufio.NewWriter(f)
	err = WriteProgram(w, obj.Program)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(tmp); rerr != nil {
			glog.Warning(rerr)
		}
		return errors.Wrapf(err, "failed to write object file %q", name)
	}
	if err := os.Rename(tmp, name); err != nil {
		return errors.Wrapf(err, "failed to install object file %q", name)
	}
	glog.V(1).Infof("wrote %d instructions to %s", len(obj.Program), name)
	if obj.Symbols == nil {
		return nil
	}
	return WriteSymbolsFile(SymbolsPath(name), obj.Symbols)
}

// ReadFile loads an object file, and the symbol sidecar if one exists.
func ReadFile(name string) (*Object, error) {
	f, err := os.Open(filepath.Clean(name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open object file %q", name)
	}
	defer func() {
		if err := f.Close(); err != nil {
			glog.Warning(err)
		}
	}()
	prog, err := ReadProgram(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "malformed object file %q", name)
	}
	obj := &Object{Program: prog}
	syms, err := ReadSymbolsFile(SymbolsPath(name))
	switch {
	case os.IsNotExist(errors.Cause(err)):
		glog.V(1).Infof("no symbols for %s", name)
	case err != nil:
		glog.Warningf("ignoring symbols for %s: %s", name, err)
	default:
		obj.Symbols = syms
	}
	return obj, nil
}
