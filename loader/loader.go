// Package loader implements §6's bytecode ingestion: turning a raw byte
// vector or a hex-encoded file into the []byte core/vm and core/compiler
// expect, rejecting the one input shape both components refuse to run
// (empty code) before either ever sees it.
package loader

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/bnb-chain/evmcore/common"
)

// ErrInvalidRawData is §6's InvalidRawData: the input decoded to zero
// bytes, whether that's an empty file, an all-whitespace hex file, or an
// explicit empty []byte handed to LoadRaw.
var ErrInvalidRawData = errors.New("invalid raw data: empty bytecode")

// LoadRaw validates a raw bytecode buffer, rejecting an empty one.
func LoadRaw(code []byte) ([]byte, error) {
	if len(code) == 0 {
		return nil, ErrInvalidRawData
	}
	return code, nil
}

// LoadHexString decodes a hex-encoded bytecode string: two hex digits per
// byte, optional "0x"/"0X" prefix, per §6.
func LoadHexString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	code := common.FromHex(s)
	if code == nil && s != "" && s != "0x" && s != "0X" {
		return nil, errors.Errorf("loader: %q is not valid hex", s)
	}
	return LoadRaw(code)
}

// LoadHexFile reads path and decodes its contents as hex-encoded bytecode,
// tolerating surrounding whitespace and line breaks (the file may be
// wrapped at an arbitrary column) and an optional "0x" prefix.
func LoadHexFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close()

	var sb strings.Builder
	rd := bufio.NewReader(f)
	for {
		line, rerr := rd.ReadString('\n')
		sb.WriteString(line)
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, errors.Wrapf(rerr, "loader: read %s", path)
		}
	}

	return LoadHexString(strings.Join(strings.Fields(sb.String()), ""))
}

// LoadRawFile reads path's entire contents as raw (non-hex) bytecode bytes.
func LoadRawFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: open %s", path)
	}
	return LoadRaw(b)
}
