package aosc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Flavor is the AOSC OS distribution line a system belongs to.
type Flavor int

const (
	Mainline Flavor = iota + 1
	Afterglow
)

func (f Flavor) String() string {
	switch f {
	case Mainline:
		return "mainline"
	case Afterglow:
		return "afterglow"
	default:
		return "unknown"
	}
}

const osReleasePath = "/etc/os-release"

// DetectFlavor reads /etc/os-release. A missing file or a foreign OS is reported as absent.
func DetectFlavor() (Flavor, bool, error) {
	f, err := os.Open(osReleasePath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("opening os-release: %w", err)
	}
	defer f.Close()

	flavor, ok := ParseOSRelease(f)
	return flavor, ok, nil
}

// ParseOSRelease picks the flavor from the first NAME= line.
func ParseOSRelease(in io.Reader) (Flavor, bool) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "NAME=")
		if !ok {
			continue
		}
		if unquoted, err := strconv.Unquote(value); err == nil {
			value = unquoted
		} else {
			value = strings.Trim(value, `'`)
		}
		switch value {
		case "AOSC OS":
			return Mainline, true
		case "AOSC OS/Retro", "Afterglow":
			return Afterglow, true
		default:
			return 0, false
		}
	}
	return 0, false
}
