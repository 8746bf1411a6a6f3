package aosc

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

var archNames = map[string]string{
	"amd64":    "amd64",
	"386":      "i486",
	"arm64":    "arm64",
	"mips64":   "loongson3",
	"mips64le": "loongson3",
	"riscv64":  "riscv64",
	"ppc64le":  "ppc64el",
	"ppc64":    "ppc64",
}

// ArchName is the AOSC OS architecture name of the running binary.
func ArchName() (string, bool) {
	return ArchNameFor(runtime.GOARCH, cpuHasLSX)
}

// ArchNameFor maps a GOARCH value to an AOSC OS architecture name.
// hasLSX is only consulted on loong64, where the port is split by SIMD support.
func ArchNameFor(goarch string, hasLSX func() bool) (string, bool) {
	if goarch == "loong64" {
		if hasLSX != nil && hasLSX() {
			return "loongarch64", true
		}
		return "loongarch64_nosimd", true
	}
	name, ok := archNames[goarch]
	return name, ok
}

func cpuHasLSX() bool {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		slog.Debug("reading cpuinfo", slog.String("error", err.Error()))
		return false
	}
	defer f.Close()
	return HasLSX(f)
}

// HasLSX reports whether a /proc/cpuinfo listing advertises the LoongArch LSX extension.
func HasLSX(cpuinfo io.Reader) bool {
	scanner := bufio.NewScanner(cpuinfo)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "features") {
			continue
		}
		for _, feature := range strings.Fields(value) {
			if feature == "lsx" {
				return true
			}
		}
	}
	return false
}
