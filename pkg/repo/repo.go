package repo

import "fmt"

// Distribution is a named channel of a repository, e.g. "stable".
type Distribution string

func (d Distribution) String() string { return string(d) }

// Component is a section of a distribution, e.g. "main".
type Component string

func (c Component) String() string { return string(c) }

// Architecture is a repository architecture name, e.g. "amd64" or "loongarch64".
type Architecture string

func (a Architecture) String() string { return string(a) }

// PackagesPath returns the path segments of a Packages index relative to the mirror root.
func PackagesPath(dist Distribution, component Component, arch Architecture, compression Compression) []string {
	return []string{
		"dists", dist.String(), component.String(),
		fmt.Sprintf("binary-%s", arch),
		"Packages" + compression.Extension(),
	}
}
