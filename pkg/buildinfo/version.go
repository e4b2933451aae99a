// Package buildinfo holds the version stamped into moduletree builds.
//
//	go build -ldflags "-X github.com/matzehuels/moduletree/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/moduletree/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// cmd/moduletree also accepts main.version, main.commit and main.date and
// forwards them through cli.SetVersion.
package buildinfo

import "fmt"

// Build metadata. Unstamped builds report "dev".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String is the multi-line form printed by `moduletree --version`.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template.
func Template() string {
	return "{{.Name}} version " + Version + "\ncommit: " + Commit + "\nbuilt: " + Date + "\n"
}
