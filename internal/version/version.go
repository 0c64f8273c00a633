// Package version holds build metadata, set at link time:
//
//	go build -ldflags "-X github.com/banshee-data/callrca/internal/version.Version=1.0.0 \
//	  -X github.com/banshee-data/callrca/internal/version.GitSHA=$(git rev-parse HEAD)"
package version

var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)

// String is the engineVersion stamped into every report, e.g.
// "1.0.0 (3f2a9c1)".
func String() string {
	sha := GitSHA
	if len(sha) > 7 {
		sha = sha[:7]
	}
	return Version + " (" + sha + ")"
}
