package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const devVersion = "0.1.0-dev"

// Overridden at release time with -ldflags "-X".
var (
	AppName   = "gfxtab-api"
	Version   = devVersion
	Revision  = "HEAD"
	BuildDate = ""
)

type buildInfo struct {
	mainVersion string
	settings    map[string]string
}

func readBuildInfo() (buildInfo, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return buildInfo{}, false
	}
	bi := buildInfo{mainVersion: info.Main.Version, settings: make(map[string]string, len(info.Settings))}
	for _, s := range info.Settings {
		bi.settings[s.Key] = s.Value
	}
	return bi, true
}

// apply fills only the fields ldflags left at their defaults.
func (bi buildInfo) apply() {
	if Version == devVersion || Version == "" {
		if v := bi.mainVersion; v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}

	if Revision == "HEAD" || Revision == "" {
		if r := bi.settings["vcs.revision"]; r != "" {
			if len(r) > 12 {
				r = r[:12]
			}
			if bi.settings["vcs.modified"] == "true" {
				r += "-dirty"
			}
			Revision = r
		}
	}

	if BuildDate == "" {
		BuildDate = bi.settings["vcs.time"]
	}
}

// Short returns `0.1.0 (5e23a4)`
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Revision)
}

// UserAgent identifies this build to upstream services - `gfxtab-api/0.1.0`
func UserAgent() string {
	return AppName + "/" + Version
}

// Detailed returns `0.1.0 (5e23a4; go1.23.6; linux/amd64; 2025-01-01T00:00:00Z)`
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s; %s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH, BuildDate)
}

func DetailedWithApp() string {
	return AppName + " " + Detailed()
}

func init() {
	if bi, ok := readBuildInfo(); ok {
		bi.apply()
	}
	if BuildDate == "" {
		BuildDate = time.Now().UTC().Format(time.RFC3339)
	}
}
