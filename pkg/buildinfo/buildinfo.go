/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package buildinfo reports the version of the running gig binary.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// BinaryVersion is set at build time via -ldflags. Defaults to "dev".
var BinaryVersion = "dev"

// Info is the version payload printed by `gig version`.
type Info struct {
	Version       string `json:"version" yaml:"version"`
	ModuleVersion string `json:"moduleVersion,omitempty" yaml:"moduleVersion,omitempty"`
	Commit        string `json:"commit,omitempty" yaml:"commit,omitempty"`
	GoVersion     string `json:"goVersion" yaml:"goVersion"`
	Platform      string `json:"platform" yaml:"platform"`
}

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Current collects build information for the running binary.
func Current() Info {
	info := Info{
		Version:       BinaryVersion,
		ModuleVersion: ModuleVersion(),
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		}
	}
	return info
}
