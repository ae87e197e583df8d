// Package deps reports whether the external binaries songpatch shells out to
// are installed.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"songpatch/internal/config"
)

// Requirement defines an external dependency songpatch relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArg is passed to the binary to print its version; empty skips the probe.
	VersionArg string
	Optional   bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description"`
	Version     string `json:"version,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

const versionTimeout = 5 * time.Second

// Requirements lists the binaries used by the configured tool.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Transcodes and patches audio; extracts fingerprint windows", VersionArg: "-version"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Measures candidate duration for the length check", VersionArg: "-version"},
		{Name: "fpcalc", Command: cfg.FPcalcBinary(), Description: "Chromaprint fingerprints for matching and registration", VersionArg: "-version"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		if req.VersionArg != "" {
			status.Version = probeVersion(ctx, path, req.VersionArg)
		}
		results = append(results, status)
	}
	return results
}

// Missing returns the names of required dependencies that are unavailable.
func Missing(statuses []Status) []string {
	var names []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			names = append(names, s.Name)
		}
	}
	return names
}

// probeVersion returns the first non-empty output line, or "" on failure.
func probeVersion(ctx context.Context, path, arg string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, arg).CombinedOutput() //nolint:gosec
	if err != nil && len(out) == 0 {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
