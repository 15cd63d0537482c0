package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
)

// VersionChecker verifies that the installed zig satisfies a semver constraint.
type VersionChecker struct {
	runner     Runner
	zig        string
	constraint string
}

// NewVersionChecker creates a checker. An empty constraint accepts any
// version but still requires zig to run.
func NewVersionChecker(runner Runner, zig, constraint string) *VersionChecker {
	return &VersionChecker{runner: runner, zig: zig, constraint: constraint}
}

// CheckToolchain runs `zig version` and returns the reported version.
func (c *VersionChecker) CheckToolchain(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, Command{Name: c.zig, Args: []string{"version"}})
	if err != nil {
		return "", startError(c.zig, err)
	}
	if res.ExitCode != 0 {
		return "", apperrors.NewToolchainError(c.zig, res.ExitCode, res.Stderr, nil)
	}

	reported := strings.TrimSpace(res.Stdout)
	if c.constraint == "" {
		return reported, nil
	}

	if err := CheckVersion(reported, c.constraint); err != nil {
		return reported, apperrors.NewConfigurationError("toolchain", fmt.Sprintf("unsupported %s version", c.zig), err)
	}
	return reported, nil
}

// CheckVersion reports whether version satisfies constraint. Prerelease and
// build suffixes such as "-dev.1234+abcdef" are ignored so development builds
// compare as their release.
func CheckVersion(version, constraint string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	release, err := v.SetPrerelease("")
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	release, err = release.SetMetadata("")
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	if !c.Check(&release) {
		return fmt.Errorf("version %s does not satisfy %q", release.String(), constraint)
	}
	return nil
}
