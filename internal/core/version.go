package core

import (
	"github.com/Masterminds/semver/v3"

	"github.com/skopdev/skop/internal/log"
)

// ShouldInstall decides whether a marketplace entry needs installing over
// the existing record. The check order is deliberate:
//
//  1. no record: fresh install
//  2. remote entry unversioned: always reinstall (the descriptor gives us
//     nothing to compare, so absence is treated as "changed")
//  3. record unversioned: reinstall to capture a version
//  4. both versioned: reinstall iff remote is strictly newer
//  5. either version unparsable: reinstall defensively
func ShouldInstall(p *PluginEntry, rec *InstallRecord) bool {
	logger := log.Sugar()

	if rec == nil {
		logger.Infof("Installing new plugin: %s", p.Name)
		return true
	}

	if p.Version == "" {
		logger.Infof("Plugin %s has no version in marketplace, updating.", p.Name)
		return true
	}

	if rec.Version == "" {
		logger.Infof("Plugin %s exists but no version in metadata, updating.", p.Name)
		return true
	}

	curr, errCurr := semver.NewVersion(rec.Version)
	next, errNext := semver.NewVersion(p.Version)
	if errCurr != nil || errNext != nil {
		logger.Warnf("Version parse failed for %s, reinstalling to be safe.", p.Name)
		return true
	}

	if next.GreaterThan(curr) {
		logger.Infof("Updating %s from %s to %s", p.Name, rec.Version, p.Version)
		return true
	}

	logger.Infof("Plugin %s is up to date (%s).", p.Name, rec.Version)
	return false
}
