package collectors

import (
	"context"
	"strings"

	"github.com/breeze-rmm/system-reporter/internal/shell"
)

// DefaultApplications is the watchlist used when none is configured.
var DefaultApplications = []AppWatch{
	{Package: "google-chrome-stable", Name: "Google Chrome"},
	{Package: "code", Name: "VS Code"},
	{Package: "firefox", Name: "Firefox"},
	{Package: "docker", Name: "Docker"},
	{Package: "nodejs", Name: "Node.js"},
	{Package: "python3", Name: "Python"},
}

const upgradableCommand = "apt list --upgradable 2>/dev/null"

// ApplicationsCollector reports installed watched packages and whether the
// package database lists an upgrade for them.
type ApplicationsCollector struct {
	sh        Shell
	watchlist []AppWatch
}

// NewApplicationsCollector creates an ApplicationsCollector for the given watchlist.
func NewApplicationsCollector(sh Shell, watchlist []AppWatch) *ApplicationsCollector {
	return &ApplicationsCollector{sh: sh, watchlist: append([]AppWatch(nil), watchlist...)}
}

// Collect omits every package without an installed version line. The
// upgradable list is read at most once per call.
func (c *ApplicationsCollector) Collect(ctx context.Context) ([]ApplicationInfo, error) {
	p := &partial{fragment: FragmentApplications}
	apps := []ApplicationInfo{}

	var upgradable string
	listed := false
	for _, w := range c.watchlist {
		// dpkg -l exits 1 for unknown packages, which simply means not installed.
		res := c.sh.Run(ctx, "dpkg -l "+w.Package+" 2>/dev/null")
		if res.Reason == shell.ReasonTimeout || res.Reason == shell.ReasonSpawn {
			p.add("dpkg -l "+w.Package, res.Err)
		}
		version := installedVersion(res.Text(), w.Package)
		if version == "" {
			continue
		}

		if !listed {
			up := c.sh.Run(ctx, upgradableCommand)
			p.add("apt list --upgradable", up.Err)
			upgradable = up.Text()
			listed = true
		}

		apps = append(apps, ApplicationInfo{
			Name:            w.Name,
			CurrentVersion:  version,
			UpdateAvailable: listsUpgrade(upgradable, w.Package),
			Category:        ApplicationCategory,
		})
	}

	return apps, p.err()
}

// installedVersion finds the version column of the package's "ii" row in
// `dpkg -l` output. Removed packages (rc) and other names are ignored.
func installedVersion(dpkg, pkg string) string {
	for _, line := range strings.Split(dpkg, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "ii" {
			continue
		}
		name := fields[1]
		if name == pkg || strings.HasPrefix(name, pkg+":") {
			return fields[2]
		}
	}
	return ""
}

// listsUpgrade reports whether any line of `apt list --upgradable` names pkg.
func listsUpgrade(aptList, pkg string) bool {
	for _, line := range strings.Split(aptList, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), pkg+"/") {
			return true
		}
	}
	return false
}
