// Package publish copies a rendered tree into a timestamped release
// directory and atomically repoints the `current` symlink. The symlink
// rename is the only non-idempotent step: everything before it can be
// re-run from scratch after a crash without manual cleanup.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
)

// State tracks how far a publish run has progressed.
type State string

const (
	StateBuilding         State = "building"
	StateCopied           State = "copied"
	StateVerified         State = "verified"
	StateCutOver          State = "cut-over"
	StateServiceRestarted State = "service-restarted"
)

// ErrVerifyFailed wraps any post-copy invariant violation. The release
// directory is left in place for inspection; current is untouched.
var ErrVerifyFailed = errors.New("release verification failed")

const (
	releasesDirName = "releases"
	currentLinkName = "current"
	timestampLayout = "20060102150405"
)

// Config controls one publish run.
type Config struct {
	// SourceDir is the fully rendered tree to publish.
	SourceDir string
	// ReleaseRoot holds releases/ and the current symlink.
	ReleaseRoot string
	// KeepReleases is how many releases to retain after cut-over.
	KeepReleases int
	// DryRun verifies the source tree and reports what would happen
	// without copying, cutting over, or touching the release root.
	DryRun bool
	// RestartContainer restarts the named container after cut-over.
	RestartContainer bool
	Container        string
	// LegacyHosts are hostnames that must not appear anywhere in the
	// published HTML. A match fails verification.
	LegacyHosts []string
}

// Validate checks the config before any filesystem work.
func (c Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source dir must be set")
	}
	if c.ReleaseRoot == "" {
		return fmt.Errorf("release root must be set")
	}
	if c.KeepReleases < 1 {
		return fmt.Errorf("keep releases must be at least 1, got %d", c.KeepReleases)
	}
	if c.RestartContainer && c.Container == "" {
		return fmt.Errorf("restart requested but no container name given")
	}
	return nil
}

// Result describes a completed (or dry) publish run.
type Result struct {
	State      State
	ReleaseDir string
	Pruned     []string
}

// Publisher performs publish runs.
type Publisher struct {
	cfg    Config
	clock  directory.Clock
	logger *zap.Logger
}

// New wires a Publisher. A nil logger is replaced with a no-op.
func New(cfg Config, clock directory.Clock, logger *zap.Logger) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{cfg: cfg, clock: clock, logger: logger}, nil
}

// Run executes the publish state machine. On any failure before
// cut-over, the current symlink still points at the prior release.
func (p *Publisher) Run(ctx context.Context) (Result, error) {
	res := Result{State: StateBuilding}

	info, err := os.Stat(p.cfg.SourceDir)
	if err != nil || !info.IsDir() {
		return res, fmt.Errorf("source dir %s is missing or not a directory", p.cfg.SourceDir)
	}
	if err := requireFile(filepath.Join(p.cfg.SourceDir, "index.html")); err != nil {
		return res, fmt.Errorf("source tree incomplete: %w", err)
	}

	releaseDir := filepath.Join(p.cfg.ReleaseRoot, releasesDirName,
		p.clock.Now().Format(timestampLayout))
	res.ReleaseDir = releaseDir

	if p.cfg.DryRun {
		// The verification gate still runs, against the source tree
		// since no copy exists: a dry run must report the same verdict
		// a real publish would reach.
		if err := p.verify(p.cfg.SourceDir); err != nil {
			return res, err
		}
		res.State = StateVerified
		p.logger.Info("dry run: would publish",
			zap.String("source", p.cfg.SourceDir),
			zap.String("release", releaseDir))
		return res, nil
	}

	if err := copyTree(p.cfg.SourceDir, releaseDir); err != nil {
		return res, fmt.Errorf("copy release: %w", err)
	}
	res.State = StateCopied
	p.logger.Info("release copied", zap.String("release", releaseDir))

	if err := p.verify(releaseDir); err != nil {
		return res, err
	}
	res.State = StateVerified

	if err := cutOver(p.cfg.ReleaseRoot, releaseDir); err != nil {
		return res, fmt.Errorf("cut over: %w", err)
	}
	res.State = StateCutOver
	p.logger.Info("cut over", zap.String("release", releaseDir))

	if p.cfg.RestartContainer {
		if err := p.restart(ctx); err != nil {
			// The new release is live; a failed restart is reported but
			// does not roll back the cut-over.
			p.logger.Warn("container restart failed",
				zap.String("container", p.cfg.Container), zap.Error(err))
		} else {
			res.State = StateServiceRestarted
		}
	}

	pruned, err := p.prune()
	if err != nil {
		p.logger.Warn("prune failed", zap.Error(err))
	}
	res.Pruned = pruned
	return res, nil
}

// verify runs the post-copy invariant checks against the release copy,
// never the source: the copy is what goes live.
func (p *Publisher) verify(releaseDir string) error {
	for _, rel := range []string{"index.html", "sitemap.xml", "robots.txt"} {
		if err := requireFile(filepath.Join(releaseDir, rel)); err != nil {
			return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
		}
	}
	hits, err := scanForHosts(releaseDir, p.cfg.LegacyHosts)
	if err != nil {
		return fmt.Errorf("%w: scan: %v", ErrVerifyFailed, err)
	}
	if len(hits) > 0 {
		return fmt.Errorf("%w: legacy host references in %v", ErrVerifyFailed, hits)
	}
	p.logger.Info("release verified", zap.String("release", releaseDir))
	return nil
}

// cutOver atomically repoints current at releaseDir by renaming a
// freshly created symlink over it. rename(2) is atomic on POSIX, so
// readers observe either the old target or the new one, never neither.
func cutOver(releaseRoot, releaseDir string) error {
	target, err := filepath.Rel(releaseRoot, releaseDir)
	if err != nil {
		target = releaseDir
	}
	tmp := filepath.Join(releaseRoot, ".current.tmp")
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(releaseRoot, currentLinkName))
}

func (p *Publisher) restart(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "restart", p.cfg.Container) //nolint:gosec // operator-supplied name
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker restart: %w: %s", err, out)
	}
	return nil
}

// prune removes the oldest releases beyond KeepReleases. The release
// current points at is never removed, regardless of age.
func (p *Publisher) prune() ([]string, error) {
	releasesDir := filepath.Join(p.cfg.ReleaseRoot, releasesDirName)
	entries, err := os.ReadDir(releasesDir)
	if err != nil {
		return nil, err
	}

	currentTarget, _ := os.Readlink(filepath.Join(p.cfg.ReleaseRoot, currentLinkName))
	if currentTarget != "" && !filepath.IsAbs(currentTarget) {
		currentTarget = filepath.Join(p.cfg.ReleaseRoot, currentTarget)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	// Timestamped names sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var pruned []string
	for i, name := range names {
		if i < p.cfg.KeepReleases {
			continue
		}
		dir := filepath.Join(releasesDir, name)
		if dir == currentTarget {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return pruned, err
		}
		pruned = append(pruned, name)
		p.logger.Info("pruned release", zap.String("release", name))
	}
	return pruned, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// ReleaseTimestamp parses the timestamp of a release directory name.
func ReleaseTimestamp(name string) (time.Time, error) {
	return time.Parse(timestampLayout, name)
}
