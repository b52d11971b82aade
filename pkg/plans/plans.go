// Package plans renames Markdown planning files so every file carries its
// creation timestamp: <YYYY-MM-DD_HH:MM>-<name>.md, with any leading
// PLAN/PLAN- prefix stripped from the name. Planning and execution are
// separate so a dry run can print the operations without touching disk.
package plans

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/quidome/png-carver-go/pkg/createdat"
)

var (
	// ErrTargetExists is returned when a rename would overwrite a file
	// that is not part of the plan.
	ErrTargetExists = errors.New("rename target already exists")
)

// Action describes what should happen for a file.
type Action string

const (
	ActionRename Action = "rename"
	ActionSkip   Action = "skip" // name already correct
)

// Operation is one planned rename. Names are relative to the planned
// directory.
type Operation struct {
	Name    string
	NewName string
	Action  Action
}

// Options configures Plan.
type Options struct {
	// Location is used for timestamps parsed from filenames.
	// If nil, time.Local is used.
	Location *time.Location

	// Metadata is forwarded to the created-at attribution.
	Metadata createdat.MetadataExtractor
}

const stampLayout = "2006-01-02_15:04"

var (
	rePlanPrefix = regexp.MustCompile(`(?i)^PLAN-?`)
	reDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:_\d{2}:\d{2})?[-_]?`)
)

// Plan computes rename operations for every .md file directly inside dir.
//
// The target name is <stamp>-<core>.md where the stamp is the file's
// best-effort creation time and core is the original base name with any
// PLAN prefix and any previous date stamp removed. Stripping the old stamp
// makes the operation idempotent: a second run plans only skips.
func Plan(fsys fs.FS, dir string, opts Options) ([]Operation, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	// Names that will exist after the plan runs and must not be reused.
	taken := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			taken[e.Name()] = true
		}
	}

	var ops []Operation
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".md") {
			continue
		}

		res, err := createdat.Determine(fsys, path.Join(dir, name), createdat.Options{
			Location: opts.Location,
			Metadata: opts.Metadata,
		})
		if err != nil {
			return nil, fmt.Errorf("determine created-at for %s: %w", name, err)
		}

		target := targetName(name, res.CreatedAt)
		if target == name {
			taken[name] = true
			ops = append(ops, Operation{Name: name, NewName: name, Action: ActionSkip})
			continue
		}

		target = resolveCollision(target, taken)
		taken[target] = true
		ops = append(ops, Operation{Name: name, NewName: target, Action: ActionRename})
	}

	return ops, nil
}

func targetName(name string, createdAt time.Time) string {
	ext := filepath.Ext(name)
	core := strings.TrimSuffix(name, ext)
	core = rePlanPrefix.ReplaceAllString(core, "")
	core = reDatePrefix.ReplaceAllString(core, "")

	stamp := createdAt.Format(stampLayout)
	if core == "" {
		return stamp + ext
	}
	return stamp + "-" + core + ext
}

// resolveCollision appends _N before the extension until the name is free.
func resolveCollision(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Result contains the outcome of one executed operation.
type Result struct {
	Operation Operation
	Success   bool
	Error     error
}

// Apply executes the rename operations inside dir on the real filesystem.
// Skips are reported as successful without touching the file. A rename
// whose target already exists fails with ErrTargetExists rather than
// overwriting; remaining operations still run.
func Apply(dir string, ops []Operation) ([]Result, error) {
	results := make([]Result, 0, len(ops))

	for _, op := range ops {
		result := Result{Operation: op}

		if op.Action == ActionSkip {
			result.Success = true
			results = append(results, result)
			continue
		}

		from := filepath.Join(dir, op.Name)
		to := filepath.Join(dir, op.NewName)

		if _, err := os.Lstat(to); err == nil {
			result.Error = fmt.Errorf("%s: %w", op.NewName, ErrTargetExists)
			results = append(results, result)
			continue
		} else if !os.IsNotExist(err) {
			result.Error = fmt.Errorf("stat target: %w", err)
			results = append(results, result)
			continue
		}

		if err := os.Rename(from, to); err != nil {
			result.Error = fmt.Errorf("rename: %w", err)
			results = append(results, result)
			continue
		}

		result.Success = true
		results = append(results, result)
	}

	return results, nil
}
