package crawler

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tehKaiN/gdunsharp/internal/parser"
	"github.com/tehKaiN/gdunsharp/internal/report"
)

// Crawler scans a project directory for C# source files.
type Crawler struct {
	parser   *parser.Parser
	reporter *report.Reporter
	ignored  []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler(p *parser.Parser, rep *report.Reporter) *Crawler {
	return &Crawler{
		parser:   p,
		reporter: rep,
		ignored:  []string{".git", ".godot", ".mono", ".vs", "bin", "obj"},
	}
}

// ScanProject walks the root directory and parses every .cs file it finds.
// It uses a callback to stream parsed files, preventing large memory buildup.
// A file that cannot be read or parsed is reported and skipped; it never
// fails the whole scan.
func (c *Crawler) ScanProject(ctx context.Context, root string, onFile func(*parser.File)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		// Only process C# files
		if !strings.HasSuffix(d.Name(), ".cs") {
			return nil
		}

		file, err := c.parser.ParseFile(ctx, path)
		if err != nil {
			// Report and continue instead of failing the whole scan
			c.reporter.Warnf(path, "skipping file: %v", err)
			return nil
		}

		onFile(file)
		return nil
	})
}
