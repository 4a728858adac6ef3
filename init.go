package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/lanting/internal/model"
)

const (
	sentinelStart = "<!-- lanting:start -->"
	sentinelEnd   = "<!-- lanting:end -->"
)

// runInit implements the `lanting init` subcommand, which writes (or updates)
// a section describing the comment record format in an archive README.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lanting init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: lanting init [flags] [path-to-README.md]

Write a section describing the comment record format to a README file. The
section is wrapped in sentinel comments so it can be updated in place on
subsequent runs without touching surrounding content. Creates the file if it
does not exist.

path-to-README.md defaults to ./archives/README.md. Keep it outside the
comments directory, or list it in .archiveignore, so it is not compiled.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := filepath.Join("archives", "README.md")
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote lanting section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped record format block.
func generateSection() string {
	fields := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		kind := "single value"
		if f.IsMulti() {
			kind = "comma-separated list"
		}
		if f.IsFacet() {
			kind += ", counted in fieldFreqMap"
		}
		fields[i] = fmt.Sprintf("- `%s`: %s", f, kind)
	}

	body := `## Comment records

Each file in ` + "`comments/`" + ` describes one archive. The archive id is the part
of the file name before the first ` + "`-`" + `, e.g. ` + "`42-some-title.md`" + ` has id ` + "`42`" + `.

**Fields.** A field is a header line followed by its value and a blank line:

` + "```" + `
# title
Some Title

# author
Second Author, First Author

# remarks
Free text until the end of the file.
` + "```" + `

Recognized fields:

` + strings.Join(fields, "\n") + `

Anything left after the fields are removed becomes the remarks; the
` + "`# remarks`" + ` header itself is dropped.

**Origs.** Original files are named with the archive id, optionally followed
by a part number: ` + "`42.pdf`" + `, ` + "`42-1.pdf`" + `, ` + "`0042.epub`" + `. Run ` + "`lanting check`" + ` to list
archives without origs and origs without archives.

**Ignoring files.** Names listed in ` + "`comments/.archiveignore`" + ` (gitignore
syntax) are not compiled.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
