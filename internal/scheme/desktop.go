package scheme

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// desktopRegistrar registers the scheme on freedesktop systems: a desktop
// entry advertising x-scheme-handler/<scheme>, made the default handler
// with xdg-mime.
type desktopRegistrar struct {
	opts Options
	dir  string
}

func newDesktopRegistrar(opts Options) (*desktopRegistrar, error) {
	dataHome := opts.DataHome
	if dataHome == "" {
		dataHome = os.Getenv("XDG_DATA_HOME")
	}
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return &desktopRegistrar{opts: opts, dir: filepath.Join(dataHome, "applications")}, nil
}

func (d *desktopRegistrar) fileName() string {
	return d.opts.AppID + ".desktop"
}

func (d *desktopRegistrar) path() string {
	return filepath.Join(d.dir, d.fileName())
}

func (d *desktopRegistrar) mimeType() string {
	return "x-scheme-handler/" + d.opts.Scheme
}

func (d *desktopRegistrar) Register(ctx context.Context) error {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.dir, err)
	}

	entry := DesktopEntry{
		Name:       d.opts.ProductName,
		Executable: d.opts.Executable,
		MimeTypes:  []string{d.mimeType()},
	}
	if err := writeFileAtomic(d.path(), []byte(entry.Render()), 0644); err != nil {
		return fmt.Errorf("failed to write desktop entry: %w", err)
	}

	if err := d.opts.Runner(ctx, "xdg-mime", "default", d.fileName(), d.mimeType()); err != nil {
		if !errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("failed to set default scheme handler: %w", err)
		}
		d.opts.Logger.Warn().Msg("xdg-mime not found, relying on desktop entry MimeType only")
	}

	// Refreshes the mimeinfo cache; missing on some systems, never fatal.
	if err := d.opts.Runner(ctx, "update-desktop-database", d.dir); err != nil {
		d.opts.Logger.Debug().Err(err).Msg("update-desktop-database failed")
	}

	d.opts.Logger.Info().Str("path", d.path()).Str("scheme", d.opts.Scheme).Msg("Registered scheme handler")
	return nil
}

func (d *desktopRegistrar) Unregister(ctx context.Context) error {
	if err := os.Remove(d.path()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotRegistered
		}
		return fmt.Errorf("failed to remove desktop entry: %w", err)
	}
	if err := d.opts.Runner(ctx, "update-desktop-database", d.dir); err != nil {
		d.opts.Logger.Debug().Err(err).Msg("update-desktop-database failed")
	}
	return nil
}

func (d *desktopRegistrar) Status(context.Context) (*Status, error) {
	st := &Status{Method: MethodDesktopEntry, Location: d.path()}

	f, err := os.Open(d.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return nil, fmt.Errorf("failed to read desktop entry: %w", err)
	}
	defer f.Close()

	entry, err := ParseDesktopEntry(f)
	if err != nil {
		return nil, err
	}
	st.Command = entry.Exec
	for _, m := range entry.MimeTypes {
		if m == d.mimeType() {
			st.Registered = true
		}
	}
	st.Current = st.Registered && entry.Exec == execLine(d.opts.Executable)
	return st, nil
}

// DesktopEntry is the subset of the freedesktop Desktop Entry format the
// registration needs.
type DesktopEntry struct {
	Name       string
	Executable string
	MimeTypes  []string

	// Exec is the raw Exec line; filled by ParseDesktopEntry.
	Exec string
}

// Render produces the file contents. NoDisplay keeps the handler out of
// application menus.
func (e DesktopEntry) Render() string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + e.Name + "\n")
	b.WriteString("Exec=" + execLine(e.Executable) + "\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("NoDisplay=true\n")
	b.WriteString("MimeType=" + strings.Join(e.MimeTypes, ";") + ";\n")
	return b.String()
}

// ParseDesktopEntry reads Name, Exec and MimeType from the [Desktop Entry]
// group.
func ParseDesktopEntry(r io.Reader) (*DesktopEntry, error) {
	entry := &DesktopEntry{}
	inGroup := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inGroup = line == "[Desktop Entry]"
			continue
		}
		if !inGroup {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			entry.Name = strings.TrimSpace(value)
		case "Exec":
			entry.Exec = strings.TrimSpace(value)
		case "MimeType":
			for _, m := range strings.Split(value, ";") {
				if m = strings.TrimSpace(m); m != "" {
					entry.MimeTypes = append(entry.MimeTypes, m)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse desktop entry: %w", err)
	}
	return entry, nil
}

// execLine quotes exe for an Exec key and appends the %u field code, which
// the launcher replaces with the URL.
func execLine(exe string) string {
	return quoteExecArg(exe) + " %u"
}

// quoteExecArg applies the Desktop Entry quoting rules: arguments with
// reserved characters are double-quoted, and inside quotes ", `, $ and \
// are backslash-escaped. The quoted form is then escaped as a string value,
// so a literal backslash ends up as four.
func quoteExecArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\r\n\"'\\><~|&;$*?#()`%") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '`', '$', '\\':
			b.WriteByte('\\')
		}
		if r == '%' {
			b.WriteString("%%")
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return stringValueEscaper.Replace(b.String())
}

var stringValueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
