package scheme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	calls [][]string
	fail  map[string]error
}

func (r *recordingRunner) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.fail[name]
}

func linuxOptions(t *testing.T, runner *recordingRunner) Options {
	t.Helper()
	return Options{
		AppID:       "com.algorandfoundation.lora",
		Scheme:      "algokit-lora",
		ProductName: "AlgoKit lora",
		Executable:  "/opt/lora/algokit-lora",
		DataHome:    t.TempDir(),
		Runner:      runner.run,
	}
}

func TestNewFor_RequiresIdentity(t *testing.T) {
	_, err := NewFor("linux", Options{Scheme: "algokit-lora"})
	assert.Error(t, err)

	_, err = NewFor("linux", Options{AppID: "com.x"})
	assert.Error(t, err)
}

func TestNewFor_SelectsPlatform(t *testing.T) {
	runner := &recordingRunner{}

	r, err := NewFor("linux", linuxOptions(t, runner))
	require.NoError(t, err)
	assert.IsType(t, &desktopRegistrar{}, r)

	r, err = NewFor("freebsd", linuxOptions(t, runner))
	require.NoError(t, err)
	assert.IsType(t, &desktopRegistrar{}, r)

	r, err = NewFor("darwin", linuxOptions(t, runner))
	require.NoError(t, err)
	assert.IsType(t, &bundleRegistrar{}, r)
}

func TestDesktopRegistrar_RegisterWritesEntry(t *testing.T) {
	runner := &recordingRunner{}
	opts := linuxOptions(t, runner)
	r, err := NewFor("linux", opts)
	require.NoError(t, err)

	require.NoError(t, r.Register(context.Background()))

	path := filepath.Join(opts.DataHome, "applications", "com.algorandfoundation.lora.desktop")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "[Desktop Entry]\n"))
	assert.Contains(t, content, "Name=AlgoKit lora\n")
	assert.Contains(t, content, "Exec=/opt/lora/algokit-lora %u\n")
	assert.Contains(t, content, "MimeType=x-scheme-handler/algokit-lora;\n")

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"xdg-mime", "default", "com.algorandfoundation.lora.desktop", "x-scheme-handler/algokit-lora"}, runner.calls[0])
	assert.Equal(t, "update-desktop-database", runner.calls[1][0])
}

func TestDesktopRegistrar_RegisterIsIdempotent(t *testing.T) {
	runner := &recordingRunner{}
	opts := linuxOptions(t, runner)
	r, err := NewFor("linux", opts)
	require.NoError(t, err)

	require.NoError(t, r.Register(context.Background()))
	require.NoError(t, r.Register(context.Background()))

	entries, err := os.ReadDir(filepath.Join(opts.DataHome, "applications"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestDesktopRegistrar_XdgMimeFailureIsFatal(t *testing.T) {
	runner := &recordingRunner{fail: map[string]error{"xdg-mime": errors.New("exit status 1")}}
	r, err := NewFor("linux", linuxOptions(t, runner))
	require.NoError(t, err)

	err = r.Register(context.Background())
	assert.ErrorContains(t, err, "default scheme handler")
}

func TestDesktopRegistrar_MissingHelpersAreTolerated(t *testing.T) {
	runner := &recordingRunner{fail: map[string]error{
		"xdg-mime":                fmt.Errorf("xdg-mime: %w", exec.ErrNotFound),
		"update-desktop-database": fmt.Errorf("update-desktop-database: %w", exec.ErrNotFound),
	}}
	r, err := NewFor("linux", linuxOptions(t, runner))
	require.NoError(t, err)

	assert.NoError(t, r.Register(context.Background()))
}

func TestDesktopRegistrar_Status(t *testing.T) {
	runner := &recordingRunner{}
	opts := linuxOptions(t, runner)
	r, err := NewFor("linux", opts)
	require.NoError(t, err)
	ctx := context.Background()

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Registered)
	assert.Equal(t, MethodDesktopEntry, st.Method)

	require.NoError(t, r.Register(ctx))
	st, err = r.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Registered)
	assert.True(t, st.Current)
	assert.Equal(t, "/opt/lora/algokit-lora %u", st.Command)

	// A registration made by another build of the binary.
	opts.Executable = "/usr/bin/algokit-lora"
	other, err := NewFor("linux", opts)
	require.NoError(t, err)
	st, err = other.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Registered)
	assert.False(t, st.Current)
}

func TestDesktopRegistrar_Unregister(t *testing.T) {
	runner := &recordingRunner{}
	r, err := NewFor("linux", linuxOptions(t, runner))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, r.Unregister(ctx), ErrNotRegistered)

	require.NoError(t, r.Register(ctx))
	require.NoError(t, r.Unregister(ctx))

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Registered)
}

func TestParseDesktopEntry(t *testing.T) {
	input := `# comment
[Desktop Entry]
Name = lora
Exec="/path with space/lora" %u
MimeType=text/plain;x-scheme-handler/algokit-lora;

[Desktop Action New]
Exec=ignored
`
	entry, err := ParseDesktopEntry(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "lora", entry.Name)
	assert.Equal(t, `"/path with space/lora" %u`, entry.Exec)
	assert.Equal(t, []string{"text/plain", "x-scheme-handler/algokit-lora"}, entry.MimeTypes)
}

func TestQuoteExecArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/usr/bin/lora", "/usr/bin/lora"},
		{"/opt/My Apps/lora", `"/opt/My Apps/lora"`},
		{`/opt/a"b`, `"/opt/a\\"b"`},
		{"/opt/$HOME/lora", `"/opt/\\$HOME/lora"`},
		{`/opt/a\b/lora`, `"/opt/a\\\\b/lora"`},
		{"/opt/100%/lora", `"/opt/100%%/lora"`},
		{"", `""`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteExecArg(tt.in), "input %q", tt.in)
	}
}

func TestBundleRegistrar(t *testing.T) {
	ctx := context.Background()
	r, err := NewFor("darwin", Options{
		AppID:      "com.algorandfoundation.lora",
		Scheme:     "algokit-lora",
		Executable: "/Applications/AlgoKit lora.app/Contents/MacOS/algokit-lora",
	})
	require.NoError(t, err)

	require.NoError(t, r.Register(ctx))
	require.NoError(t, r.Unregister(ctx))

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Registered)
	assert.Equal(t, MethodBundle, st.Method)
	assert.Equal(t, "/Applications/AlgoKit lora.app", st.Location)
}

func TestBundlePath_Unbundled(t *testing.T) {
	assert.Equal(t, "", bundlePath("/Users/dev/go/bin/algokit-lora"))
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, `"C:\Program Files\lora\lora.exe" "%1"`, CommandLine(`C:\Program Files\lora\lora.exe`))
}
