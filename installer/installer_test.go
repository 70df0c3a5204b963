// Package installer checks that the packaging metadata declares the same
// identity and URL scheme the binary registers at runtime.
package installer

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algorandfoundation/algokit-lora/internal/config"
)

func readProjectFile(t *testing.T, rel string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", rel))
	if err != nil {
		t.Skipf("%s not found: %v", rel, err)
	}
	return data
}

// plistStrings returns every <string> in the plist, in document order,
// paired with the nearest preceding <key>.
func plistStrings(t *testing.T, data []byte) map[string][]string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Strict = false

	values := make(map[string][]string)
	var key, elem string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			elem = tt.Name.Local
		case xml.EndElement:
			elem = ""
		case xml.CharData:
			text := strings.TrimSpace(string(tt))
			if text == "" {
				continue
			}
			switch elem {
			case "key":
				key = text
			case "string":
				values[key] = append(values[key], text)
			}
		}
	}
	return values
}

// TestInfoPlistValid ensures the macOS Info.plist is well-formed XML.
func TestInfoPlistValid(t *testing.T) {
	data := readProjectFile(t, filepath.Join("build", "darwin", "Info.plist"))

	var result interface{}
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Strict = false
	assert.NoError(t, dec.Decode(&result), "Info.plist is not valid XML")
}

// TestInfoPlistDeclaresScheme checks the bundle identity and URL scheme,
// which LaunchServices uses in place of runtime registration on macOS.
func TestInfoPlistDeclaresScheme(t *testing.T) {
	values := plistStrings(t, readProjectFile(t, filepath.Join("build", "darwin", "Info.plist")))

	assert.Equal(t, []string{config.AppID}, values["CFBundleIdentifier"])
	assert.Contains(t, values["CFBundleURLSchemes"], config.Scheme)
	assert.Equal(t, []string{config.AppID}, values["CFBundleURLName"])
}

// TestWailsProjectProtocols checks the wails.json protocol list used when
// building the Windows and Linux packages.
func TestWailsProjectProtocols(t *testing.T) {
	data := readProjectFile(t, "wails.json")

	var project struct {
		Name      string `json:"name"`
		Protocols []struct {
			Scheme string `json:"scheme"`
		} `json:"protocols"`
	}
	require.NoError(t, json.Unmarshal(data, &project))

	require.Len(t, project.Protocols, 1)
	assert.Equal(t, config.Scheme, project.Protocols[0].Scheme)
	assert.Equal(t, "algokit-lora", project.Name)
}

// TestFrontendPlaceholderExists checks the embed target exists so the root
// package compiles before the web UI is built.
func TestFrontendPlaceholderExists(t *testing.T) {
	_, err := os.Stat(filepath.Join("..", "frontend", "dist", "index.html"))
	assert.NoError(t, err)
}
