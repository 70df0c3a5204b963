package wailsapp

import (
	"os"
	"path/filepath"
	"runtime"
)

// getWebView2BrowserPath returns the bundled WebView2 Fixed Version Runtime
// next to the executable, or "" to use the system-installed WebView2.
func getWebView2BrowserPath() string {
	if runtime.GOOS != "windows" {
		return ""
	}
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	return bundledWebView2(filepath.Dir(exePath))
}

// bundledWebView2 looks for <dir>/webview2/msedgewebview2.exe.
func bundledWebView2(dir string) string {
	webview2Dir := filepath.Join(dir, "webview2")
	if _, err := os.Stat(filepath.Join(webview2Dir, "msedgewebview2.exe")); err != nil {
		return ""
	}
	return webview2Dir
}
