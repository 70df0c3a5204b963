package scheme

// CommandLine is the shell\open\command value Windows runs for a URL:
// the quoted executable followed by the quoted URL placeholder.
func CommandLine(exe string) string {
	return `"` + exe + `" "%1"`
}
