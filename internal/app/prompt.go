package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/petervdpas/codeseed/internal/config"
)

// PromptInteractive walks through the common settings, offering the current
// values as defaults. An invalid result falls back to config.Default.
func PromptInteractive(r io.Reader, w io.Writer, cfgPath string, cfg config.Config) config.Config {
	in := bufio.NewReader(r)

	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintln(w, "codeseed interactive setup")
	fmt.Fprintf(w, " Config file : %s\n", cfgPath)
	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintln(w)

	cfg.Viewer.HTTPAddr = askString(in, w, "Viewer HTTP addr", cfg.Viewer.HTTPAddr)
	cfg.Paths.DataDir = askString(in, w, "Data folder", cfg.Paths.DataDir)
	cfg.Paths.WorkspaceDir = askString(in, w, "Workspace folder", cfg.Paths.WorkspaceDir)

	cfg.Generator.URL = askString(in, w, "Generation backend URL (empty=off)", cfg.Generator.URL)
	if cfg.Generator.URL != "" {
		cfg.Generator.TimeoutSeconds = askInt(in, w, "Generation timeout seconds", cfg.Generator.TimeoutSeconds)
	}

	cfg.Auth.Enabled = askBool(in, w, "Require sign-in", cfg.Auth.Enabled)
	if cfg.Auth.Enabled {
		cfg.Auth.ClientID = askString(in, w, "OAuth client id", cfg.Auth.ClientID)
		cfg.Auth.AuthURL = askString(in, w, "OAuth authorize URL", cfg.Auth.AuthURL)
		cfg.Auth.TokenURL = askString(in, w, "OAuth token URL", cfg.Auth.TokenURL)
		cfg.Auth.UserInfoURL = askString(in, w, "User info URL", cfg.Auth.UserInfoURL)
		cfg.Viewer.BaseURL = askString(in, w, "Public base URL", cfg.Viewer.BaseURL)
	}

	cfg.Preview.Minify = askBool(in, w, "Minify previews", cfg.Preview.Minify)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "Invalid config: %v\nKeeping defaults.\n", err)
		return config.Default()
	}
	return cfg
}

func readLine(in *bufio.Reader) (string, bool) {
	s, err := in.ReadString('\n')
	if err != nil && s == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func askString(in *bufio.Reader, w io.Writer, label, def string) string {
	fmt.Fprintf(w, "%s [%s]: ", label, def)
	s, _ := readLine(in)
	if s == "" {
		return def
	}
	return s
}

func askInt(in *bufio.Reader, w io.Writer, label string, def int) int {
	for {
		fmt.Fprintf(w, "%s [%d]: ", label, def)
		s, ok := readLine(in)
		if s == "" || !ok {
			return def
		}
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
		fmt.Fprintln(w, "Please enter a number.")
	}
}

func askBool(in *bufio.Reader, w io.Writer, label string, def bool) bool {
	defStr := "n"
	if def {
		defStr = "y"
	}
	for {
		fmt.Fprintf(w, "%s [y/n] (default=%s): ", label, defStr)
		s, ok := readLine(in)
		s = strings.ToLower(s)
		if s == "" || !ok {
			return def
		}
		switch s {
		case "y", "yes", "true", "1":
			return true
		case "n", "no", "false", "0":
			return false
		default:
			fmt.Fprintln(w, "Please enter y or n.")
		}
	}
}
