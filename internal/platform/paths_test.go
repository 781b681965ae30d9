package platform

import (
	"path/filepath"
	"testing"
)

// TestPathsForLinuxWithXDG verifies behavior for the covered scenario.
func TestPathsForLinuxWithXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{
		"XDG_CONFIG_HOME": "/xdg/config",
		"XDG_DATA_HOME":   "/xdg/data",
	}, "/fallback/config", "/fallback/data", "tavla")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join("/xdg/config", "tavla", "config.toml"); p.ConfigPath != want {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if want := filepath.Join("/xdg/data", "tavla", "tavla.db"); p.DBPath != want {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
	if want := filepath.Join("/xdg/data", "tavla", "boards"); p.BoardsDir != want {
		t.Fatalf("unexpected boards dir %q", p.BoardsDir)
	}
}

func TestPathsForLinuxWithoutXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{"XDG_DATA_HOME": "  "}, "/home/me/.config", "/home/me/.local/share", "tavla")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join("/home/me/.local/share", "tavla"); p.DataDir != want {
		t.Fatalf("unexpected data dir %q", p.DataDir)
	}
}

// TestPathsForWindowsUsesAppData verifies behavior for the covered scenario.
func TestPathsForWindowsUsesAppData(t *testing.T) {
	p, err := PathsFor("windows", map[string]string{
		"APPDATA":      `C:\Users\me\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
	}, `C:\fallback\config`, `C:\fallback\data`, "tavla")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join(`C:\Users\me\AppData\Roaming`, "tavla", "config.toml"); p.ConfigPath != want {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if want := filepath.Join(`C:\Users\me\AppData\Local`, "tavla", "tavla.db"); p.DBPath != want {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

func TestPathsForDarwinIgnoresXDG(t *testing.T) {
	p, err := PathsFor("darwin", map[string]string{"XDG_CONFIG_HOME": "/xdg"}, "/Users/me/Library/Application Support", "/Users/me/Library/Application Support", "tavla-dev")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join("/Users/me/Library/Application Support", "tavla-dev", "config.toml"); p.ConfigPath != want {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
}

func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("linux", nil, "", "/data", "tavla"); err == nil {
		t.Fatal("expected error for empty config dir")
	}
	if _, err := PathsFor("linux", nil, "/config", "/data", " "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}
