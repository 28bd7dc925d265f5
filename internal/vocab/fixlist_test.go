package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixtureFiles(t *testing.T, meta, fixes string) (metaPath, fixPath string) {
	t.Helper()

	dir := t.TempDir()
	metaPath = filepath.Join(dir, "metadata.txt")
	fixPath = filepath.Join(dir, "fixes.json")

	if err := os.WriteFile(metaPath, []byte(meta), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	if err := os.WriteFile(fixPath, []byte(fixes), 0o644); err != nil {
		t.Fatalf("write fixes: %v", err)
	}

	return metaPath, fixPath
}

func TestLoadFixListValidation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{name: "simple replacement", json: `{"é": "e"}`},
		{name: "null keeps symbol", json: `{"é": null}`},
		{name: "multi-char key", json: `{"ab": "c"}`, wantErr: true},
		{name: "empty object", json: `{}`, wantErr: true},
		{name: "not json", json: `é=e`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fixPath := writeFixtureFiles(t, "", tt.json)

			_, err := LoadFixList(fixPath)
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	_, fixPath := writeFixtureFiles(t, "", `{"é": "e", "ü": null}`)

	fl, err := LoadFixList(fixPath)
	if err != nil {
		t.Fatalf("LoadFixList: %v", err)
	}

	tests := []struct {
		in          string
		want        string
		wantChanged bool
	}{
		{in: "café", want: "cafe", wantChanged: true},
		{in: "über", want: "über", wantChanged: false},
		{in: "plain", want: "plain", wantChanged: false},
		{in: "éé", want: "ee", wantChanged: true},
	}

	for _, tt := range tests {
		got, changed := fl.Apply(tt.in)
		if got != tt.want || changed != tt.wantChanged {
			t.Errorf("Apply(%q) = (%q, %v), want (%q, %v)", tt.in, got, changed, tt.want, tt.wantChanged)
		}
	}
}

func TestApplyToMetadata(t *testing.T) {
	meta := "clip1.wav|café au lait|spk1|neutral|fr\n" +
		"clip2.wav|plain text|spk1|neutral|en\n" +
		"malformed line without pipes\n"

	metaPath, fixPath := writeFixtureFiles(t, meta, `{"é": "e"}`)

	fl, err := LoadFixList(fixPath)
	if err != nil {
		t.Fatalf("LoadFixList: %v", err)
	}

	report, err := fl.ApplyToMetadata(metaPath)
	if err != nil {
		t.Fatalf("ApplyToMetadata: %v", err)
	}

	if report.Changed != 1 {
		t.Errorf("Changed = %d, want 1", report.Changed)
	}

	if report.Untouched != 2 {
		t.Errorf("Untouched = %d, want 2", report.Untouched)
	}

	rewritten, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("read rewritten: %v", err)
	}

	want := "clip1.wav|cafe au lait|spk1|neutral|fr\n" +
		"clip2.wav|plain text|spk1|neutral|en\n" +
		"malformed line without pipes\n"
	if string(rewritten) != want {
		t.Errorf("rewritten = %q, want %q", rewritten, want)
	}

	backup, err := os.ReadFile(metaPath + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}

	if string(backup) != meta {
		t.Errorf("backup = %q, want original contents", backup)
	}
}

func TestApplyToMetadataOnlyTouchesTextField(t *testing.T) {
	// The replacement symbol also appears in the file name; only the text
	// field may change.
	meta := "café.wav|café|spk1|neutral|fr\n"

	metaPath, fixPath := writeFixtureFiles(t, meta, `{"é": "e"}`)

	fl, err := LoadFixList(fixPath)
	if err != nil {
		t.Fatalf("LoadFixList: %v", err)
	}

	if _, err := fl.ApplyToMetadata(metaPath); err != nil {
		t.Fatalf("ApplyToMetadata: %v", err)
	}

	rewritten, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("read rewritten: %v", err)
	}

	want := "café.wav|cafe|spk1|neutral|fr\n"
	if string(rewritten) != want {
		t.Errorf("rewritten = %q, want %q", rewritten, want)
	}
}
