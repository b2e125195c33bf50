package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const projectXML = `<Project Sdk="Microsoft.NET.Sdk"></Project>`

// touch creates the slash-separated rel path under root with placeholder content.
func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(projectXML), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLocate_SingleManifest(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "apps/my-api/my-api.csproj", "apps/my-api/Program.cs", "apps/my-api/appsettings.json")

	l := &Locator{Root: root}
	got, err := l.Locate("apps/my-api")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got != "apps/my-api/my-api.csproj" {
		t.Errorf("Locate = %q, want %q", got, "apps/my-api/my-api.csproj")
	}
}

func TestLocate_NotFound(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "apps/web/package.json")

	l := &Locator{Root: root}
	for _, dir := range []string{"apps/web", "apps/missing"} {
		t.Run(dir, func(t *testing.T) {
			_, err := l.Locate(dir)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Locate(%q) error = %v, want ErrNotFound", dir, err)
			}
		})
	}
}

func TestLocate_IgnoresManifestNamedDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "apps", "odd", "nested.csproj"), 0755); err != nil {
		t.Fatal(err)
	}

	l := &Locator{Root: root}
	if _, err := l.Locate("apps/odd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Locate error = %v, want ErrNotFound", err)
	}
}

func TestLocate_TieBreak(t *testing.T) {
	tests := []struct {
		name  string
		dir   string
		files []string
		want  string
	}{
		{
			name:  "directory name wins",
			dir:   "apps/orders",
			files: []string{"a.csproj", "orders.csproj", "orders.legacy.csproj"},
			want:  "apps/orders/orders.csproj",
		},
		{
			name:  "shortest name",
			dir:   "apps/billing",
			files: []string{"Billing.Api.csproj", "Api.csproj"},
			want:  "apps/billing/Api.csproj",
		},
		{
			name:  "lexicographic on equal length",
			dir:   "libs/shared",
			files: []string{"b.fsproj", "a.csproj"},
			want:  "libs/shared/a.csproj",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				touch(t, root, tt.dir+"/"+f)
			}

			l := &Locator{Root: root}
			got, err := l.Locate(tt.dir)
			if err != nil {
				t.Fatalf("Locate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Locate = %q, want %q", got, tt.want)
			}

			// Deterministic across calls.
			again, _ := l.Locate(tt.dir)
			if again != got {
				t.Errorf("second Locate = %q, first = %q", again, got)
			}
		})
	}
}

func TestLocate_StrictAmbiguity(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "apps/orders/orders.csproj", "apps/orders/orders.fsproj")

	l := &Locator{Root: root, Strict: true}
	_, err := l.Locate("apps/orders")

	var amb *AmbiguousManifestError
	if !errors.As(err, &amb) {
		t.Fatalf("Locate error = %v, want *AmbiguousManifestError", err)
	}
	if amb.Dir != "apps/orders" {
		t.Errorf("Dir = %q, want %q", amb.Dir, "apps/orders")
	}
	if diff := cmp.Diff([]string{"orders.csproj", "orders.fsproj"}, amb.Matches); diff != "" {
		t.Errorf("Matches mismatch (-want +got):\n%s", diff)
	}
}

func TestLocate_StrictSingleManifest(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "apps/orders/orders.csproj")

	l := &Locator{Root: root, Strict: true}
	if _, err := l.Locate("apps/orders"); err != nil {
		t.Errorf("strict Locate with one manifest: %v", err)
	}
}

func TestGlob_MatchesAcrossGroupsAndIgnores(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"apps/my-api/my-api.csproj",
		"apps/my-api/bin/Debug/net8.0/my-api.csproj",
		"apps/my-api/obj/my-api.csproj",
		"apps/tools/cli/Cli.fsproj",
		"libs/core/Core.vbproj",
		"libs/core/README.md",
		"node_modules/pkg/x.csproj",
		"other/ignored.csproj",
	)

	exts := []string{".csproj", ".fsproj", ".vbproj"}
	patterns := []string{
		ManifestPattern("apps", exts),
		ManifestPattern("libs", exts),
		ManifestPattern("apps", exts), // duplicates collapse
	}
	ignore := []string{"**/bin/**", "**/obj/**", "**/node_modules/**"}

	got, err := Glob(root, patterns, ignore)
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}

	want := []string{
		"apps/my-api/my-api.csproj",
		"apps/tools/cli/Cli.fsproj",
		"libs/core/Core.vbproj",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Glob mismatch (-want +got):\n%s", diff)
	}
}

func TestGlob_ManifestExtensionsIgnoreCase(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"apps/upper/Upper.CSPROJ",
		"apps/mixed/Mixed.FsProj",
		"apps/lower/lower.csproj",
		"apps/other/Other.csproj.user",
	)

	got, err := Glob(root, []string{ManifestPattern("apps", []string{".csproj", ".fsproj"})}, nil)
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	want := []string{"apps/lower/lower.csproj", "apps/mixed/Mixed.FsProj", "apps/upper/Upper.CSPROJ"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Glob mismatch (-want +got):\n%s", diff)
	}

	// Every scanned file is one Locate accepts.
	for _, m := range got {
		loc, err := (&Locator{Root: root}).Locate(filepath.ToSlash(filepath.Dir(m)))
		if err != nil || loc != m {
			t.Errorf("Locate(%s) = %q, %v; want %q", filepath.Dir(m), loc, err, m)
		}
	}
}

func TestGlob_MissingBaseDirectory(t *testing.T) {
	root := t.TempDir()
	got, err := Glob(root, []string{"apps/**/*.csproj"}, nil)
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Glob = %v, want no matches", got)
	}
}

func TestGlob_InvalidPattern(t *testing.T) {
	if _, err := Glob(t.TempDir(), []string{"apps/[*.csproj"}, nil); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if _, err := Glob(t.TempDir(), []string{"apps/**/*.csproj"}, []string{"{bin"}); err == nil {
		t.Error("expected error for invalid ignore pattern")
	}
}

func TestManifestPattern(t *testing.T) {
	tests := []struct {
		dir  string
		exts []string
		want string
	}{
		{"apps", []string{".csproj"}, "apps/**/*.[cC][sS][pP][rR][oO][jJ]"},
		{"libs/", []string{".csproj", ".fsproj"}, "libs/**/*.{[cC][sS][pP][rR][oO][jJ],[fF][sS][pP][rR][oO][jJ]}"},
		{".", []string{".CSPROJ"}, "**/*.[cC][sS][pP][rR][oO][jJ]"},
		{"", []string{"x1"}, "**/*.[xX]1"},
	}
	for _, tt := range tests {
		if got := ManifestPattern(tt.dir, tt.exts); got != tt.want {
			t.Errorf("ManifestPattern(%q, %v) = %q, want %q", tt.dir, tt.exts, got, tt.want)
		}
	}
}
