package naming

import (
	"errors"
	"sync"
	"testing"

	"github.com/dnsync-labs/dnsync/internal/manifest"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MyTestApi", "my-test-api"},
		{"MyTestApi.Test", "my-test-api-test"},
		{"my-api", "my-api"},
		{"Contoso.Core", "contoso-core"},
		{"Contoso__Core..Api", "contoso-core-api"},
		{"Api2Gateway", "api2-gateway"},
		{"MyAPIServer", "my-apiserver"},
		{"  Spaced Name ", "spaced-name"},
		{"ÄrgerlichTool", "ärgerlich-tool"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		m    *manifest.Manifest
		want string
	}{
		{"root namespace", &manifest.Manifest{Path: "apps/my-api/my-api.csproj", RootNamespace: "MyTestApi"}, "my-test-api"},
		{"assembly name", &manifest.Manifest{Path: "apps/x/x.csproj", AssemblyName: "Contoso.Worker"}, "contoso-worker"},
		{"file name fallback", &manifest.Manifest{Path: "libs/Shared.Kernel/Shared.Kernel.fsproj"}, "shared-kernel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.m)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.Canonical != tt.want || got.Slug != tt.want {
				t.Errorf("Resolve = %+v, want canonical and slug %q", got, tt.want)
			}
		})
	}
}

func TestResolve_EmptyIdentity(t *testing.T) {
	_, err := Resolve(&manifest.Manifest{Path: "apps/x/___.csproj"})
	var invalid *InvalidNameError
	if !errors.As(err, &invalid) {
		t.Fatalf("Resolve error = %v, want *InvalidNameError", err)
	}
	if invalid.Identity != "___" {
		t.Errorf("Identity = %q, want ___", invalid.Identity)
	}
}

func TestResolver_Claim(t *testing.T) {
	r := NewResolver(map[string]string{
		"my-api": "apps/my-api",
	})

	if err := r.Claim("my-api", "apps/my-api"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("same name and root: error = %v, want ErrAlreadyRegistered", err)
	}

	err := r.Claim("my-api", "apps/other")
	var dup *DuplicateProjectNameError
	if !errors.As(err, &dup) {
		t.Fatalf("registered collision: error = %v, want *DuplicateProjectNameError", err)
	}
	if dup.Name != "my-api" || dup.ExistingRoot != "apps/my-api" || dup.Root != "apps/other" {
		t.Errorf("DuplicateProjectNameError = %+v", dup)
	}

	if err := r.Claim("orders", "apps/orders"); err != nil {
		t.Fatalf("fresh claim: %v", err)
	}
	if err := r.Claim("orders", "apps/orders"); err != nil {
		t.Errorf("repeated claim for the same root: %v", err)
	}
	if err := r.Claim("orders", "libs/orders"); !errors.As(err, &dup) {
		t.Errorf("in-pass collision: error = %v, want *DuplicateProjectNameError", err)
	}
}

func TestResolver_DoesNotAliasInput(t *testing.T) {
	registered := map[string]string{"a": "apps/a"}
	r := NewResolver(registered)
	registered["b"] = "apps/b"

	if err := r.Claim("b", "apps/other"); err != nil {
		t.Errorf("Claim after caller mutation: %v", err)
	}
}

func TestResolver_ConcurrentClaims(t *testing.T) {
	r := NewResolver(nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			root := "apps/a"
			if i%2 == 1 {
				root = "libs/a"
			}
			errs <- r.Claim("a", root)
		}(i)
	}
	wg.Wait()
	close(errs)

	var dups int
	for err := range errs {
		var dup *DuplicateProjectNameError
		if errors.As(err, &dup) {
			dups++
		}
	}
	if dups != 4 {
		t.Errorf("collisions = %d, want 4", dups)
	}
}
