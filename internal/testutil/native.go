package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// IntegrandSource returns the path of native/integrand.c, located by walking
// up from the working directory to the module root.
func IntegrandSource(t testing.TB) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "native", "integrand.c")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("module root not found")
		}
		dir = parent
	}
}

// BuildIntegrandLibrary compiles native/integrand.c into a shared library in
// a temporary directory and returns its path. The test is skipped when no C
// compiler is installed.
func BuildIntegrandLibrary(t testing.TB) string {
	t.Helper()

	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	if _, err := exec.LookPath(cc); err != nil {
		t.Skipf("C compiler %q not available: %v", cc, err)
	}

	out := filepath.Join(t.TempDir(), "libintegrand.so")
	cmd := exec.Command(cc, "-O2", "-fPIC", "-shared", "-o", out, IntegrandSource(t), "-lm")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("compile integrand library: %v\n%s", err, output)
	}
	return out
}
