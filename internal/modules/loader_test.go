package modules_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
)

// extract writes a txtar archive into a fresh temp tree and returns
// its root.
func extract(t *testing.T, archive string) string {
	t.Helper()
	root := t.TempDir()
	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		path := filepath.Join(root, f.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func load(t *testing.T, archive, rootFile string) (*modules.Loader, *diagnostics.Sink) {
	t.Helper()
	root := extract(t, archive)
	cfg := config.Default(root)
	sink := diagnostics.NewSink()
	loader := modules.NewLoader(cfg, sink)
	loader.LoadRoot(filepath.Join(root, rootFile))
	return loader, sink
}

func TestTransitiveImports(t *testing.T) {
	loader, sink := load(t, `
-- main.lcy --
import util.math

int main() {
    return 0
}
-- util/math.lcy --
import util.core

pub int double(int x) {
    return x * 2
}
-- util/core.lcy --
pub int identity(int x) {
    return x
}
`, "main.lcy")

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	mods := loader.Modules()
	if len(mods) != 3 {
		t.Fatalf("expected 3 modules, got %d", len(mods))
	}
	// Dependencies-first order.
	if mods[0].Path != "util.core" || mods[1].Path != "util.math" || mods[2].Path != "" {
		t.Fatalf("wrong load order: %s, %s, %s", mods[0].Path, mods[1].Path, mods[2].Path)
	}
}

func TestDiamondParsedOnce(t *testing.T) {
	loader, sink := load(t, `
-- main.lcy --
import lib.a
import lib.b

int main() {
    return 0
}
-- lib/a.lcy --
import lib.shared

pub int fa() {
    return one()
}
-- lib/b.lcy --
import lib.shared

pub int fb() {
    return one()
}
-- lib/shared.lcy --
pub int one() {
    return 1
}
`, "main.lcy")

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if got := len(loader.Modules()); got != 4 {
		t.Fatalf("shared module must parse once: expected 4 modules, got %d", got)
	}
}

func TestImportCycle(t *testing.T) {
	_, sink := load(t, `
-- main.lcy --
import lib.a

int main() {
    return 0
}
-- lib/a.lcy --
import lib.b

pub int fa() {
    return 1
}
-- lib/b.lcy --
import lib.a

pub int fb() {
    return 2
}
`, "main.lcy")

	found := sink.ByCode(diagnostics.ErrM002)
	if len(found) == 0 {
		t.Fatalf("expected cyclic import diagnostic, got %v", sink.Diagnostics())
	}
}

func TestImportNotFound(t *testing.T) {
	_, sink := load(t, `
-- main.lcy --
import no.such.module

int main() {
    return 0
}
`, "main.lcy")

	if len(sink.ByCode(diagnostics.ErrM001)) == 0 {
		t.Fatalf("expected ImportNotFound, got %v", sink.Diagnostics())
	}
}

func TestStdlibFallback(t *testing.T) {
	root := extract(t, `
-- main.lcy --
import std.text

int main() {
    return 0
}
-- std/std/text.lcy --
pub int textLen(string s) {
    return len(s)
}
`)
	// The project tree has no std/text.lcy at the source root; the
	// stdlib root (root/std) provides it.
	cfg := config.Default(root)
	sink := diagnostics.NewSink()
	loader := modules.NewLoader(cfg, sink)
	loader.LoadRoot(filepath.Join(root, "main.lcy"))

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if got := len(loader.Modules()); got != 2 {
		t.Fatalf("expected 2 modules, got %d", got)
	}
}

func TestSourcesCached(t *testing.T) {
	loader, sink := load(t, `
-- main.lcy --
int main() {
    return 0
}
`, "main.lcy")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if len(loader.Sources) != 1 {
		t.Fatalf("expected 1 cached source, got %d", len(loader.Sources))
	}
}
