// Command lucidc is the reference driver for the core compiler:
// `lucidc check <file>` runs inference only and prints the
// generalized top-level type; `lucidc build <file>` runs the full
// pipeline (check, lower, codegen) and reports the emitted module's
// shape, memoizing the result in a local build cache.
//
// Grounded on cmd/funxy/main.go's plain os.Args dispatch and its use
// of go-isatty to decide whether to colorize diagnostics.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/lucidlang/lucid/internal/cache"
	"github.com/lucidlang/lucid/internal/check"
	"github.com/lucidlang/lucid/internal/codegen"
	"github.com/lucidlang/lucid/internal/config"
	"github.com/lucidlang/lucid/internal/lower"
	"github.com/lucidlang/lucid/internal/parse"
	"github.com/lucidlang/lucid/internal/types"
	"github.com/lucidlang/lucid/internal/wasm"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <build|check> <file%s>\n", os.Args[0], config.SourceFileExt)
		os.Exit(1)
	}

	cmd, path := os.Args[1], os.Args[2]
	src, err := os.ReadFile(path)
	if err != nil {
		fail("%v", err)
	}

	switch cmd {
	case "check":
		runCheck(path, string(src))
	case "build":
		runBuild(path, string(src))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q (want build or check)\n", cmd)
		os.Exit(1)
	}
}

func runCheck(path, src string) {
	prog, err := parse.ParseProgram(src)
	if err != nil {
		fail("%s: %v", path, err)
	}

	cs := check.NewCheckState(config.PreseedTypeMap())
	cs.LoadDecls(prog.Decls)

	ty, err := cs.Infer(prog.Expr)
	if err != nil {
		fail("%s: %v", path, err)
	}
	poly := types.Generalise(cs.Subst, cs.Env, ty)
	fmt.Println(poly.String())
}

func runBuild(path, src string) {
	prog, err := parse.ParseProgram(src)
	if err != nil {
		fail("%s: %v", path, err)
	}

	seed := config.PreseedTypeMap()
	cs := check.NewCheckState(seed)
	cs.LoadDecls(prog.Decls)
	if _, err := cs.Infer(prog.Expr); err != nil {
		fail("%s: %v", path, err)
	}

	buildID := uuid.New()
	c, err := openCache()
	if err != nil {
		fail("%v", err)
	}
	defer c.Close()

	key := cache.Key(src, cs.Types)
	module, err := c.Compile(key, func() (*wasm.Module, error) {
		lowered, err := lower.NewLowerer(cs.Types).Lower(prog)
		if err != nil {
			return nil, err
		}
		return codegen.New().EmitProgram(lowered)
	})
	if err != nil {
		fail("%s: %v", path, err)
	}

	verbose(buildID, "compiled %s: %d function(s), %d table slot(s)", path, len(module.Functions), len(module.Elements))
}

func openCache() (*cache.Cache, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return cache.Open(":memory:")
	}
	path := filepath.Join(dir, "lucidc", "cache.sqlite")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cache.Open(":memory:")
	}
	return cache.Open(path)
}

func verbose(id uuid.UUID, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if colorize() {
		fmt.Printf("\033[2m[%s]\033[0m %s\n", id, msg)
		return
	}
	fmt.Printf("[%s] %s\n", id, msg)
}

func colorize() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if colorize() {
		fmt.Fprintf(os.Stderr, "\033[31merror:\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	os.Exit(1)
}
