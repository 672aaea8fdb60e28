package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// layerRules bans upward imports. A file under the key prefix may not
// import any internal package matching one of the listed prefixes.
// app/ and cmd/ sit on top and may import anything.
var layerRules = map[string][]string{
	"internal/domain/":        {"internal/"},
	"internal/modules/":       {"internal/"},
	"internal/platform/":      {"internal/modules/", "internal/data/", "internal/clients/", "internal/ingestion/", "internal/realtime/", "internal/observability/", "internal/services/", "internal/jobs/", "internal/http/", "internal/app/"},
	"internal/observability/": {"internal/modules/", "internal/data/", "internal/clients/", "internal/ingestion/", "internal/realtime/", "internal/services/", "internal/jobs/", "internal/http/", "internal/app/"},
	"internal/ingestion/":     {"internal/modules/", "internal/data/", "internal/clients/", "internal/realtime/", "internal/observability/", "internal/services/", "internal/jobs/", "internal/http/", "internal/app/"},
	"internal/data/":          {"internal/modules/", "internal/clients/", "internal/ingestion/", "internal/realtime/", "internal/services/", "internal/jobs/", "internal/http/", "internal/app/"},
	"internal/clients/":       {"internal/data/", "internal/ingestion/", "internal/realtime/", "internal/services/", "internal/jobs/", "internal/http/", "internal/app/"},
	"internal/realtime/":      {"internal/modules/", "internal/data/", "internal/clients/", "internal/ingestion/", "internal/services/", "internal/jobs/", "internal/http/", "internal/app/"},
	"internal/services/":      {"internal/jobs/", "internal/http/", "internal/app/"},
	"internal/jobs/":          {"internal/http/", "internal/app/"},
	"internal/http/":          {"internal/jobs/", "internal/app/"},
}

// layerAllow carves out the imports a banned prefix would otherwise
// catch: same-layer imports for the two leaf layers, and domain models
// for platform (the migration list needs them).
var layerAllow = map[string][]string{
	"internal/domain/":   {"internal/domain/"},
	"internal/modules/":  {"internal/modules/"},
	"internal/platform/": {"internal/domain/"},
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleInfo(t)

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	walkErr := walkInternalGoFiles(root, func(rel string, imports []string) {
		layer := ""
		for prefix := range layerRules {
			if strings.HasPrefix(rel, prefix) {
				layer = prefix
				break
			}
		}
		if layer == "" {
			return
		}
		banned := layerRules[layer]
		allowed := layerAllow[layer]

		for _, imp := range imports {
			if !strings.HasPrefix(imp, modulePath+"/internal/") {
				continue
			}
			relImp := strings.TrimPrefix(imp, modulePath+"/") + "/"
			ok := false
			for _, a := range allowed {
				if strings.HasPrefix(relImp, a) {
					ok = true
					break
				}
			}
			if ok {
				continue
			}
			for _, bad := range banned {
				if strings.HasPrefix(relImp, bad) {
					violations = append(violations, violation{file: rel, imp: imp, rule: bad})
					break
				}
			}
		}
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

// The analysis and prompting engines stay pure: no database, transport
// or service imports, so they remain testable as plain functions.
func TestEngineModulesHaveNoInternalImports(t *testing.T) {
	root, modulePath := moduleInfo(t)

	var violations []string
	walkErr := walkInternalGoFiles(root, func(rel string, imports []string) {
		if !strings.HasPrefix(rel, "internal/modules/") {
			return
		}
		for _, imp := range imports {
			if strings.HasPrefix(imp, modulePath+"/internal/") {
				violations = append(violations, fmt.Sprintf("- %s imports %q", rel, imp))
			}
		}
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	if len(violations) > 0 {
		t.Fatalf("engine modules must not import other internal packages:\n%s", strings.Join(violations, "\n"))
	}
}

func moduleInfo(t *testing.T) (root, modulePath string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err = findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err = readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func walkInternalGoFiles(root string, visit func(rel string, imports []string)) error {
	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()
	return filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		imports := make([]string, 0, len(f.Imports))
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			imports = append(imports, imp)
		}
		visit(rel, imports)
		return nil
	})
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
