package cli

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/swagger2rtk/internal/spec"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /hello/{name}:\n" +
	"    get:\n" +
	"      operationId: sayHello\n" +
	"      tags: [Greetings]\n" +
	"      parameters:\n" +
	"        - {name: name, in: path, required: true, schema: {type: string}}\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema: {$ref: '#/components/schemas/Greeting'}\n" +
	"components:\n" +
	"  schemas:\n" +
	"    Greeting:\n" +
	"      type: object\n" +
	"      properties:\n" +
	"        text: {type: string}\n"

func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func writeMinimalSpec(t *testing.T, dir string) string {
	t.Helper()
	specPath := filepath.Join(dir, "spec.yaml")
	if err := os.WriteFile(specPath, []byte(minimalSpecYAML), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return specPath
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	var err error
	out := captureStdout(func() { err = root.Execute() })
	return out, err
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	specPath := writeMinimalSpec(t, dir)
	outDir := filepath.Join(dir, "src", "store", "api")

	out, err := runRoot(t, "generate", "--input", specPath, "--out", outDir, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Planned writes to") || !strings.Contains(out, "(3 files)") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	for _, want := range []string{"- types.ts", "- greetings.slice.ts", "- index.ts"} {
		if !strings.Contains(out, want) {
			t.Fatalf("plan missing %q: %s", want, out)
		}
	}
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesModules(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	specPath := writeMinimalSpec(t, dir)
	outDir := filepath.Join(dir, "src", "store", "api")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "old.slice.ts"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("write stale: %v", err)
	}

	out, err := runRoot(t,
		"generate",
		"--input", specPath,
		"--out", outDir,
		"--base-client-path", filepath.Join(dir, "src", "store", "empty-api.ts"),
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{
		"Got spec: Test API 1.0.0",
		"Found 1 tag(s): Greetings",
		"  types.ts (1 schemas)",
		"  greetings.slice.ts (1 endpoints)",
		"  index.ts",
		"removed stale old.slice.ts",
		"Done! Generated 1 slices + types.ts",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	slice, err := os.ReadFile(filepath.Join(outDir, "greetings.slice.ts"))
	if err != nil {
		t.Fatalf("read slice: %v", err)
	}
	for _, want := range []string{
		"import { emptySplitApi as api } from '../empty-api';",
		"import type {\n  Greeting,\n} from './types';",
		"query: (queryArg) => ({ url: `/hello/${queryArg.name}` }),",
		"export { injectedRtkApi as greetingsApi };",
		"export const {\n  useSayHelloQuery,\n} = injectedRtkApi;",
	} {
		if !strings.Contains(string(slice), want) {
			t.Fatalf("slice missing %q:\n%s", want, slice)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "old.slice.ts")); !os.IsNotExist(err) {
		t.Fatalf("expected stale slice to be removed, stat err: %v", err)
	}
}

func TestGeneratePipeline_ReportsSpecErrors(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("openapi: [\n"), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	_, err := runRoot(t, "generate", "--input", bad, "--out", filepath.Join(dir, "out"))
	if err == nil {
		t.Fatalf("expected an error")
	}
	var se *spec.SpecError
	if !errors.As(err, &se) || se.Code != spec.ParseError {
		t.Fatalf("expected parse SpecError in chain, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "spec: ") || !strings.Contains(err.Error(), "Location: "+bad) {
		t.Fatalf("unexpected message: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out")); statErr == nil {
		t.Fatalf("nothing should be written on failure")
	}
}

func TestGeneratePipeline_FetchErrorHint(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := runRoot(t, "generate", "--input", srv.URL+"/api-docs-json", "--out", filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), "Hint: check the URL") {
		t.Fatalf("expected fetch hint, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	specPath := writeMinimalSpec(t, dir)

	out, err := runRoot(t, "validate", "--input", specPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "OK: "+specPath) {
		t.Fatalf("unexpected output: %s", out)
	}

	_, err = runRoot(t, "validate", "--input", filepath.Join(dir, "missing.yaml"))
	var se *spec.SpecError
	if !errors.As(err, &se) || se.Code != spec.InputError {
		t.Fatalf("expected input SpecError, got %v", err)
	}
}
