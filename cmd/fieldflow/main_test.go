package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func captureStdout(t *testing.T, fn func(stdout *os.File)) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	fn(w)
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return string(out)
}

func TestRun_CatVerbEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n3,4\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var code int
	out := captureStdout(t, func(stdout *os.File) {
		code = run([]string{"--verb", "cat", path}, nil, stdout)
	})

	if code != 0 {
		t.Fatalf("run() exit code = %d, want 0", code)
	}
	want := "n,a,b\n1,1,2\n2,3,4\n"
	if out != want {
		t.Fatalf("stdout = %q, want %q", out, want)
	}
}

func TestRun_FractionVerbEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(path, []byte("x\n1\n2\n3\n4\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var code int
	out := captureStdout(t, func(stdout *os.File) {
		code = run([]string{"--verb", "fraction", "-f", "x", path}, nil, stdout)
	})

	if code != 0 {
		t.Fatalf("run() exit code = %d, want 0", code)
	}
	want := "x,x_fraction\n1,0.1\n2,0.2\n3,0.3\n4,0.4\n"
	if out != want {
		t.Fatalf("stdout = %q, want %q", out, want)
	}
}

func TestRun_FatalParseErrorReportsNonzeroExitCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(path, []byte("a,b\n1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var code int
	captureStdout(t, func(stdout *os.File) {
		code = run([]string{"--verb", "cat", path}, nil, stdout)
	})

	if code == 0 {
		t.Fatalf("run() exit code = 0, want nonzero (header/data length mismatch is a fatal *csvparse.SyntaxError)")
	}
}

func TestRun_FractionVerbWithoutFieldsFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	os.WriteFile(path, []byte("x\n1\n"), 0o644)

	var code int
	captureStdout(t, func(stdout *os.File) {
		code = run([]string{"--verb", "fraction", path}, nil, stdout)
	})

	if code == 0 {
		t.Fatalf("run() exit code = 0, want nonzero (missing -f)")
	}
}
