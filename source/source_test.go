package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain file", "avatar.fst", "avatar.fst"},
		{"nested path", filepath.Join("models", "avatar", "mesh.fbx"), "mesh.fbx"},
		{"s3 object", "s3://assets/avatars/mesh.fbx", "mesh.fbx"},
		{"s3 top level", "s3://assets/mesh.fbx", "mesh.fbx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseName(tt.in); got != tt.want {
				t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	tests := map[string]string{
		"avatar.fst":         "",
		"/tmp/avatar.fst":    "",
		`C://avatar.fst`:     "",
		"s3://b/k":           "s3",
		"S3://b/k":           "s3",
		"https://host/a.fst": "https",
	}
	for in, want := range tests {
		if got := Scheme(in); got != want {
			t.Errorf("Scheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocal_Open(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	rc, err := Local{}.Open(t.Context(), p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "hello" {
		t.Errorf("content = %q", b)
	}

	if _, err := (Local{}).Open(t.Context(), filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestMux_Dispatch(t *testing.T) {
	var got []string
	record := func(tag string) Opener {
		return OpenerFunc(func(_ context.Context, name string) (io.ReadCloser, error) {
			got = append(got, tag+":"+name)
			return io.NopCloser(strings.NewReader("")), nil
		})
	}

	m := &Mux{Default: record("local"), Schemes: map[string]Opener{"s3": record("s3")}}
	for _, name := range []string{"a.fst", "s3://b/k.fbx"} {
		if _, err := m.Open(t.Context(), name); err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
	}
	if len(got) != 2 || got[0] != "local:a.fst" || got[1] != "s3:s3://b/k.fbx" {
		t.Errorf("dispatch = %v", got)
	}

	if _, err := m.Open(t.Context(), "gs://b/k"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("gs error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestNewMux_WithoutS3(t *testing.T) {
	m := NewMux(nil)
	if _, err := m.Open(t.Context(), "s3://b/k"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("error = %v, want ErrUnsupportedScheme", err)
	}
}
