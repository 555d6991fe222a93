package loader

import (
	"testing"

	"github.com/Aman-CERP/codevector/internal/segment"
)

func TestLoadBlobUnsupportedExtensionFallsBackSilently(t *testing.T) {
	l := New(NewDefaultRegistry())
	opts := segment.DefaultOptions()
	opts.LengthFunc = func(t string) (int, error) { return len(t), nil }

	segs, err := l.LoadBlob(Blob{RelativePath: "README.md", Content: []byte("hello\nworld\n")}, opts)
	if err != nil {
		t.Fatalf("unsupported extension should fall back, not error: %v", err)
	}
	if len(segs) == 0 {
		t.Fatalf("expected at least one segment from the line-segmenter fallback")
	}
}

func TestLoadBlobInvalidParseFallsBack(t *testing.T) {
	l := New(NewDefaultRegistry())
	opts := segment.DefaultOptions()
	opts.LengthFunc = func(t string) (int, error) { return len(t), nil }

	segs, err := l.LoadBlob(Blob{RelativePath: "bad.py", Content: []byte("def foo(:\n    pass\n")}, opts)
	if err != nil {
		t.Fatalf("invalid parse should fall back, not error: %v", err)
	}
	if len(segs) == 0 {
		t.Fatalf("expected the line-segmenter fallback to still emit a segment")
	}
}

func TestLoadBlobRejectsNonUTF8(t *testing.T) {
	l := New(NewDefaultRegistry())
	_, err := l.LoadBlob(Blob{RelativePath: "x.go", Content: []byte{0xff, 0xfe, 0x00}}, segment.DefaultOptions())
	if err == nil {
		t.Fatalf("expected a DecodeError for invalid utf-8")
	}
}

func TestLoadBlobValidGoFile(t *testing.T) {
	l := New(NewDefaultRegistry())
	opts := segment.DefaultOptions()
	opts.LengthFunc = func(t string) (int, error) { return len(t), nil }

	src := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	segs, err := l.LoadBlob(Blob{RelativePath: "main.go", Content: []byte(src)}, opts)
	if err != nil {
		t.Fatalf("LoadBlob: %v", err)
	}
	if len(segs) == 0 {
		t.Fatalf("expected segments from a valid go file")
	}
}
