package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIndexResolveIsIdempotent(t *testing.T) {
	root := t.TempDir()
	index := NewIndex(root, false)

	var calls int
	index.mkdirAll = func(path string, perm os.FileMode) error {
		calls++
		return os.MkdirAll(path, perm)
	}

	key, parts := DeviceKey("CameraX", time.Date(2021, time.July, 4, 10, 0, 0, 0, time.UTC))
	first, err := index.Resolve(key, parts...)
	if err != nil {
		t.Fatal(err)
	}
	second, err := index.Resolve(key, parts...)
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("Expected %v but got %v instead", 1, calls)
	}
	if first != second {
		t.Errorf("Expected %v but got %v instead", first, second)
	}
	if expected := filepath.Join(root, "CameraX", "2021", "7"); first != expected {
		t.Errorf("Expected %v but got %v instead", expected, first)
	}
	if info, err := os.Stat(first); err != nil || !info.IsDir() {
		t.Errorf("Expected %v to be a directory: %v", first, err)
	}
}

func TestIndexDistinctKeys(t *testing.T) {
	index := NewIndex(t.TempDir(), false)

	cases := []struct {
		name string
		at   time.Time
	}{
		{name: "january", at: time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{name: "november", at: time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC)},
		{name: "january again", at: time.Date(2021, time.January, 31, 23, 59, 59, 0, time.UTC)},
		{name: "next year", at: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, c := range cases {
		key, parts := DateKey(c.at)
		if _, err := index.Resolve(key, parts...); err != nil {
			t.Errorf("%v: %v", c.name, err)
		}
	}

	if index.Len() != 3 {
		t.Errorf("Expected %v but got %v instead", 3, index.Len())
	}
}

func TestIndexResolveFailure(t *testing.T) {
	index := NewIndex(t.TempDir(), false)
	index.mkdirAll = func(string, os.FileMode) error { return os.ErrPermission }

	key, parts := DateKey(time.Date(2021, time.July, 4, 0, 0, 0, 0, time.UTC))
	_, err := index.Resolve(key, parts...)

	if !errors.Is(err, ErrDestination) {
		t.Errorf("Expected %v but got %v instead", ErrDestination, err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("Expected %v but got %v instead", os.ErrPermission, err)
	}
	if index.Len() != 0 {
		t.Errorf("Expected failed keys not to be cached")
	}
}

func TestIndexDryRunCreatesNothing(t *testing.T) {
	root := t.TempDir()
	index := NewIndex(root, true)

	key, parts := DateKey(time.Date(2021, time.July, 4, 0, 0, 0, 0, time.UTC))
	dir, err := index.Resolve(key, parts...)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Expected %v not to exist but got %v", dir, err)
	}
}

func TestKeys(t *testing.T) {
	at := time.Date(2021, time.July, 4, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		device string
		key    string
		parts  []string
	}{
		{
			name:   "plain model",
			device: "CameraX",
			key:    "CameraX/2021-7",
			parts:  []string{"CameraX", "2021", "7"},
		},
		{
			name:   "model with path separators",
			device: "Canon/EOS\\5D",
			key:    "Canon_EOS_5D/2021-7",
			parts:  []string{"Canon_EOS_5D", "2021", "7"},
		},
		{
			name:   "model naming the parent directory",
			device: "..",
			key:    "__/2021-7",
			parts:  []string{"__", "2021", "7"},
		},
	}

	for _, c := range cases {
		key, parts := DeviceKey(c.device, at)
		if key != c.key {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.key, key)
		}
		if filepath.Join(parts...) != filepath.Join(c.parts...) {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.parts, parts)
		}
	}

	key, parts := DateKey(at)
	if key != "2021-7" || filepath.Join(parts...) != filepath.Join("2021", "7") {
		t.Errorf("Expected 2021-7 [2021 7] but got %v %v instead", key, parts)
	}
}
