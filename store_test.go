//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/require"
)

// countingServer serves data and counts the requests received.
func countingServer(t *testing.T, data []byte) (*httptest.Server, *atomic.Int32) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestResolveOrFetch(t *testing.T) {
	data := makeTestData(10000)
	srv, hits := countingServer(t, data)
	root := t.TempDir()
	store := NewStoreWithConfig(root, Config{BufferSize: 1000})

	var updates []int
	path, err := store.ResolveOrFetch(Request{
		Category: LLM,
		URL:      srv.URL + "/model.bin",
		FileName: "model.bin",
		MinSize:  5000,
		Progress: func(p int) { updates = append(updates, p) },
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "llm", "model.bin"), path)
	require.Equal(t, int32(1), hits.Load())
	require.Equal(t, 100, updates[len(updates)-1])

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, content)
	requireNoFile(t, path+TempSuffix)

	// Second call is served from disk.
	updates = nil
	again, err := store.ResolveOrFetch(Request{
		Category: LLM,
		URL:      srv.URL + "/model.bin",
		FileName: "model.bin",
		MinSize:  5000,
		Progress: func(p int) { updates = append(updates, p) },
	})
	require.NoError(t, err)
	require.Equal(t, path, again)
	require.Equal(t, int32(1), hits.Load())
	require.Empty(t, updates)
}

func TestResolveOrFetchExistingFileSkipsNetwork(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "whisper"), 0755))
	existing := filepath.Join(root, "whisper", "ggml-base.bin")
	require.NoError(t, os.WriteFile(existing, makeTestData(2048), 0644))

	path, err := store.ResolveOrFetch(Request{
		Category: Whisper,
		URL:      "asd://not-even-a-valid-scheme",
		FileName: "ggml-base.bin",
		MinSize:  2048,
	})
	require.NoError(t, err)
	require.Equal(t, existing, path)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, makeTestData(2048), content)
}

func TestResolveOrFetchRedownloadsSmallFile(t *testing.T) {
	data := makeTestData(3000)
	srv, hits := countingServer(t, data)
	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tts"), 0755))
	existing := filepath.Join(root, "tts", "voice.onnx")
	require.NoError(t, os.WriteFile(existing, []byte("truncated"), 0644))

	path, err := store.ResolveOrFetch(Request{
		Category: TTS,
		URL:      srv.URL,
		FileName: "voice.onnx",
		MinSize:  3000,
	})
	require.NoError(t, err)
	require.Equal(t, existing, path)
	require.Equal(t, int32(1), hits.Load())

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, data, content)
}

func TestResolveOrFetchDirectoryCreationFailed(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(root, []byte("file"), 0644))
	store := NewStore(root)

	_, err := store.ResolveOrFetch(Request{
		Category: LLM,
		URL:      "http://127.0.0.1:1/model.bin",
		FileName: "model.bin",
	})
	var dirErr *DirectoryCreationError
	require.ErrorAs(t, err, &dirErr)
	require.Equal(t, filepath.Join(root, "llm"), dirErr.Dir)
}

func TestResolveOrFetchInvalidRequest(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.ResolveOrFetch(Request{Category: Category(0), URL: "http://127.0.0.1:1", FileName: "a.bin"})
	require.True(t, errors.Is(err, errors.NotValid), "got %v", err)

	_, err = store.ResolveOrFetch(Request{Category: LLM, URL: "http://127.0.0.1:1", FileName: "../a.bin"})
	require.True(t, errors.Is(err, errors.NotValid), "got %v", err)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"valid", Request{Category: LLM, FileName: "model.gguf", MinSize: 100}, false},
		{"zero min size", Request{Category: TTS, FileName: "voice.onnx"}, false},
		{"missing category", Request{FileName: "model.gguf"}, true},
		{"unknown category", Request{Category: Category(7), FileName: "model.gguf"}, true},
		{"empty file name", Request{Category: LLM}, true},
		{"dot", Request{Category: LLM, FileName: "."}, true},
		{"dot dot", Request{Category: LLM, FileName: ".."}, true},
		{"nested", Request{Category: LLM, FileName: "sub/model.gguf"}, true},
		{"negative min size", Request{Category: LLM, FileName: "model.gguf", MinSize: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, errors.NotValid), "got %v", err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStorePaths(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	require.Equal(t, root, store.Root())
	require.Equal(t, filepath.Join(root, "whisper", "ggml-tiny.bin"), store.Path(Whisper, "ggml-tiny.bin"))
	requireNoFile(t, filepath.Join(root, "whisper"))

	dir, err := store.Dir(Whisper)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "whisper"), dir)
	require.DirExists(t, dir)

	// Reused on the next call.
	again, err := store.Dir(Whisper)
	require.NoError(t, err)
	require.Equal(t, dir, again)

	_, err = store.Dir(Category(0))
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	entry, ok, err := store.Lookup(LLM, "model.gguf", 10)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, Entry{Path: filepath.Join(root, "llm", "model.gguf")}, entry)

	dir, err := store.Dir(LLM)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.gguf"), []byte("12345"), 0644))

	entry, ok, err = store.Lookup(LLM, "model.gguf", 10)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, entry.Exists)
	require.Equal(t, int64(5), entry.Size)

	entry, ok, err = store.Lookup(LLM, "model.gguf", 5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(5), entry.Size)

	// a directory with the model name is not a model
	require.NoError(t, os.Mkdir(filepath.Join(dir, "other.gguf"), 0755))
	entry, ok, err = store.Lookup(LLM, "other.gguf", 0)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, entry.Exists)

	_, _, err = store.Lookup(LLM, "a/b", 5)
	require.Error(t, err)
}

func TestFetchAsync(t *testing.T) {
	data := makeTestData(5000)
	srv, _ := countingServer(t, data)
	store := NewStore(t.TempDir())

	progress := make(chan int, 101)
	res := store.FetchAsync(context.Background(), Request{
		Category: TTS,
		URL:      srv.URL,
		FileName: "voice.onnx",
		MinSize:  1000,
		Progress: ProgressChannel(progress),
	})

	result, ok := <-res
	require.True(t, ok)
	require.NoError(t, result.Err)
	require.Equal(t, store.Path(TTS, "voice.onnx"), result.Path)

	_, ok = <-res
	require.False(t, ok, "result channel should be closed")

	close(progress)
	last := -1
	for p := range progress {
		require.Greater(t, p, last)
		last = p
	}
	require.Equal(t, 100, last)
}

func TestFetchAsyncFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	store := NewStore(t.TempDir())

	result := <-store.FetchAsync(context.Background(), Request{
		Category: LLM,
		URL:      srv.URL,
		FileName: "model.gguf",
	})
	var statusErr *HTTPStatusError
	require.ErrorAs(t, result.Err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Empty(t, result.Path)
}

func TestDefaultConfig(t *testing.T) {
	defer SetDefaultConfig(Config{})

	SetDefaultConfig(Config{
		UserAgent:    "my-app/2.0",
		ExtraHeaders: map[string]string{"Authorization": "Bearer x"},
	})
	cfg := GetDefaultConfig()
	require.Equal(t, "my-app/2.0", cfg.UserAgent)

	// The returned copy does not alias the default.
	cfg.ExtraHeaders["Authorization"] = "changed"
	require.Equal(t, "Bearer x", GetDefaultConfig().ExtraHeaders["Authorization"])

	store := NewStore(t.TempDir())
	require.Equal(t, "my-app/2.0", store.config.UserAgent)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{ConnectTimeout: -1}.withDefaults()
	require.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
	require.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	require.Equal(t, DefaultUserAgent, cfg.UserAgent)
	require.Equal(t, DefaultBufferSize, cfg.BufferSize)
	require.NotNil(t, cfg.Clock)
}
