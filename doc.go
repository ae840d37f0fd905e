//
// Copyright 2018-2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package modelfetch downloads model files (LLM weights, speech
// recognition and speech synthesis models) into a per-category content
// directory.
//
// A file already present with at least the requested minimum size is
// returned without touching the network. Otherwise it is downloaded into
// a temporary file next to the target, validated against the minimum
// size and then moved in place, so the target path never holds a
// partially written file:
//
//	store := modelfetch.NewStore("/var/lib/myapp/models")
//	path, err := store.ResolveOrFetch(modelfetch.Request{
//		Category: modelfetch.LLM,
//		URL:      "https://example.com/llama-3.2-3b-q4_k_m.gguf",
//		FileName: "llama-3.2-3b-q4_k_m.gguf",
//		MinSize:  100 * 1024 * 1024,
//		Progress: func(percent int) { fmt.Printf("%d%%\n", percent) },
//	})
//
// The minimum size is a heuristic against truncated bodies and error
// pages served with status 200; no checksum is verified.
package modelfetch
