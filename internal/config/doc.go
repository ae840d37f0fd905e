//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package config defines the configuration of the modelfetch command.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (MODELFETCH_ prefix)
//   - YAML manifest file
//
// # Manifest
//
//	root: /var/lib/myapp/models
//	user_agent: myapp/1.0
//	connect_timeout: 20s
//	read_timeout: 60s
//	log_level: modelfetch=DEBUG
//	models:
//	  - category: llm
//	    url: https://huggingface.co/org/repo/resolve/main/model.gguf
//	    file: model.gguf
//	    min_size: 100MiB
//
// Sizes accept the units understood by go-humanize (KB, MiB, GiB, ...).
package config
