// Package files groups the file-facing sub-packages.
//
//   - filesystem: filesystem abstraction (OS and in-memory with fault injection)
//   - rewriter: concurrent tree traversal and in-place substitution
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/httpsify/internal/files/filesystem"
//	    "github.com/vvka-141/httpsify/internal/files/rewriter"
//	)
//
//	rw, err := rewriter.New(filesystem.NewOSFileSystem(), cfg, logger)
//	report, err := rw.Run(ctx, cfg.Root)
package files
