// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

//go:build appengine || !(darwin || dragonfly || freebsd || openbsd || linux || netbsd || solaris || windows)

package file

import (
	"context"
	"runtime"
)

func (f File) Watch(context.Context, func()) error {
	f.logger.Warn("File.Watch is not supported on this platform.", "os", runtime.GOOS)

	return nil
}
