// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

/*
Package sysconf provides a JSON file backed configuration store with
dotted-path access, e.g. `auth.google.clientId`.

A [Store] is created with [New] for the path of its backing file. It loads
the file on first use; a file that does not exist is an empty configuration.
[Store.Get] walks the tree along the path and falls back to the given
default. [Store.Set] writes a value under a path, creating missing objects
on the way and keeping every sibling key, then rewrites the whole file and
reloads from it. [Store.SetInMemory] changes the loaded configuration only.

There is no process-wide Store unless the application sets one with
[SetDefault]. The top-level [Get] reads from it and returns the default
value while there is none, so libraries can read configuration without
depending on how the application sets it up.
*/
package sysconf
