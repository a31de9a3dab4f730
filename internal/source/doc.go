// Package source feeds stores from data files.
//
// A File decodes a TOML, YAML or JSON document and merges it into a
// store. Run keeps the store in step with the file: it watches the file's
// directory and reloads after writes settle. Decode errors are logged and
// reported on the bus; the last good state stays in the store.
//
// Removing keys from the file does not remove them from the store, since
// every load is a merge.
package source
