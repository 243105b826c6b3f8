// Package takeout imports Google Takeout archives into the backup root.
//
// The Importer extracts each zip into a staging directory under temp/,
// walks the extracted tree for media files, and lands every new payload
// in photos/ or videos/ under a capture-date-prefixed name. Takeout's
// per-file JSON sidecars supply the capture time and are rewritten into
// metadata/ next to the per-item sidecars a backup run produces.
// Payload-identical files inside one import are skipped by content
// hash.
//
// Imports run sequentially: archive extraction dominates the cost and
// the inputs arrive as a handful of large zips. An import holds the
// same run lock as a backup run, so the two never interleave writes.
package takeout
