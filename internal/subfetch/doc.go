// Package subfetch downloads a shared cloud-drive folder of subtitle files by
// running the external bulk download tool synchronously.
package subfetch
