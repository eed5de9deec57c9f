// Package ioutils provides file system and image helpers.
//
// # File Operations
//
//	// Write an export, creating parent directories
//	err := ioutils.WriteFile(ctx, "/exports/samples.csv", data)
//
//	// Ensure a directory exists
//	err := ioutils.EnsureDir("/data/screenshots")
//
// Use SanitizeFileName before turning free text into a file name:
//
//	safe := ioutils.SanitizeFileName("pass 3: read title") // "pass 3_ read title"
//
// # Screenshots
//
// Screenshots keeps a downscaled JPEG of the browser whenever sampling stops
// on an error, so a failed unattended run can be inspected afterwards:
//
//	shots := ioutils.NewScreenshots(dir, 1280)
//	path, err := shots.Save(ctx, png, "sampling failed")
package ioutils
