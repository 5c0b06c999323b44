package stitch

import _ "embed"

// Version is the release of the stitch module, read from the VERSION file.
//
//go:embed VERSION
var Version string
