// Package web holds the dashboard page template and species images.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates img
var assets embed.FS

// Templates is the embedded template tree, rooted at templates/.
var Templates, _ = fs.Sub(assets, "templates")

// Images is the embedded species image set, rooted at img/.
var Images, _ = fs.Sub(assets, "img")
