//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Engine groups targets that run the built CLI over the data/ tree.
type Engine mg.Namespace

var bin = binDir + "/" + binName

// Index rebuilds the expertise index from data/history.
func (Engine) Index() error {
	mg.Deps(Build)
	return sh.RunV(bin, "index", "build")
}

// Train fits the response and outcome models.
func (Engine) Train() error {
	mg.Deps(Build)
	return sh.RunV(bin, "train", "all")
}

// Batch processes every manuscript awaiting referees.
func (Engine) Batch() error {
	mg.Deps(Build)
	return sh.RunV(bin, "batch", "--metrics-file", "data/reports/referee-engine.prom")
}
