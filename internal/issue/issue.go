// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	ScriptNotFoundId Id = iota + 1
	ManifestInvalidId
	CargoNotFoundId
	StagingFailedId
	DependencyBuildFailedId
	RewriteFailedId
	ConfigLoadFailedId
)

// MarkdownMsg is the help text of an issue.
type MarkdownMsg string

// Issue is one help page.
type Issue struct {
	id    Id
	mdMsg MarkdownMsg
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the page for a terminal using the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(style string) (string, error) {
	return render(string(i.mdMsg), style)
}

var (
	render = glamour.Render

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found!

The script you asked to probe does not exist or cannot be read.

## Things you can try:
- Check the path for typos
- Scripts are looked up with the ` + "`.crs`" + ` and ` + "`.rs`" + ` extensions when none is given`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Cargo.toml could not be read!

The probe copies the package manifest into a scratch project and needs to
know the package name and the bin target of your script.

## Things you can try:
- Make sure ` + "`[package]`" + ` has a ` + "`name`" + `
- Pass the crate explicitly:
~~~
$ crateprobe probe --package my_script my_script.rs
~~~
- Or let crateprobe generate a package:
~~~
$ crateprobe stage my_script.rs --out ./pkg --probe
~~~`,
	}

	cargoNotFoundIssue = &Issue{
		id: CargoNotFoundId,
		mdMsg: `
# cargo not found!

Dependency discovery runs a real ` + "`cargo build`" + ` in a throwaway project.

## Things you can try:
- Install Rust with rustup and make sure ` + "`cargo`" + ` is on your PATH
- Point crateprobe at a specific binary in config.cue:
~~~cue
cargo: binary: "/opt/rust/bin/cargo"
~~~`,
	}

	stagingFailedIssue = &Issue{
		id: StagingFailedId,
		mdMsg: `
# Could not prepare the probe project!

The scratch project (manifest copy, placeholder sources and compiler shim)
could not be written. Your script has not been modified.

## Things you can try:
- Check free disk space and permissions of the package directory
- Set another location for scratch projects:
~~~cue
probe: scratch_root: "/tmp/crateprobe"
~~~`,
	}

	dependencyBuildFailedIssue = &Issue{
		id: DependencyBuildFailedId,
		mdMsg: `
# A dependency failed to build!

One of the crates your script depends on did not compile. This is a real
compile error, not part of dependency discovery. Your script has not been
modified.

## Things you can try:
- Read the cargo output above for the failing crate
- Run with ` + "`--verbose`" + ` to see the full build log
- Pin a different version of the failing crate in Cargo.toml`,
	}

	rewriteFailedIssue = &Issue{
		id: RewriteFailedId,
		mdMsg: `
# Could not write the script back!

Dependencies were discovered but the updated script could not be saved.

## Things you can try:
- Check write permission on the script and its directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show the effective configuration:
~~~
$ crateprobe config show
~~~
- Recreate the default file:
~~~
$ crateprobe config init
~~~`,
	}

	issues = map[Id]*Issue{
		scriptNotFoundIssue.Id():        scriptNotFoundIssue,
		manifestInvalidIssue.Id():       manifestInvalidIssue,
		cargoNotFoundIssue.Id():         cargoNotFoundIssue,
		stagingFailedIssue.Id():         stagingFailedIssue,
		dependencyBuildFailedIssue.Id(): dependencyBuildFailedIssue,
		rewriteFailedIssue.Id():         rewriteFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
