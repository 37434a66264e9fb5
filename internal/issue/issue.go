// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ScenarioLoadFailedId
	BackendUnavailableId
	UnknownBackendId
	ReportNotFoundId
	ReportAnchorMissingId
	NoValidTimingsId
)

type (
	// Id identifies a known problem class.
	Id int

	// MarkdownMsg is Markdown text rendered for the user.
	MarkdownMsg string

	// Issue is a Markdown explanation of a known problem class.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or did not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ shakebench config show
~~~
- Regenerate a default file and re-apply your changes:
~~~
$ shakebench config init
~~~`,
	}

	scenarioLoadFailedIssue = &Issue{
		id: ScenarioLoadFailedId,
		mdMsg: `
# Failed to load the conformance scenario!

The scenario file must define a ` + "`#Scenario`" + ` with named checks. Each
expectation selects artifacts with a regular expression and lists marker
patterns that must be present or absent.

## Example:
~~~cue
checks: [{
	name: "tree shakes sync modules"
	expectations: [{artifact: "index", absent: ["SHOULD BE REMOVED FROM BUNDLE SYNC IMPORT"]}]
}]
~~~`,
	}

	backendUnavailableIssue = &Issue{
		id: BackendUnavailableId,
		mdMsg: `
# Backend could not be invoked!

The bundler command failed before producing output. The benchmark keeps
going and records no timing for the affected repetition.

## Things you can try:
- Install the project dependencies (` + "`pnpm install`" + `)
- Run the backend once by hand with ` + "`shakebench verify --backend <id> -v`" + `
- Override the command line in the ` + "`backends`" + ` section of your config`,
	}

	unknownBackendIssue = &Issue{
		id: UnknownBackendId,
		mdMsg: `
# Unknown backend!

List the registered backends with:
~~~
$ shakebench backends
~~~`,
	}

	reportNotFoundIssue = &Issue{
		id: ReportNotFoundId,
		mdMsg: `
# Report document not found!

The markdown report to patch could not be read. Statistics are still
printed and the CSV file is still written.

## Things you can try:
- Point ` + "`report.path`" + ` at an existing markdown file
- Create the file with a results row and a fenced summary block`,
	}

	reportAnchorMissingIssue = &Issue{
		id: ReportAnchorMissingId,
		mdMsg: `
# Report anchor missing!

The report was left unmodified for the affected section. The patcher only
replaces existing anchors and never inserts new ones.

## Expected anchors:
~~~markdown
| Build time (ms) | ... |

` + "```benchmark" + `
` + "```" + `
~~~`,
	}

	noValidTimingsIssue = &Issue{
		id: NoValidTimingsId,
		mdMsg: `
# No valid timings!

Every repetition failed for at least one backend, so it has been left out
of the statistics. Check the warnings above for build or conformance
failures.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.id:    configLoadFailedIssue,
		scenarioLoadFailedIssue.id:  scenarioLoadFailedIssue,
		backendUnavailableIssue.id:  backendUnavailableIssue,
		unknownBackendIssue.id:      unknownBackendIssue,
		reportNotFoundIssue.id:      reportNotFoundIssue,
		reportAnchorMissingIssue.id: reportAnchorMissingIssue,
		noValidTimingsIssue.id:      noValidTimingsIssue,
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown message.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the Markdown message with the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Values returns all issues ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, is := range issues {
		out = append(out, is)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}
