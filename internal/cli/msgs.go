package cli

// Command messages
const (
	MsgRootShort = "Route files through configurable pipelines"
	MsgRootLong  = `fileroutes reads a source tree, passes every file through one routed
stream per pipeline stage and writes the results to a destination tree.

Routes bind a method and a path pattern to an action. They are declared in
fileroutes.toml (see "fileroutes genconfig").`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Use this config file instead of the project and user files"
	MsgFlagDir     = "Project directory"
	MsgFlagSrc     = "Source directory, overriding source.dir"
	MsgFlagOut     = "Destination directory, overriding dest.dir"

	MsgRunShort      = "Build the destination tree once"
	MsgRunFlagMetric = "Print dispatch metrics after the run"

	MsgWatchShort        = "Build, then rebuild whenever the source tree changes"
	MsgWatchFlagDebounce = "Quiet period before a change triggers a rebuild"

	MsgRoutesShort = "List the configured route layers"

	MsgGenConfigShort         = "Print the default configuration"
	MsgGenConfigFlagWrite     = "Write fileroutes.toml in the project directory instead of stdout"
	MsgGenConfigFlagCommented = "Comment out every value"

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
)
