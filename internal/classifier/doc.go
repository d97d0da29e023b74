// Package classifier separates path-like tokens from opaque parameters in an
// executed command line.
//
// Classify scans an argv once, left to right. The executable (and any
// sub-command words such as `git commit`) form the base command. Every other
// token becomes an Argument that is either a Path, when the injected
// api.PathChecker reports that it exists, or an opaque Parameter. Flags are
// folded into the prefix of the value that follows them:
//
//	--input data.csv    prefix "--input ", value "data.csv"
//	--input=data.csv    prefix "--input=", value "data.csv"
//	-i42                prefix "-i",       value "42"
//	--verbose --x 1     "--verbose" is a parameter on its own
//
// Stream redirections (`<`, `>`, `>>`, `2>`, separate or attached) do not take
// a position; they set MappedTo on the path that follows.
//
// Classification never fails. The classifier cannot tell inputs from outputs
// apart (except for stdout and stderr redirects); callers that observed the
// command run use Result.MarkOutputs to move the paths it wrote.
package classifier
