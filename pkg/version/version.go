package version

// EmptyValue is the value we use when running a version that wasn't compiled
// by `make`. This is helpful for telling when we're running in a unit test.
const EmptyValue = "set-by-make"

// Version is the latest tag on git for releases. On non-release commits, it may
// include additional information such as the most recent commit hash.
var Version = EmptyValue

// MinToolVersion is the oldest release of the serial shell tool that mpdeploy
// is known to work with. Older releases don't understand --buffer-size.
const MinToolVersion = "0.0.26"
