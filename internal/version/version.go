package version

// Version is the current deckreport release.
const Version = "0.4.0"

// FullVersion returns the version with the v prefix.
func FullVersion() string {
	return "v" + Version
}
