package parser

// Version selects which dialect revision a parse targets. The set is
// closed and matches the revisions the target language actually shipped;
// ParseVersion rejects anything outside it before a parse begins.
type Version string

const (
	VersionDefault Version = "default"
	Version10      Version = "1.0"
	Version11      Version = "1.1"
	Version12      Version = "1.2"
	Version13      Version = "1.3"
	Version14      Version = "1.4"
	Version15      Version = "1.5"
	Version16      Version = "1.6"
	Version17      Version = "1.7"
)

var validVersions = map[Version]bool{
	VersionDefault: true,
	Version10:      true,
	Version11:      true,
	Version12:      true,
	Version13:      true,
	Version14:      true,
	Version15:      true,
	Version16:      true,
	Version17:      true,
}

// ParseVersion validates s against the closed version set.
func ParseVersion(s string) (Version, bool) {
	v := Version(s)
	if validVersions[v] {
		return v, true
	}
	return "", false
}

// supportsXMLLiteral reports whether v is a revision that ever shipped the
// XML-literal extension. The extension landed in 1.6; "default" tracks the
// newest revision and carries it too.
func (v Version) supportsXMLLiteral() bool {
	switch v {
	case Version16, Version17, VersionDefault:
		return true
	}
	return false
}
