package hold

import (
	"fmt"
	"regexp"
	"strings"
)

// Default device id prefixes
const (
	DefaultCuffPrefix = "CAA"
	DefaultEKGPrefix  = "PAA"
)

// IdentityParser splits record ids of the form <cuff><digits><ekg><digits>-<run>.
type IdentityParser struct {
	device *regexp.Regexp
}

// NewIdentityParser builds a parser for the given cuff and EKG prefixes. Empty prefixes
// fall back to the defaults.
func NewIdentityParser(cuffPrefix, ekgPrefix string) *IdentityParser {
	if cuffPrefix == "" {
		cuffPrefix = DefaultCuffPrefix
	}
	if ekgPrefix == "" {
		ekgPrefix = DefaultEKGPrefix
	}
	pattern := fmt.Sprintf(`^(%s\d+)(%s\d+)$`, regexp.QuoteMeta(cuffPrefix), regexp.QuoteMeta(ekgPrefix))
	return &IdentityParser{device: regexp.MustCompile(pattern)}
}

// Parse decomposes recordID. Fields that cannot be derived are left nil; the returned
// error is an IdentifierParseFailure meant for logging only.
func (p *IdentityParser) Parse(recordID string) (Identity, error) {
	var id Identity

	device, run, found := strings.Cut(recordID, "-")
	if found {
		id.RunName = &run
	}

	m := p.device.FindStringSubmatch(device)
	if m == nil {
		return id, &Error{
			Kind: KindIdentifierParseFailure,
			Msg:  fmt.Sprintf("device %q does not match %s", device, p.device.String()),
		}
	}
	cuff, ekg := m[1], m[2]
	id.CuffID = &cuff
	id.EKGID = &ekg

	return id, nil
}
