package smtp

import "strings"

// parseAuthCapabilities scans EHLO reply lines of the form "AUTH <m1> <m2>
// ..." (the numeric code and continuation marker already stripped by the
// caller) and returns the advertised mechanism names, uppercased.
func parseAuthCapabilities(lines []string) []AuthMethod {
	var methods []AuthMethod
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.EqualFold(fields[0], "AUTH") {
			continue
		}
		for _, m := range fields[1:] {
			methods = append(methods, AuthMethod(strings.ToUpper(m)))
		}
	}
	return methods
}

// resolveMethod picks the first method in supportedMethods' preference
// order that the server also advertised. Returns ErrNoSharedMechanism if
// the intersection is empty.
func resolveMethod(advertised []AuthMethod) (AuthMethod, error) {
	advertisedSet := make(map[AuthMethod]struct{}, len(advertised))
	for _, m := range advertised {
		advertisedSet[m] = struct{}{}
	}
	for _, m := range supportedMethods {
		if _, ok := advertisedSet[m]; ok {
			return m, nil
		}
	}
	return "", ErrNoSharedMechanism
}
