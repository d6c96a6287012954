package messaging

import "strings"

// SubjectRecordsChanged prefixes every change notification; the last token
// names the resource, e.g. orgspace.records.changed.users.
const SubjectRecordsChanged = "orgspace.records.changed"

// SubjectRecordsChangedAll matches every change notification.
const SubjectRecordsChangedAll = SubjectRecordsChanged + ".>"

// HeaderOrigin carries the publishing instance's ID so it can skip its own
// notifications.
const HeaderOrigin = "Orgspace-Origin"

// RecordsChangedSubject returns the subject for changes to resource.
func RecordsChangedSubject(resource string) string {
	return SubjectRecordsChanged + "." + resource
}

// ResourceFromSubject extracts the resource from a change subject.
func ResourceFromSubject(subject string) (string, bool) {
	resource, ok := strings.CutPrefix(subject, SubjectRecordsChanged+".")
	if !ok || resource == "" || strings.Contains(resource, ".") {
		return "", false
	}
	return resource, true
}

// SubjectMatches reports whether subject matches pattern, where "*" matches a
// single token and a trailing ">" matches one or more tokens.
func SubjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, p := range pt {
		if p == ">" {
			return i == len(pt)-1 && len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
