package responder

import "strings"

// FormatPermissions renders a list of permission names for a reply.
// Input ordering is preserved. Each name has underscores replaced with
// spaces, "guild" renamed to "server", and is title-cased; the list reads
// "A", "A and B", or "A, B, and C".
func FormatPermissions(perms []string) string {
	missing := make([]string, 0, len(perms))
	for _, perm := range perms {
		name := strings.ReplaceAll(perm, "_", " ")
		name = strings.ReplaceAll(name, "guild", "server")
		missing = append(missing, titleCase(name))
	}

	switch len(missing) {
	case 0:
		return ""
	case 1:
		return missing[0]
	case 2:
		return missing[0] + " and " + missing[1]
	default:
		return strings.Join(missing[:len(missing)-1], ", ") + ", and " + missing[len(missing)-1]
	}
}

// titleCase uppercases the first letter of each space-separated word and
// lowercases the rest.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
