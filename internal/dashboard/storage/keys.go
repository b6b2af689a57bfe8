package storage

import "strings"

// Key names a persisted value. Every key the application writes is declared
// here so the namespace stays in one place.
type Key string

// Namespace prefixes every key so dashboard data never collides with
// anything else sharing the same scope.
const Namespace = "jp"

const (
	// KeyLastPanel holds the id of the last active panel (plain string).
	KeyLastPanel Key = Namespace + ".last"
	// KeyProfileImage holds the avatar as a data URI (plain string).
	KeyProfileImage Key = Namespace + "_profile_image"
	// KeyCustomTasks holds the JSON array of custom checklist tasks.
	KeyCustomTasks Key = Namespace + "_custom_tasks"
	// KeyReleases holds the JSON array of release portfolio items.
	KeyReleases Key = Namespace + "_releases"
	// KeyVideos holds the JSON array of video portfolio items.
	KeyVideos Key = Namespace + "_videos"
	// KeyEPKs holds the JSON array of EPK portfolio items.
	KeyEPKs Key = Namespace + "_epks"
	// KeyBookings holds the JSON array of submitted consultation requests.
	KeyBookings Key = Namespace + "_bookings"

	profileFieldPrefix = Namespace + "_profile_"
	builtinTaskPrefix  = Namespace + "_check_"
)

// ProfileFieldKey returns the key of a single profile text field.
func ProfileFieldKey(field string) Key {
	return Key(profileFieldPrefix + strings.TrimSpace(field))
}

// BuiltinTaskKey returns the key holding a built-in task's done flag
// ("1" or "0").
func BuiltinTaskKey(task string) Key {
	return Key(builtinTaskPrefix + strings.TrimSpace(task))
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// Owned reports whether the raw key belongs to the dashboard namespace.
func Owned(raw string) bool {
	return strings.HasPrefix(raw, Namespace+".") || strings.HasPrefix(raw, Namespace+"_")
}
