package profile

// Field describes one editable profile input.
type Field struct {
	Name      string
	Label     string
	InputType string
	Multiline bool
}

// Fields lists every persisted profile field in form order.
var Fields = []Field{
	{Name: "stageName", Label: "Stage name", InputType: "text"},
	{Name: "email", Label: "Email", InputType: "email"},
	{Name: "website", Label: "Website", InputType: "url"},
	{Name: "timezone", Label: "Timezone", InputType: "text"},
	{Name: "genre", Label: "Genre", InputType: "text"},
	{Name: "headline", Label: "Headline", InputType: "text"},
	{Name: "bio", Label: "Bio", Multiline: true},
	{Name: "instagram", Label: "Instagram", InputType: "text"},
	{Name: "tiktok", Label: "TikTok", InputType: "text"},
	{Name: "youtube", Label: "YouTube", InputType: "text"},
	{Name: "spotify", Label: "Spotify", InputType: "text"},
	{Name: "soundcloud", Label: "SoundCloud", InputType: "text"},
	{Name: "twitter", Label: "X / Twitter", InputType: "text"},
	{Name: "followers", Label: "Followers", InputType: "text"},
	{Name: "streams", Label: "Streams", InputType: "text"},
	{Name: "releases", Label: "Releases", InputType: "text"},
}

// FocusField receives focus when the form enters edit mode.
const FocusField = "stageName"

// socialFields are rendered as links on the profile card, in this order.
var socialFields = []string{"website", "instagram", "tiktok", "youtube", "spotify", "soundcloud", "twitter"}

// FieldNames returns the names of every profile field.
func FieldNames() []string {
	names := make([]string, 0, len(Fields))
	for _, f := range Fields {
		names = append(names, f.Name)
	}
	return names
}

func fieldLabel(name string) string {
	for _, f := range Fields {
		if f.Name == name {
			return f.Label
		}
	}
	return name
}
