package navigation

// PanelID identifies one dashboard panel.
type PanelID string

const (
	Menu      PanelID = "menu"
	Profile   PanelID = "profile"
	Checklist PanelID = "checklist"
	Portfolio PanelID = "portfolio"
	Booking   PanelID = "booking"
)

// FallbackHeading is shown for panels without a heading of their own.
const FallbackHeading = "Section"

// Item is a navigation entry.
type Item struct {
	Panel   PanelID
	Label   string
	Heading string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Panel  PanelID
	Label  string
	Active bool
}

// Main is the navigation bar, in display order.
var Main = []Item{
	{Panel: Menu, Label: "Home", Heading: "Main Menu"},
	{Panel: Profile, Label: "Profile", Heading: "Artist Profile"},
	{Panel: Checklist, Label: "Checklist", Heading: "Release Checklist"},
	{Panel: Portfolio, Label: "Portfolio", Heading: "Portfolio"},
	{Panel: Booking, Label: "Booking", Heading: "Book a Consultation"},
}

// Parse returns the panel named by raw and whether it is known.
func Parse(raw string) (PanelID, bool) {
	for _, it := range Main {
		if string(it.Panel) == raw {
			return it.Panel, true
		}
	}
	return PanelID(raw), false
}

// Heading returns the section title for id.
func Heading(id PanelID) string {
	for _, it := range Main {
		if it.Panel == id && it.Heading != "" {
			return it.Heading
		}
	}
	return FallbackHeading
}

// Build renders navigation items with exactly the active panel selected.
func Build(active PanelID) []RenderedItem {
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Panel:  it.Panel,
			Label:  it.Label,
			Active: it.Panel == active,
		})
	}
	return items
}
