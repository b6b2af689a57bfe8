package templates

import (
	"finitefield.org/artist-dashboard/internal/dashboard/booking"
	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
	"finitefield.org/artist-dashboard/internal/dashboard/profile"
)

// Chrome carries request-scoped values every view needs.
type Chrome struct {
	BasePath    string
	CSRFHeader  string
	CSRFField   string
	CSRFToken   string
	Environment string
	Year        int
}

// Flash is a one-off banner message.
type Flash struct {
	Kind    string
	Message string
}

// ProfileView is the profile panel.
type ProfileView struct {
	Form    profile.Form
	Display profile.Display
	Error   string
}

// ChecklistView is the checklist panel.
type ChecklistView struct {
	Tasks    []checklist.Task
	Progress checklist.Progress
}

// CollectionView is one portfolio collection with its add form.
type CollectionView struct {
	Kind         portfolio.Kind
	Title        string
	LinkRequired bool
	Items        []portfolio.Item
	Values       portfolio.Fields
	Error        string
}

// BookingView is the booking form.
type BookingView struct {
	Values    booking.Request
	Errors    map[string]string
	Platforms []string
}

// Page is the full dashboard view model. Only the active panel's view is
// populated.
type Page struct {
	Chrome    Chrome
	Panel     navigation.PanelID
	Title     string
	Nav       []navigation.RenderedItem
	Progress  checklist.Progress
	Flash     *Flash
	Profile   *ProfileView
	Checklist *ChecklistView
	Portfolio []CollectionView
	Booking   *BookingView
}

// ProgressBar is a single progress bar instance.
type ProgressBar struct {
	ID       string
	Progress checklist.Progress
	OOB      bool
}

// ChecklistUpdate re-renders the task list together with both progress
// bars.
type ChecklistUpdate struct {
	Chrome   Chrome
	View     ChecklistView
	Flash    *Flash
	Progress checklist.Progress
}

// CollectionUpdate re-renders one portfolio collection.
type CollectionUpdate struct {
	Chrome     Chrome
	Collection CollectionView
	Flash      *Flash
}

// ProfileUpdate re-renders the profile panel body.
type ProfileUpdate struct {
	Chrome Chrome
	View   ProfileView
	Flash  *Flash
}

// AvatarUpdate re-renders the avatar preview.
type AvatarUpdate struct {
	Chrome  Chrome
	DataURI string
	Flash   *Flash
}

// Progress bar element ids. Both are refreshed together.
const (
	HeaderProgressID = "progress-header"
	PanelProgressID  = "progress-panel"
)
