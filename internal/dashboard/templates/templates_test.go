package templates_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"finitefield.org/artist-dashboard/internal/dashboard/booking"
	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
	"finitefield.org/artist-dashboard/internal/dashboard/profile"
	"finitefield.org/artist-dashboard/internal/dashboard/templates"
	"finitefield.org/artist-dashboard/internal/dashboard/testutil"
)

var chrome = templates.Chrome{
	BasePath:    "/",
	CSRFHeader:  "X-CSRF-Token",
	CSRFField:   "csrf_token",
	CSRFToken:   "tok",
	Environment: "Test",
	Year:        2024,
}

func render(t *testing.T, c templ.Component) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.Bytes()
}

func page(panel navigation.PanelID) templates.Page {
	return templates.Page{
		Chrome:   chrome,
		Panel:    panel,
		Title:    navigation.Heading(panel),
		Nav:      navigation.Build(panel),
		Progress: checklist.Progress{Completed: 1, Total: 7, Percent: 14},
	}
}

func TestIndexRendersMenu(t *testing.T) {
	t.Parallel()

	doc := testutil.ParseHTML(t, render(t, templates.Index(page(navigation.Menu))))

	require.Equal(t, "Main Menu | Artist Dashboard", doc.Find("title").Text())
	require.Equal(t, "Main Menu", doc.Find("#section-title").Text())
	require.Equal(t, 1, doc.Find("#nav .nav-item.active").Length())
	require.Equal(t, "menu", doc.Find("#nav .nav-item.active").AttrOr("data-target", ""))
	require.Equal(t, "1", doc.Find("#progress-panel .progress-count").Text())
	require.Equal(t, "7", doc.Find("#progress-header .progress-total").Text())
	require.Equal(t, "width: 14%", doc.Find("#progress-panel .progress-fill").AttrOr("style", ""))
	require.Equal(t, 4, doc.Find(".cards .card").Length())
	require.Equal(t, "2024", doc.Find("#year").Text())
	require.Contains(t, doc.Find("body").AttrOr("hx-headers", ""), `"X-CSRF-Token":"tok"`)
}

func TestPanelSwapCarriesOutOfBandChrome(t *testing.T) {
	t.Parallel()

	p := page(navigation.Booking)
	p.Booking = &templates.BookingView{Platforms: booking.Platforms}
	doc := testutil.ParseHTML(t, render(t, templates.PanelSwap(p)))

	require.Equal(t, 1, doc.Find("section#booking.panel.active").Length())
	require.Equal(t, "true", doc.Find("#section-title").AttrOr("hx-swap-oob", ""))
	require.Equal(t, "Book a Consultation", doc.Find("#section-title").Text())
	require.Equal(t, "booking", doc.Find("#nav .nav-item.active").AttrOr("data-target", ""))
	require.Equal(t, "true", doc.Find("#progress-header").AttrOr("hx-swap-oob", ""))
	require.Equal(t, 4, doc.Find("#platform option").Length())
	require.Equal(t, "tok", doc.Find(`#consultForm input[name="csrf_token"]`).AttrOr("value", ""))
}

func TestChecklistUpdate(t *testing.T) {
	t.Parallel()

	tasks := []checklist.Task{
		{ID: "mix", Label: "Mix & Master complete", Done: true, Builtin: true},
		{ID: "c_1", Label: "Shoot video"},
	}
	progress := checklist.Summarize(tasks)
	doc := testutil.ParseHTML(t, render(t, templates.Checklist(templates.ChecklistUpdate{
		Chrome:   chrome,
		View:     templates.ChecklistView{Tasks: tasks, Progress: progress},
		Progress: progress,
	})))

	require.Equal(t, 2, doc.Find("#checklistList .item").Length())
	require.True(t, doc.Find("#task-mix").Is("[checked]"))
	require.False(t, doc.Find("#task-c_1").Is("[checked]"))
	require.Equal(t, 0, doc.Find(`[data-task="mix"] button.remove`).Length())
	require.Equal(t, "/checklist/tasks/c_1", doc.Find(`[data-task="c_1"] button.remove`).AttrOr("hx-delete", ""))
	require.Equal(t, "true", doc.Find("#progress-panel").AttrOr("hx-swap-oob", ""))
	require.Equal(t, "true", doc.Find("#progress-header").AttrOr("hx-swap-oob", ""))
	require.Equal(t, "width: 50%", doc.Find("#progress-header .progress-fill").AttrOr("style", ""))
}

func TestProgressComponent(t *testing.T) {
	t.Parallel()

	doc := testutil.ParseHTML(t, render(t, templates.Progress(templates.ProgressBar{
		ID:       templates.PanelProgressID,
		Progress: checklist.Progress{Completed: 3, Total: 7, Percent: 43},
	})))
	bar := doc.Find("#progress-panel.progress")
	require.Equal(t, 1, bar.Length())
	_, oob := bar.Attr("hx-swap-oob")
	require.False(t, oob)
	require.Equal(t, "width: 43%", bar.Find(".progress-fill").AttrOr("style", ""))
	require.Equal(t, "3", bar.Find(".progress-count").Text())
	require.Equal(t, "7", bar.Find(".progress-total").Text())

	doc = testutil.ParseHTML(t, render(t, templates.Progress(templates.ProgressBar{
		ID:       `x" onclick="y`,
		Progress: checklist.Progress{Percent: 250},
		OOB:      true,
	})))
	require.Equal(t, 0, doc.Find("[onclick]").Length())
	require.Equal(t, "width: 100%", doc.Find(".progress-fill").AttrOr("style", ""))
	require.Equal(t, "true", doc.Find(".progress").AttrOr("hx-swap-oob", ""))
}

func TestCollectionRendering(t *testing.T) {
	t.Parallel()

	empty := testutil.ParseHTML(t, render(t, templates.Collection(templates.CollectionUpdate{
		Chrome:     chrome,
		Collection: templates.CollectionView{Kind: portfolio.Videos, Title: "Videos", LinkRequired: true},
	})))
	require.Equal(t, "No items yet.", empty.Find("#collection-videos .empty").Text())
	_, required := empty.Find(`input[name="link"]`).Attr("required")
	require.True(t, required)

	doc := testutil.ParseHTML(t, render(t, templates.Collection(templates.CollectionUpdate{
		Chrome: chrome,
		Collection: templates.CollectionView{
			Kind:  portfolio.Releases,
			Title: "Releases",
			Items: []portfolio.Item{
				{ID: "r1", Title: "Debut EP", CreatedAt: time.Now()},
				{ID: "r2", Link: "bandcamp.com/x", CreatedAt: time.Now()},
			},
		},
	})))
	rows := doc.Find("#collection-releases li.row")
	require.Equal(t, 2, rows.Length())
	require.Equal(t, "Debut EP", rows.Eq(0).Find(".row-title").Text())
	require.Equal(t, 0, rows.Eq(0).Find("a.open").Length())
	require.Equal(t, "https://bandcamp.com/x", rows.Eq(1).Find("a.open").AttrOr("href", ""))
	require.Equal(t, "/portfolio/releases/r2", rows.Eq(1).Find("button.delete").AttrOr("hx-delete", ""))
}

func TestProfileRendering(t *testing.T) {
	t.Parallel()

	rec := profile.Record{Values: map[string]string{"stageName": "Kumo", "instagram": "instagram.com/kumo"}}
	p := page(navigation.Profile)
	p.Profile = &templates.ProfileView{Form: profile.NewForm(rec, true), Display: profile.NewDisplay(rec)}
	doc := testutil.ParseHTML(t, render(t, templates.Index(p)))

	require.Equal(t, "Kumo", doc.Find(".display-name").Text())
	require.Equal(t, "—", doc.Find(".followers").Text())
	require.Equal(t, "https://instagram.com/kumo", doc.Find(`.social-links a[data-field="instagram"]`).AttrOr("href", ""))
	_, focused := doc.Find("#stageName").Attr("autofocus")
	require.True(t, focused)
	_, readonly := doc.Find("#email").Attr("readonly")
	require.False(t, readonly)
	require.Equal(t, 1, doc.Find("#saveProfile").Length())
	require.Equal(t, 1, doc.Find(".avatar-placeholder").Length())
}

func TestAvatarUpdate(t *testing.T) {
	t.Parallel()

	doc := testutil.ParseHTML(t, render(t, templates.Avatar(templates.AvatarUpdate{
		Chrome:  chrome,
		DataURI: "data:image/png;base64,iVBORw0KGgo=",
		Flash:   &templates.Flash{Kind: "warning", Message: "Image is too large to save. Try a smaller one."},
	})))

	require.Equal(t, "data:image/png;base64,iVBORw0KGgo=", doc.Find("#profileImage").AttrOr("src", ""))
	require.Equal(t, "warning", doc.Find("#flash .flash").AttrOr("data-kind", ""))
}
