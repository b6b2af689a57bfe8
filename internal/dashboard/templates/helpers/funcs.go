// Package helpers holds the template functions shared by every dashboard view.
package helpers

import "html/template"

// FuncMap exposes the helpers to html/template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date":        Date,
		"relative":    Relative,
		"navClass":    NavClass,
		"panelClass":  PanelClass,
		"flashClass":  FlashClass,
		"url":         URL,
		"csrfHeaders": CSRFHeaders,
		"imageURI":    ImageURI,
	}
}
