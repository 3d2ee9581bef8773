// Package view holds the client side state of the portal: the link
// directory with its search and selection, and the user table. Results of
// create, update and delete calls are applied locally so the lists stay in
// sync without refetching.
package view

import (
	"acumenus/startpage-api/internal/model"
	"slices"
	"strings"
)

type Directory struct {
	links    []model.Link
	search   string
	selected string
}

func NewDirectory(links []model.Link) *Directory {
	d := &Directory{}
	d.Reset(links)
	return d
}

// Reset replaces the whole list, e.g. after a fresh fetch. A selection that
// no longer exists is dropped.
func (d *Directory) Reset(links []model.Link) {
	d.links = slices.Clone(links)

	if _, ok := d.find(d.selected); !ok {
		d.selected = ""
	}
}

func (d *Directory) SetSearch(term string) {
	d.search = strings.TrimSpace(term)
}

func (d *Directory) Search() string {
	return d.search
}

// Visible returns the links matching the search term, case-insensitively on
// name or description. An empty term matches everything.
func (d *Directory) Visible() []model.Link {
	if d.search == "" {
		return slices.Clone(d.links)
	}

	term := strings.ToLower(d.search)
	out := make([]model.Link, 0, len(d.links))

	for _, l := range d.links {
		if strings.Contains(strings.ToLower(l.Name), term) ||
			strings.Contains(strings.ToLower(l.Description), term) {
			out = append(out, l)
		}
	}

	return out
}

// Select marks the link with id as selected. It reports false and keeps the
// previous selection if no such link is loaded.
func (d *Directory) Select(id string) bool {
	if _, ok := d.find(id); !ok {
		return false
	}

	d.selected = id
	return true
}

func (d *Directory) ClearSelection() {
	d.selected = ""
}

func (d *Directory) Selected() (model.Link, bool) {
	i, ok := d.find(d.selected)
	if !ok {
		return model.Link{}, false
	}

	return d.links[i], true
}

// Related resolves the selected link's related app ids against the loaded
// links. Ids that point nowhere are skipped.
func (d *Directory) Related() []model.Link {
	sel, ok := d.Selected()
	if !ok {
		return nil
	}

	out := make([]model.Link, 0, len(sel.RelatedApps))
	for _, id := range sel.RelatedApps {
		if i, ok := d.find(id); ok {
			out = append(out, d.links[i])
		}
	}

	return out
}

// Upsert applies the result of a create or update call
func (d *Directory) Upsert(l model.Link) {
	if i, ok := d.find(l.ID); ok {
		d.links[i] = l
		return
	}

	d.links = append(d.links, l)
}

// Remove applies a delete. Removing the selected link clears the selection.
func (d *Directory) Remove(id string) {
	i, ok := d.find(id)
	if !ok {
		return
	}

	d.links = slices.Delete(d.links, i, i+1)
	if d.selected == id {
		d.selected = ""
	}
}

func (d *Directory) Len() int {
	return len(d.links)
}

func (d *Directory) find(id string) (int, bool) {
	if id == "" {
		return 0, false
	}

	i := slices.IndexFunc(d.links, func(l model.Link) bool { return l.ID == id })
	return i, i >= 0
}
